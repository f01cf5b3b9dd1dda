package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"capturedesk/internal/api"
	"capturedesk/internal/config"
	"capturedesk/internal/pin"
	"capturedesk/internal/store"
)

type commandContext struct {
	configFlag *string
	pinFlag    *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	input *bufio.Reader
}

func newCommandContext(configFlag, pinFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		pinFlag:    pinFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// withStore opens the key-value store for the duration of fn.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	kv, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()
	return fn(kv)
}

// withUnlockedStore is withStore behind the PIN gate.
func (c *commandContext) withUnlockedStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	return c.withStore(func(kv *store.Store) error {
		if err := c.unlock(cmd, kv); err != nil {
			return err
		}
		return fn(kv)
	})
}

func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Server.ServerURL, api.WithToken(cfg.Server.APIToken)), nil
}

// unlock asks for the PIN and checks it before any task data is touched.
func (c *commandContext) unlock(cmd *cobra.Command, kv store.KV) error {
	gate := pin.NewGate(kv)
	has, err := gate.HasPIN(cmd.Context())
	if err != nil {
		return err
	}
	if !has {
		return errors.New("no PIN set; run 'capturedesk pin set' first")
	}
	entered, err := c.readPIN(cmd, "PIN: ", c.flagPIN())
	if err != nil {
		return err
	}
	return gate.Unlock(cmd.Context(), entered)
}

func (c *commandContext) flagPIN() string {
	if c.pinFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.pinFlag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
