package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind: %w", err)
	}
	if err := validateHTTPURL(c.Server.ServerURL); err != nil {
		return fmt.Errorf("server.server_url: %w", err)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.WebhookURL != "" {
		if err := validateHTTPURL(c.Analysis.WebhookURL); err != nil {
			return fmt.Errorf("analysis.webhook_url: %w", err)
		}
	}
	if c.Analysis.TimeoutSeconds > 300 {
		return errors.New("analysis.timeout_seconds must be at most 300")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func validateHTTPURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
