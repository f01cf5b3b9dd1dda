package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"capturedesk/internal/pin"
	"capturedesk/internal/preflight"
	"capturedesk/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, local store, and daemon health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			line := func(label string, kind statusKind, msg string) {
				fmt.Fprintln(out, renderStatusLine(label, kind, msg, colorize))
			}

			if ctx.configSeen {
				line("Config", statusOK, ctx.configPath)
			} else {
				line("Config", statusWarn, "defaults in use (run 'capturedesk config init')")
			}

			err = ctx.withStore(func(kv *store.Store) error {
				line("Store", statusOK, kv.Path())
				has, err := pin.NewGate(kv).HasPIN(cmd.Context())
				if err != nil {
					return err
				}
				if has {
					line("PIN", statusOK, "set")
				} else {
					line("PIN", statusWarn, "not set (run 'capturedesk pin set')")
				}
				return nil
			})
			if err != nil {
				line("Store", statusError, err.Error())
			}

			if strings.TrimSpace(cfg.Analysis.WebhookURL) != "" {
				line("Webhook", statusOK, "configured")
			} else {
				line("Webhook", statusWarn, "not configured")
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			daemon := preflight.CheckDaemon(cmd.Context(), client)
			if daemon.Passed {
				line("Daemon", statusOK, daemon.Detail)
			} else {
				line("Daemon", statusError, daemon.Detail)
			}
			return nil
		},
	}
}
