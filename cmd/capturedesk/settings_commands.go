package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"capturedesk/internal/settings"
	"capturedesk/internal/store"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "View or change local preferences",
	}
	settingsCmd.AddCommand(&cobra.Command{
		Use:       "sound [on|off]",
		Short:     "Show or set whether capture sounds are enabled",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(kv *store.Store) error {
				prefs := settings.New(kv)
				if len(args) == 1 {
					enabled, err := parseOnOff(args[0])
					if err != nil {
						return err
					}
					if err := prefs.SetSoundEnabled(cmd.Context(), enabled); err != nil {
						return err
					}
				}
				enabled, err := prefs.SoundEnabled(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sound: %s\n", onOff(enabled))
				return nil
			})
		},
	})
	return settingsCmd
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
