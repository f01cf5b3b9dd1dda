package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"capturedesk/internal/pin"
	"capturedesk/internal/store"
)

func newPINCommand(ctx *commandContext) *cobra.Command {
	pinCmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the PIN that locks task data",
	}
	pinCmd.AddCommand(newPINSetCommand(ctx))
	pinCmd.AddCommand(newPINChangeCommand(ctx))
	return pinCmd
}

type newPINFlags struct {
	value   string
	confirm string
}

func (f *newPINFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.value, "new", "", "New 4-digit PIN (prompted when omitted)")
	cmd.Flags().StringVar(&f.confirm, "confirm", "", "Confirmation of the new PIN (prompted when omitted)")
}

func newPINSetCommand(ctx *commandContext) *cobra.Command {
	var flags newPINFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create the PIN on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(kv *store.Store) error {
				gate := pin.NewGate(kv)
				has, err := gate.HasPIN(cmd.Context())
				if err != nil {
					return err
				}
				if has {
					return errors.New("a PIN is already set; use 'capturedesk pin change'")
				}
				return ctx.storeNewPIN(cmd, gate, flags)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newPINChangeCommand(ctx *commandContext) *cobra.Command {
	var flags newPINFlags
	cmd := &cobra.Command{
		Use:   "change",
		Short: "Replace the PIN after unlocking with the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				return ctx.storeNewPIN(cmd, pin.NewGate(kv), flags)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *commandContext) storeNewPIN(cmd *cobra.Command, gate *pin.Gate, flags newPINFlags) error {
	value, err := c.readPIN(cmd, "New PIN: ", flags.value)
	if err != nil {
		return err
	}
	confirm, err := c.readPIN(cmd, "Confirm PIN: ", flags.confirm)
	if err != nil {
		return err
	}
	if err := gate.Set(cmd.Context(), value, confirm); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "PIN saved")
	return nil
}
