package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capturedesk/internal/analysis"
	"capturedesk/internal/api"
	"capturedesk/internal/contacts"
	"capturedesk/internal/review"
	"capturedesk/internal/store"
	"capturedesk/internal/tasks"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a call and review the generated follow-up",
	}
	captureCmd.AddCommand(newCaptureNewCommand(ctx))
	captureCmd.AddCommand(newCaptureShowCommand(ctx))
	captureCmd.AddCommand(newCaptureApproveCommand(ctx))
	captureCmd.AddCommand(newCaptureFixCommand(ctx))
	captureCmd.AddCommand(newCaptureDiscardCommand(ctx))
	return captureCmd
}

func newCaptureNewCommand(ctx *commandContext) *cobra.Command {
	var (
		capture   api.Capture
		contactID string
		offline   bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Submit notes and/or audio for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id := strings.TrimSpace(contactID); id != "" {
				contact, ok := contacts.Default().ByID(id)
				if !ok {
					return fmt.Errorf("unknown contact %q (see 'capturedesk contacts')", id)
				}
				capture.ContactID = contact.ID
				capture.Phone = contact.Phone
				if strings.TrimSpace(capture.ContactName) == "" {
					capture.ContactName = contact.Name
				}
			}
			if err := validateCapture(capture); err != nil {
				return err
			}

			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				pending, err := ctx.generateReview(cmd.Context(), capture, "", offline)
				if err != nil {
					return err
				}
				if err := review.NewPendingStore(kv).Save(cmd.Context(), pending); err != nil {
					return err
				}
				return printPending(cmd, pending, jsonOut)
			})
		},
	}

	cmd.Flags().StringVar(&capture.Phone, "phone", "", "Phone number of the contact")
	cmd.Flags().StringVar(&contactID, "contact", "", "Directory contact id (sets phone and name)")
	cmd.Flags().StringVar(&capture.ContactName, "name", "", "Contact name")
	cmd.Flags().StringVar(&capture.Notes, "notes", "", "Text notes from the call")
	cmd.Flags().StringVar(&capture.AudioPath, "audio", "", "Path to an audio recording")
	cmd.Flags().BoolVar(&offline, "offline", false, "Generate the review locally instead of calling the daemon")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the draft as JSON")
	return cmd
}

func newCaptureShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the review awaiting approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				pending, err := review.NewPendingStore(kv).Load(cmd.Context())
				if err != nil {
					return err
				}
				return printPending(cmd, pending, jsonOut)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the draft as JSON")
	return cmd
}

func newCaptureApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve",
		Short: "Save the pending review as a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				pendingStore := review.NewPendingStore(kv)
				pending, err := pendingStore.Load(cmd.Context())
				if err != nil {
					return err
				}
				task, err := tasks.NewRepository(kv).Approve(cmd.Context(), pending.Draft, time.Now())
				if err != nil {
					return err
				}
				if err := pendingStore.Discard(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved task %s: %s\n", shortID(task.ID), task.Title)
				return nil
			})
		},
	}
}

func newCaptureFixCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "fix CORRECTION",
		Short: "Regenerate the pending review with a correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			correction := strings.TrimSpace(args[0])
			if correction == "" {
				return errors.New("correction must not be empty")
			}
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				pendingStore := review.NewPendingStore(kv)
				previous, err := pendingStore.Load(cmd.Context())
				if err != nil {
					return err
				}
				pending, err := ctx.generateReview(cmd.Context(), previous.Capture, correction, previous.Offline)
				if err != nil {
					return err
				}
				if err := pendingStore.Save(cmd.Context(), pending); err != nil {
					return err
				}
				return printPending(cmd, pending, jsonOut)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the draft as JSON")
	return cmd
}

func newCaptureDiscardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop the pending review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				pendingStore := review.NewPendingStore(kv)
				if _, err := pendingStore.Load(cmd.Context()); err != nil {
					return err
				}
				if err := pendingStore.Discard(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pending review discarded")
				return nil
			})
		},
	}
}

// generateReview asks the daemon for a review, or builds the local stub.
func (c *commandContext) generateReview(ctx context.Context, capture api.Capture, correction string, offline bool) (review.Pending, error) {
	if offline {
		return review.Pending{Capture: capture, Draft: review.Stub(capture, correction, time.Now()), Offline: true}, nil
	}
	client, err := c.apiClient()
	if err != nil {
		return review.Pending{}, err
	}
	resp, err := client.Analyze(ctx, capture, correction)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return review.Pending{}, fmt.Errorf("analyze: %s", apiErr.Error())
		}
		return review.Pending{}, fmt.Errorf("analyze: %w (is capturedeskd running? use --offline to skip it)", err)
	}
	return review.Pending{Capture: capture, Draft: review.FromResponse(capture, resp)}, nil
}

func validateCapture(capture api.Capture) error {
	sub := analysis.Submission{Phone: capture.Phone, Notes: capture.Notes}
	if path := strings.TrimSpace(capture.AudioPath); path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("audio: %s is a directory", path)
		}
		sub.Audio = &analysis.Audio{Filename: info.Name()}
	}
	if details := analysis.Validate(sub); len(details) > 0 {
		return fmt.Errorf("invalid capture: %s", strings.Join(details, "; "))
	}
	return nil
}

func printPending(cmd *cobra.Command, pending review.Pending, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, pending.Draft)
	}
	renderDraft(cmd.OutOrStdout(), pending)
	return nil
}

func renderDraft(out io.Writer, pending review.Pending) {
	d := pending.Draft
	source := "daemon"
	if pending.Offline {
		source = "offline stub"
	}
	contact := d.ContactPhone
	if d.ContactName != "" {
		contact = fmt.Sprintf("%s (%s)", d.ContactName, d.ContactPhone)
	}

	fmt.Fprintf(out, "Title:      %s\n", d.Title)
	fmt.Fprintf(out, "Summary:    %s\n", d.Summary)
	fmt.Fprintf(out, "Due:        %s\n", valueOr(d.DueDate, "none"))
	fmt.Fprintf(out, "Priority:   %s\n", priorityOr(d.Priority, "none"))
	fmt.Fprintf(out, "Status:     %s\n", d.Status)
	fmt.Fprintf(out, "Contact:    %s\n", contact)
	if d.Transcript != nil {
		fmt.Fprintf(out, "Transcript: %s\n", *d.Transcript)
	}
	fmt.Fprintf(out, "Source:     %s\n", source)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'capturedesk capture approve' to save, or 'capturedesk capture fix \"...\"' to adjust.")
}

func valueOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

func priorityOr(value *analysis.Priority, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return string(*value)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
