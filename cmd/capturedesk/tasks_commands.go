package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"capturedesk/internal/store"
	"capturedesk/internal/tasks"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and update saved follow-up tasks",
	}
	tasksCmd.AddCommand(newTasksListCommand(ctx))
	tasksCmd.AddCommand(newTasksStatusCommand(ctx))
	tasksCmd.AddCommand(newTasksClearCommand(ctx))
	return tasksCmd
}

func newTasksListCommand(ctx *commandContext) *cobra.Command {
	var filterFlag string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (today, week, overdue, or all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := tasks.ParseFilter(filterFlag)
			if err != nil {
				return err
			}
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				list, err := tasks.NewRepository(kv).List(cmd.Context())
				if err != nil {
					return err
				}
				visible := tasks.Apply(list, filter, time.Now())
				if jsonOut {
					return writeJSON(cmd, visible)
				}
				out := cmd.OutOrStdout()
				if len(visible) == 0 {
					fmt.Fprintf(out, "No tasks (%s)\n", filter)
					return nil
				}
				rows := make([][]string, 0, len(visible))
				for _, task := range visible {
					rows = append(rows, []string{
						shortID(task.ID),
						task.Title,
						valueOr(task.DueDate, "-"),
						priorityOr(task.Priority, "-"),
						task.Status,
						task.ContactName,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Due", "Priority", "Status", "Contact"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filterFlag, "filter", "f", string(tasks.FilterAll), "Filter: today, week, overdue, or all")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output tasks as JSON")
	return cmd
}

func newTasksStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Set the status of a task (Open, Done, Waiting, Snoozed, Canceled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := tasks.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				repo := tasks.NewRepository(kv)
				id, err := resolveTaskID(cmd.Context(), repo, args[0])
				if err != nil {
					return err
				}
				task, err := repo.UpdateStatus(cmd.Context(), id, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", shortID(task.ID), task.Status)
				return nil
			})
		},
	}
}

func newTasksClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withUnlockedStore(cmd, func(kv *store.Store) error {
				if !yes {
					answer, err := ctx.readLine(cmd, "Delete all tasks? [y/N]: ")
					if err != nil {
						return err
					}
					if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
						return nil
					}
				}
				if err := tasks.NewRepository(kv).Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All tasks cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// resolveTaskID accepts a full id or a unique prefix of one.
func resolveTaskID(ctx context.Context, repo *tasks.Repository, value string) (string, error) {
	prefix := strings.ToLower(strings.TrimSpace(value))
	if prefix == "" {
		return "", fmt.Errorf("task id must not be empty")
	}
	list, err := repo.List(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, task := range list {
		id := strings.ToLower(task.ID)
		if id == prefix {
			return task.ID, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, task.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", tasks.ErrNotFound, value)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task id %q is ambiguous (%d matches)", value, len(matches))
	}
}
