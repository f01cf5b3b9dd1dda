package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"capturedesk/internal/review"
	"capturedesk/internal/store"
)

// StorageKey is the store key holding the JSON task list.
const StorageKey = "tasks"

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Repository reads and writes the whole task list under one key, newest first.
type Repository struct {
	kv store.KV
}

// NewRepository constructs a repository over kv.
func NewRepository(kv store.KV) *Repository {
	return &Repository{kv: kv}
}

// List returns every task. A missing or corrupt list reads as empty.
func (r *Repository) List(ctx context.Context) ([]Task, error) {
	raw, ok, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	if !ok || raw == "" {
		return []Task{}, nil
	}
	var list []Task
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []Task{}, nil
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

// Approve saves draft as a new task at the front of the list. The transcript
// is not kept.
func (r *Repository) Approve(ctx context.Context, draft review.Draft, now time.Time) (Task, error) {
	list, err := r.List(ctx)
	if err != nil {
		return Task{}, err
	}
	draft.Transcript = nil
	task := Task{Draft: draft, CreatedAt: now.UTC().Format(time.RFC3339Nano)}

	updated := make([]Task, 0, len(list)+1)
	updated = append(updated, task)
	updated = append(updated, list...)
	if err := r.save(ctx, updated); err != nil {
		return Task{}, err
	}
	return task, nil
}

// UpdateStatus changes the status of the task with id.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (Task, error) {
	list, err := r.List(ctx)
	if err != nil {
		return Task{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i].Status = string(status)
		if err := r.save(ctx, list); err != nil {
			return Task{}, err
		}
		return list[i], nil
	}
	return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes every task.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, list []Task) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := r.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}
