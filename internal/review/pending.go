package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"capturedesk/internal/api"
	"capturedesk/internal/store"
)

// PendingKey is the store key holding the draft awaiting approval.
const PendingKey = "pendingReview"

// ErrNoPending is returned when there is no draft to act on.
var ErrNoPending = errors.New("no pending review; run 'capturedesk capture new' first")

// Pending pairs a draft with the capture it came from so a correction can be
// resubmitted later.
type Pending struct {
	Capture   api.Capture `json:"capture"`
	Draft     Draft       `json:"draft"`
	Offline   bool        `json:"offline"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PendingStore keeps at most one pending review in a key-value store.
type PendingStore struct {
	kv store.KV
}

// NewPendingStore constructs a pending store over kv.
func NewPendingStore(kv store.KV) *PendingStore {
	return &PendingStore{kv: kv}
}

// Save replaces the pending review.
func (p *PendingStore) Save(ctx context.Context, pending Pending) error {
	if pending.UpdatedAt.IsZero() {
		pending.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending review: %w", err)
	}
	if err := p.kv.Set(ctx, PendingKey, string(data)); err != nil {
		return fmt.Errorf("store pending review: %w", err)
	}
	return nil
}

// Load returns the pending review or ErrNoPending. A corrupt entry reads as
// no pending review.
func (p *PendingStore) Load(ctx context.Context) (Pending, error) {
	raw, ok, err := p.kv.Get(ctx, PendingKey)
	if err != nil {
		return Pending{}, fmt.Errorf("read pending review: %w", err)
	}
	if !ok || raw == "" {
		return Pending{}, ErrNoPending
	}
	var pending Pending
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return Pending{}, ErrNoPending
	}
	return pending, nil
}

// Discard drops the pending review.
func (p *PendingStore) Discard(ctx context.Context) error {
	if err := p.kv.Delete(ctx, PendingKey); err != nil {
		return fmt.Errorf("discard pending review: %w", err)
	}
	return nil
}
