// Package settings stores user preferences alongside the task list.
package settings

import (
	"context"
	"fmt"
	"strconv"

	"capturedesk/internal/store"
)

// SoundKey holds whether capture sounds are on by default.
const SoundKey = "defaultSoundEnabled"

// Settings reads and writes preferences through a key-value store.
type Settings struct {
	kv store.KV
}

// New constructs settings over kv.
func New(kv store.KV) *Settings {
	return &Settings{kv: kv}
}

// SoundEnabled reports the default sound preference. Only an explicit
// "false" turns it off.
func (s *Settings) SoundEnabled(ctx context.Context) (bool, error) {
	value, ok, err := s.kv.Get(ctx, SoundKey)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", SoundKey, err)
	}
	return !ok || value != "false", nil
}

// SetSoundEnabled stores the default sound preference.
func (s *Settings) SetSoundEnabled(ctx context.Context, enabled bool) error {
	if err := s.kv.Set(ctx, SoundKey, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("write %s: %w", SoundKey, err)
	}
	return nil
}
