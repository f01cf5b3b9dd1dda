// Package pin guards local task data behind a 4-digit PIN. Only the SHA-256
// digest of the PIN is ever stored.
package pin

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"capturedesk/internal/store"
)

// HashKey is the store key holding the hex digest.
const HashKey = "pinHash"

var (
	// ErrInvalidFormat rejects anything but exactly four ASCII digits.
	ErrInvalidFormat = errors.New("PIN must be 4 digits.")
	// ErrMismatch means the confirmation differs from the new PIN.
	ErrMismatch = errors.New("PIN entries do not match.")
	// ErrIncorrectPIN means an unlock attempt did not match the stored digest.
	ErrIncorrectPIN = errors.New("Incorrect PIN.")
	// ErrNotSet means Unlock was called before any PIN exists.
	ErrNotSet = errors.New("no PIN has been set")
)

// Gate reads and writes the PIN digest through a key-value store.
type Gate struct {
	kv store.KV
}

// NewGate constructs a gate over kv.
func NewGate(kv store.KV) *Gate {
	return &Gate{kv: kv}
}

// HasPIN reports whether a PIN digest is stored.
func (g *Gate) HasPIN(ctx context.Context) (bool, error) {
	value, ok, err := g.kv.Get(ctx, HashKey)
	if err != nil {
		return false, fmt.Errorf("read pin hash: %w", err)
	}
	return ok && value != "", nil
}

// Set validates pin and confirm and stores the digest, replacing any existing one.
func (g *Gate) Set(ctx context.Context, pin, confirm string) error {
	if !validFormat(pin) {
		return ErrInvalidFormat
	}
	if pin != confirm {
		return ErrMismatch
	}
	if err := g.kv.Set(ctx, HashKey, Hash(pin)); err != nil {
		return fmt.Errorf("store pin hash: %w", err)
	}
	return nil
}

// Unlock checks pin against the stored digest.
func (g *Gate) Unlock(ctx context.Context, pin string) error {
	if !validFormat(pin) {
		return ErrInvalidFormat
	}
	stored, ok, err := g.kv.Get(ctx, HashKey)
	if err != nil {
		return fmt.Errorf("read pin hash: %w", err)
	}
	if !ok || stored == "" {
		return ErrNotSet
	}
	if subtle.ConstantTimeCompare([]byte(Hash(pin)), []byte(stored)) != 1 {
		return ErrIncorrectPIN
	}
	return nil
}

// Hash returns the lowercase hex SHA-256 digest of pin.
func Hash(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

func validFormat(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
