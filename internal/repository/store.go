// Package repository defines the key-value contract every auth component
// persists through, plus its backends in the sub-packages.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or has expired.
var ErrNotFound = errors.New("key not found")

// Store is a flat key-value namespace with per-key expiry. Single-key
// operations are atomic; there are no multi-key transactions.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A ttl <= 0 means the key never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Del removes keys; missing keys are ignored.
	Del(ctx context.Context, keys ...string) error
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
