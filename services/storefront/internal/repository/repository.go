package repository

import (
	"context"
	"errors"
)

// Key names one of the snapshots kept per session.
type Key string

// Snapshot keys.
const (
	KeyCart       Key = "cart"
	KeyComparison Key = "comparison"
	KeyFavorites  Key = "favorites"
)

// Keys lists every snapshot key.
var Keys = []Key{KeyCart, KeyComparison, KeyFavorites}

// KeyPrefix scopes every stored snapshot.
const KeyPrefix = "storefront:"

// ErrCorrupt is wrapped by Get when a stored snapshot cannot be decoded.
var ErrCorrupt = errors.New("corrupt snapshot")

// StorageKey returns the storage key of a session snapshot.
func StorageKey(sessionID string, key Key) string {
	return KeyPrefix + sessionID + ":" + string(key)
}

// SnapshotRepository persists per-session JSON snapshots.
type SnapshotRepository interface {
	// Get decodes the snapshot stored under key into dst. It returns a
	// not-found error when nothing is stored and an error wrapping
	// ErrCorrupt when the stored value is not valid JSON for dst.
	Get(ctx context.Context, sessionID string, key Key, dst any) error

	// Save encodes v and stores it under key, replacing any previous value.
	Save(ctx context.Context, sessionID string, key Key, v any) error

	// Delete removes every snapshot of the session.
	Delete(ctx context.Context, sessionID string) error
}
