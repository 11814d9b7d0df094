// Package memory is an in-process snapshot store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/services/storefront/internal/repository"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// SnapshotRepository keeps encoded snapshots in a map. Values are stored as
// JSON so decoding behaves exactly as with Redis.
type SnapshotRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates an empty in-memory repository. A zero TTL
// keeps entries forever.
func NewSnapshotRepository(ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get decodes the snapshot stored under key into dst.
func (r *SnapshotRepository) Get(_ context.Context, sessionID string, key repository.Key, dst any) error {
	r.mu.RLock()
	e, ok := r.entries[repository.StorageKey(sessionID, key)]
	r.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !r.now().Before(e.expiresAt)) {
		return apperrors.NotFound(string(key)+" snapshot", sessionID)
	}

	if err := json.Unmarshal(e.data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w: %w", key, repository.ErrCorrupt, err)
	}
	return nil
}

// Save encodes v and stores it under key.
func (r *SnapshotRepository) Save(_ context.Context, sessionID string, key repository.Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	r.SetRaw(sessionID, key, data)
	return nil
}

// SetRaw stores data as is, bypassing encoding.
func (r *SnapshotRepository) SetRaw(sessionID string, key repository.Key, data []byte) {
	e := entry{data: data}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	r.entries[repository.StorageKey(sessionID, key)] = e
	r.mu.Unlock()
}

// Delete removes every snapshot of the session.
func (r *SnapshotRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range repository.Keys {
		delete(r.entries, repository.StorageKey(sessionID, k))
	}
	return nil
}
