package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/services/storefront/internal/repository"
)

// SnapshotRepository implements repository.SnapshotRepository using Redis.
type SnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new Redis-backed snapshot repository.
// Every save refreshes the key's TTL; a zero TTL keeps keys forever.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves and decodes a snapshot from Redis.
func (r *SnapshotRepository) Get(ctx context.Context, sessionID string, key repository.Key, dst any) error {
	data, err := r.client.Get(ctx, repository.StorageKey(sessionID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.NotFound(string(key)+" snapshot", sessionID)
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w: %w", key, repository.ErrCorrupt, err)
	}
	return nil
}

// Save persists a snapshot to Redis with the configured TTL.
func (r *SnapshotRepository) Save(ctx context.Context, sessionID string, key repository.Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, repository.StorageKey(sessionID, key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes all snapshots of a session.
func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	keys := make([]string, 0, len(repository.Keys))
	for _, k := range repository.Keys {
		keys = append(keys, repository.StorageKey(sessionID, k))
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del snapshots: %w", err)
	}
	return nil
}
