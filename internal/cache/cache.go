// Package cache stores values with a time-to-live in a localstore.Store.
//
// Eviction is lazy: an expired entry is deleted when it is next read and
// never otherwise. There is no capacity bound.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/leca/menudesk/internal/localstore"
)

// entry is the serialized form of one cached value.
type entry[V any] struct {
	Value     V     `json:"value"`
	ExpiresAt int64 `json:"expiresAt"` // unix milliseconds
}

// Store is a TTL-tagged key-value store over a localstore.Store.
type Store[V any] struct {
	local  localstore.Store
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Store writing to local.
func New[V any](local localstore.Store, logger *slog.Logger) *Store[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[V]{local: local, now: time.Now, logger: logger}
}

// Set stores value under key until ttlHours from now. A zero or negative
// TTL produces an entry that is already expired.
func (s *Store[V]) Set(ctx context.Context, key string, value V, ttlHours float64) error {
	ttl := time.Duration(ttlHours * float64(time.Hour))
	raw, err := json.Marshal(entry[V]{Value: value, ExpiresAt: s.now().Add(ttl).UnixMilli()})
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", key, err)
	}
	if err := s.local.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key. Missing, unreadable and expired
// entries are reported as absent; unreadable and expired ones are deleted.
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	raw, ok, err := s.local.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var e entry[V]
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		s.logger.WarnContext(ctx, "dropping unreadable cache entry", "key", key,
			"error", fmt.Errorf("%w: %v", localstore.ErrCorrupt, err))
		s.evict(ctx, key)
		return zero, false
	}

	if s.now().UnixMilli() >= e.ExpiresAt {
		s.evict(ctx, key)
		return zero, false
	}
	return e.Value, true
}

// Remove deletes key regardless of its expiry.
func (s *Store[V]) Remove(ctx context.Context, key string) error {
	if err := s.local.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove cache entry %s: %w", key, err)
	}
	return nil
}

func (s *Store[V]) evict(ctx context.Context, key string) {
	if err := s.local.Remove(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "cache eviction failed", "key", key, "error", err)
	}
}
