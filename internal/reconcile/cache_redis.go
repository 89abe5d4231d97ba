package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore decorates a Store with a Redis read-through cache for single
// draw lookups. Verification is read-heavy against a small set of recent
// draws, so a short TTL absorbs most of that load. Upserts write through and
// refresh the cached entry, keeping readers on the post-merge snapshot.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

func cacheKey(key Key) string {
	return fmt.Sprintf("draw:%s:%s", key.Game, key.Ref)
}

func (s *CachedStore) Get(ctx context.Context, key Key) (CanonicalDraw, error) {
	cached, err := s.client.Get(ctx, cacheKey(key)).Bytes()
	if err == nil {
		var draw CanonicalDraw
		if jsonErr := json.Unmarshal(cached, &draw); jsonErr == nil {
			return draw, nil
		}
		// Corrupt entry; fall through to the store and rewrite below.
	} else if !errors.Is(err, redis.Nil) {
		// Cache unavailable is not fatal; serve from the store.
		return s.inner.Get(ctx, key)
	}

	draw, err := s.inner.Get(ctx, key)
	if err != nil {
		return CanonicalDraw{}, err
	}
	s.cache(ctx, draw)
	return draw, nil
}

func (s *CachedStore) Put(ctx context.Context, draw CanonicalDraw) error {
	if err := s.inner.Put(ctx, draw); err != nil {
		return err
	}
	s.cache(ctx, draw)
	return nil
}

// ListByGame always hits the store; listings are an admin surface and not
// worth cache invalidation complexity.
func (s *CachedStore) ListByGame(ctx context.Context, game string, limit int) ([]CanonicalDraw, error) {
	return s.inner.ListByGame(ctx, game, limit)
}

func (s *CachedStore) cache(ctx context.Context, draw CanonicalDraw) {
	doc, err := json.Marshal(draw)
	if err != nil {
		return
	}
	// Best-effort; a failed SET only costs a future cache miss.
	s.client.Set(ctx, cacheKey(draw.Key()), doc, s.ttl)
}
