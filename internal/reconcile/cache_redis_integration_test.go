//go:build integration

package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lottoledger/pkg/testutil/containers"
)

// countingStore counts reads so tests can observe cache hits.
type countingStore struct {
	*InMemoryStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, key Key) (CanonicalDraw, error) {
	s.gets++
	return s.InMemoryStore.Get(ctx, key)
}

func TestCachedStore_ReadThrough(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(context.Background()))

	inner := &countingStore{InMemoryStore: NewInMemoryStore()}
	store := NewCachedStore(inner, rc.Client, time.Minute)
	ctx := context.Background()

	draw := CanonicalDraw{
		Game:      "lotto649",
		Ref:       DrawRef{Seq: 2041},
		Mains:     []int{3, 11, 19, 27, 34, 45},
		Status:    StatusComplete,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Put(ctx, draw))

	// Put wrote through and cached; this read must be served from Redis.
	got, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, draw.Mains, got.Mains)
	assert.Equal(t, 0, inner.gets)
}

func TestCachedStore_MissFallsBackAndCaches(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(context.Background()))

	inner := &countingStore{InMemoryStore: NewInMemoryStore()}
	ctx := context.Background()

	draw := CanonicalDraw{Game: "lotto649", Ref: DrawRef{Seq: 7}, Status: StatusPartial}
	require.NoError(t, inner.Put(ctx, draw))

	store := NewCachedStore(inner, rc.Client, time.Minute)

	_, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)

	_, err = store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets, "second read served from cache")
}

func TestCachedStore_PutRefreshesCachedEntry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(context.Background()))

	inner := &countingStore{InMemoryStore: NewInMemoryStore()}
	store := NewCachedStore(inner, rc.Client, time.Minute)
	ctx := context.Background()

	draw := CanonicalDraw{Game: "lotto649", Ref: DrawRef{Seq: 8}, Mains: []int{1, 2, 3}, Status: StatusPartial}
	require.NoError(t, store.Put(ctx, draw))

	draw.Mains = []int{1, 2, 3, 4, 5, 6}
	draw.Status = StatusComplete
	require.NoError(t, store.Put(ctx, draw))

	got, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Len(t, got.Mains, 6)
	assert.Equal(t, 0, inner.gets)
}
