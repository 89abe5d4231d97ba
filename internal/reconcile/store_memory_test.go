package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_ReturnsSnapshots(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	draw := CanonicalDraw{
		Game:  "lotto649",
		Ref:   DrawRef{Seq: 9},
		Mains: []int{3, 11, 19, 27, 34, 45},
		MainsState: FieldState{
			Resolved:    true,
			Score:       0.9,
			Contributor: uuid.New(),
		},
		Status: StatusComplete,
	}
	require.NoError(t, store.Put(ctx, draw))

	got, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)

	// Mutating the returned snapshot must not reach the stored record.
	got.Mains[0] = 99
	again, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, 3, again.Mains[0])
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get(context.Background(), Key{Game: "lotto649", Ref: "seq:1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyMutex_SerializesSameKey(t *testing.T) {
	locks := newKeyMutex()
	key := Key{Game: "lotto649", Ref: "seq:1"}

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
