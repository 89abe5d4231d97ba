//go:build integration

package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lottoledger/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()

	pg := containers.NewPostgresContainer(t)
	pool, err := pgxpool.New(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, Schema)
	require.NoError(t, err)

	return NewPostgresStore(pool)
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	contributor := uuid.New()
	draw := CanonicalDraw{
		Game:       "lotto649",
		Ref:        DrawRef{Seq: 2041},
		Mains:      []int{3, 11, 19, 27, 34, 45},
		MainsState: FieldState{Resolved: true, Score: 0.9, Contributor: contributor},
		Status:     StatusComplete,
		Provenance: []Contribution{{
			CandidateID: contributor,
			SourceID:    "official-site",
			Score:       0.9,
			Role:        RoleAdopted,
			Field:       "mains",
			RecordedAt:  time.Now().UTC().Truncate(time.Millisecond),
		}},
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.Put(ctx, draw))

	got, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, draw.Mains, got.Mains)
	assert.Equal(t, draw.Status, got.Status)
	assert.Equal(t, contributor, got.MainsState.Contributor)
	require.Len(t, got.Provenance, 1)
	assert.Equal(t, RoleAdopted, got.Provenance[0].Role)
}

func TestPostgresStore_UpsertReplaces(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	draw := CanonicalDraw{
		Game:      "lotto649",
		Ref:       DrawRef{Seq: 1},
		Mains:     []int{1, 2, 3},
		Status:    StatusPartial,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Put(ctx, draw))

	draw.Mains = []int{1, 2, 3, 4, 5, 6}
	draw.Status = StatusComplete
	draw.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.Put(ctx, draw))

	got, err := store.Get(ctx, draw.Key())
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Len(t, got.Mains, 6)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	store := newPostgresStore(t)
	_, err := store.Get(context.Background(), Key{Game: "lotto649", Ref: "seq:404"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_ListByGame(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.Put(ctx, CanonicalDraw{
			Game:      "lotto649",
			Ref:       DrawRef{Seq: i},
			Status:    StatusPartial,
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, store.Put(ctx, CanonicalDraw{
		Game:      "powerballx",
		Ref:       DrawRef{Seq: 1},
		Status:    StatusPartial,
		UpdatedAt: base,
	}))

	draws, err := store.ListByGame(ctx, "lotto649", 2)
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, "seq:3", draws[0].Ref.String(), "most recent first")
}
