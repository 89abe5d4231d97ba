package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func newTestPublisher(sinks ...Sink) (*Publisher, *InMemoryStore) {
	store := NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPublisher(store, logger, sinks...), store
}

func TestEmit_AssignsIdentityAndOffset(t *testing.T) {
	pub, store := newTestPublisher()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := pub.Emit(ctx, Event{
			Category: CategoryReconciliation,
			Action:   ActionDrawReconciled,
			Game:     "lotto649",
			Decision: "adopted",
		})
		require.NoError(t, err)
	}

	events, err := store.ListFrom(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Offset, "offsets are dense from 1")
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestEmit_FansOutToSinks(t *testing.T) {
	sink := &recordingSink{}
	pub, _ := newTestPublisher(sink)

	err := pub.Emit(context.Background(), Event{
		Category: CategoryVerification,
		Action:   ActionTicketVerified,
		Decision: "Jackpot",
	})
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.Equal(t, int64(1), sink.events[0].Offset, "sinks see the assigned offset")
}

func TestEmit_SinkFailureIsBestEffort(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker unreachable")}
	pub, store := newTestPublisher(sink)

	err := pub.Emit(context.Background(), Event{
		Category: CategoryReconciliation,
		Action:   ActionDrawReconciled,
		Decision: "adopted",
	})
	require.NoError(t, err, "the store already holds the fact; sink failures never propagate")

	events, err := store.ListFrom(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestListFrom_ReplaysFromOffset(t *testing.T) {
	pub, _ := newTestPublisher()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, pub.Emit(ctx, Event{Category: CategoryReconciliation, Action: ActionDrawReconciled, Decision: "adopted"}))
	}

	events, err := pub.ListFrom(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), events[0].Offset)

	tail, err := pub.ListFrom(ctx, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, tail)

	capped, err := pub.ListFrom(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}
