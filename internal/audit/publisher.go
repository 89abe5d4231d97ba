package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sink receives events after durable append, e.g. a Kafka producer. Sinks are
// best-effort: a sink failure is logged, never propagated, since the store
// already holds the fact.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// store for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks, logger: logger}
}

// Emit appends the event and fans it out to sinks. ID and timestamp are
// filled in when the caller left them zero.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	offset, err := p.store.Append(ctx, event)
	if err != nil {
		return err
	}
	event.Offset = offset

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"offset", event.Offset,
				"error", err,
			)
		}
	}
	return nil
}

// ListFrom replays recorded events starting at offset.
func (p *Publisher) ListFrom(ctx context.Context, offset int64, limit int) ([]Event, error) {
	return p.store.ListFrom(ctx, offset, limit)
}
