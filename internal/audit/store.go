package audit

import "context"

// Store persists audit events. Append assigns and returns a monotonically
// increasing offset; ListFrom replays events at or after the given offset so
// consumers can restart from any recorded position.
type Store interface {
	Append(ctx context.Context, event Event) (int64, error)
	ListFrom(ctx context.Context, offset int64, limit int) ([]Event, error)
}
