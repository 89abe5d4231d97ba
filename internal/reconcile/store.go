package reconcile

import (
	"context"

	dErrors "lottoledger/pkg/domain-errors"
)

// Stores are interface-driven to keep the merge logic testable and to allow
// swapping in-memory, Postgres, or cached persistence without rewiring
// business code. Implementations must return snapshot copies: a reader must
// never observe a half-updated record.
type Store interface {
	Get(ctx context.Context, key Key) (CanonicalDraw, error)
	Put(ctx context.Context, draw CanonicalDraw) error
	ListByGame(ctx context.Context, game string, limit int) ([]CanonicalDraw, error)
}

// ErrNotFound keeps store-specific misses consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "canonical draw not found")
