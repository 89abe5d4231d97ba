// Package audit records every reconciliation and verification decision as an
// append-only fact. Entries are never mutated or deleted; the log is
// replayable from any recorded offset for human review and regression tests.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies entries by the engine that produced them.
type Category string

const (
	CategoryReconciliation Category = "reconciliation"
	CategoryVerification   Category = "verification"
)

// Actions recorded by the engines.
const (
	ActionDrawReconciled  = "draw_reconciled"
	ActionTicketVerified  = "ticket_verified"
	ActionInvariantFault  = "invariant_fault"
	ActionImportCompleted = "import_completed"
)

// Event is emitted from domain logic to capture one decision. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Offset    int64     `json:"offset"` // assigned by the store on append
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Action    string    `json:"action"`

	Game    string `json:"game,omitempty"`
	DrawRef string `json:"draw_ref,omitempty"`

	// Decision is the outcome ("adopted", "conflicted", "jackpot", ...);
	// Reason carries the rationale, including which candidates agreed or
	// disagreed and which rule fired.
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`

	// CandidateIDs references the draw or ticket candidates involved. Both
	// sides of a disagreement are listed.
	CandidateIDs []string `json:"candidate_ids,omitempty"`

	SourceID  string `json:"source_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
