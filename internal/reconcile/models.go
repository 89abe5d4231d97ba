// Package reconcile merges draw observations from heterogeneous, low-trust
// sources into one canonical draw per (game, draw reference) key. Conflicts
// between comparably trusted sources become an explicit field state instead
// of a last-write-wins race.
package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DrawRef identifies one draw of a game, by sequence number, by date, or
// both. At least one must be set.
type DrawRef struct {
	Seq  int64  `json:"seq,omitempty"`
	Date string `json:"date,omitempty"` // ISO yyyy-mm-dd
}

// String renders the reference in its canonical key form. Sequence wins when
// both are known, so the same draw observed by sequence and by date cannot
// split into two keys once a sequence is known.
func (r DrawRef) String() string {
	if r.Seq > 0 {
		return fmt.Sprintf("seq:%d", r.Seq)
	}
	return "date:" + r.Date
}

// IsZero reports whether the reference carries no identity at all.
func (r DrawRef) IsZero() bool {
	return r.Seq == 0 && r.Date == ""
}

// Key is the dedup key for canonical draws.
type Key struct {
	Game string
	Ref  string
}

// DrawCandidate is one normalized observation of a draw. Immutable once
// created; reconciliation only reads it.
type DrawCandidate struct {
	ID   uuid.UUID `json:"id"`
	Game string    `json:"game"`
	Ref  DrawRef   `json:"ref"`

	// Mains is sorted, unique, and in-range; it may hold fewer numbers than
	// the game requires when the observation was partial.
	Mains []int `json:"mains"`

	// Bonus holds known bonus values. BonusKnown distinguishes "observed as
	// empty" from "field absent in the observation"; absent is never inferred.
	Bonus      []int `json:"bonus"`
	BonusKnown bool  `json:"bonus_known"`

	SourceID   string    `json:"source_id"`
	Trust      float64   `json:"trust"`
	Confidence float64   `json:"confidence"`
	CapturedAt time.Time `json:"captured_at"`

	// Warnings carries normalization notes (dropped numbers etc) for audit.
	Warnings []string `json:"warnings,omitempty"`
}

// Key returns the dedup key this candidate merges into.
func (c DrawCandidate) Key() Key {
	return Key{Game: c.Game, Ref: c.Ref.String()}
}

// Score is the candidate's weight in merge decisions.
func (c DrawCandidate) Score() float64 {
	return c.Trust * c.Confidence
}

// Complete reports whether the candidate supplies all mains the game needs.
func (c DrawCandidate) Complete(mainCount int) bool {
	return len(c.Mains) == mainCount
}

// Status is the resolution state of a canonical draw.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusPartial    Status = "partial"
	StatusConflicted Status = "conflicted"
)

// FieldState tracks how a canonical field was resolved. Score belongs to the
// best contributor so far; a later candidate must beat it by the configured
// margin to replace the value.
type FieldState struct {
	Resolved    bool      `json:"resolved"`
	Conflicted  bool      `json:"conflicted"`
	Score       float64   `json:"score"`
	Contributor uuid.UUID `json:"contributor"`
}

// BonusSlot is one bonus-ball position of a canonical draw.
type BonusSlot struct {
	Value int        `json:"value"`
	State FieldState `json:"state"`
}

// ContributionRole describes what a candidate did to the canonical record.
type ContributionRole string

const (
	RoleAdopted   ContributionRole = "adopted"
	RoleReplaced  ContributionRole = "replaced"
	RoleDisplaced ContributionRole = "displaced"
	RoleAgreed    ContributionRole = "agreed"
	RoleDisagreed ContributionRole = "disagreed"
	RoleRejected  ContributionRole = "rejected"
)

// Contribution is one provenance entry. Displaced and disagreeing candidates
// stay in the list; provenance is never pruned.
type Contribution struct {
	CandidateID uuid.UUID        `json:"candidate_id"`
	SourceID    string           `json:"source_id"`
	Score       float64          `json:"score"`
	Role        ContributionRole `json:"role"`
	Field       string           `json:"field"`
	RecordedAt  time.Time        `json:"recorded_at"`
}

// CanonicalDraw is the merged, trusted record for one (game, draw ref) key.
// Created and updated only by the reconciler.
type CanonicalDraw struct {
	Game string  `json:"game"`
	Ref  DrawRef `json:"ref"`

	Mains      []int      `json:"mains"`
	MainsState FieldState `json:"mains_state"`

	// Bonus has exactly the game's bonus-slot count; unresolved slots carry
	// a zero value with State.Resolved false.
	Bonus []BonusSlot `json:"bonus"`

	Status     Status         `json:"status"`
	Provenance []Contribution `json:"provenance"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Key returns the dedup key for the draw.
func (d CanonicalDraw) Key() Key {
	return Key{Game: d.Game, Ref: d.Ref.String()}
}

// BonusValues returns the resolved, non-conflicted bonus values.
func (d CanonicalDraw) BonusValues() []int {
	vals := make([]int, 0, len(d.Bonus))
	for _, slot := range d.Bonus {
		if slot.State.Resolved && !slot.State.Conflicted {
			vals = append(vals, slot.Value)
		}
	}
	return vals
}

// HasContribution reports whether the candidate already appears in provenance.
// Reconciling the same candidate twice is a no-op on the second call.
func (d CanonicalDraw) HasContribution(candidateID uuid.UUID) bool {
	for _, c := range d.Provenance {
		if c.CandidateID == candidateID {
			return true
		}
	}
	return false
}

// clone returns a deep copy so readers always get a snapshot.
func (d CanonicalDraw) clone() CanonicalDraw {
	out := d
	out.Mains = append([]int(nil), d.Mains...)
	out.Bonus = append([]BonusSlot(nil), d.Bonus...)
	out.Provenance = append([]Contribution(nil), d.Provenance...)
	return out
}
