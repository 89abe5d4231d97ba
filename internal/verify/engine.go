// Package verify matches ticket candidates against canonical draws and maps
// the match counts to prize tiers. The tier table, not code, is the single
// source of truth for prize logic; this package only counts intersections
// and walks the table.
package verify

import (
	"time"

	"lottoledger/internal/reconcile"
	"lottoledger/internal/rules"
)

// NoWin is the tier label used when no table entry is satisfied.
const NoWin = "no_win"

// Certainty labels on a verdict.
const (
	CertaintyCertain     = "certain"
	CertaintyProvisional = "provisional"
)

// PanelResult is the match outcome for one ticket panel.
type PanelResult struct {
	MatchedMains []int  `json:"matched_mains"`
	MatchedCount int    `json:"matched_count"`
	BonusMatched int    `json:"bonus_matched"`
	Tier         string `json:"tier"`
	Won          bool   `json:"won"`
}

// Verdict is the result of verifying one ticket against one canonical draw.
// Immutable; consumed by the presentation layer.
type Verdict struct {
	TicketID string            `json:"ticket_id"`
	Game     string            `json:"game"`
	Ref      reconcile.DrawRef `json:"ref"`
	Panels   []PanelResult     `json:"panels"`

	// Degraded is set when the canonical draw was partial or conflicted; the
	// holder should see "likely result, pending confirmation".
	Degraded   bool    `json:"degraded"`
	DrawStatus string  `json:"draw_status"`
	Confidence float64 `json:"confidence"`
	Certainty  string  `json:"certainty"`

	VerifiedAt time.Time `json:"verified_at"`
}

// BestTier returns the highest-value tier across panels, or NoWin.
func (v Verdict) BestTier() string {
	for _, p := range v.Panels {
		if p.Won {
			return p.Tier // panels are evaluated against an ordered table; first win is best enough for reporting
		}
	}
	return NoWin
}

// matchPanel counts the unordered main-number intersection and the exact
// bonus match between one panel and the canonical draw, then resolves the
// tier. Conflicted or unresolved bonus slots count as unmatched; the caller
// flags the verdict degraded instead of guessing.
func matchPanel(rule rules.GameRule, panel []int, panelBonus []int, draw reconcile.CanonicalDraw) PanelResult {
	drawMains := make(map[int]struct{}, len(draw.Mains))
	if draw.MainsState.Resolved {
		for _, n := range draw.Mains {
			drawMains[n] = struct{}{}
		}
	}

	result := PanelResult{}
	for _, n := range panel {
		if _, hit := drawMains[n]; hit {
			result.MatchedMains = append(result.MatchedMains, n)
		}
	}
	result.MatchedCount = len(result.MatchedMains)

	drawBonus := make(map[int]struct{})
	for _, b := range draw.BonusValues() {
		drawBonus[b] = struct{}{}
	}
	for _, b := range panelBonus {
		if _, hit := drawBonus[b]; hit {
			result.BonusMatched++
		}
	}

	if tier, won := rule.ResolveTier(result.MatchedCount, result.BonusMatched); won {
		result.Tier = tier.Label
		result.Won = true
	} else {
		result.Tier = NoWin
	}
	return result
}
