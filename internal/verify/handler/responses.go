package handler

import (
	"time"

	"lottoledger/internal/verify"
)

// PanelResponse renders one panel's match outcome.
type PanelResponse struct {
	MatchedMains []int  `json:"matched_mains"`
	MatchedCount int    `json:"matched_count"`
	BonusMatched int    `json:"bonus_matched"`
	Tier         string `json:"tier"`
	Won          bool   `json:"won"`
}

// VerdictResponse is the public view of a verification verdict.
type VerdictResponse struct {
	TicketID   string          `json:"ticket_id"`
	Game       string          `json:"game"`
	DrawRef    string          `json:"draw_ref"`
	Panels     []PanelResponse `json:"panels"`
	BestTier   string          `json:"best_tier"`
	Degraded   bool            `json:"degraded"`
	DrawStatus string          `json:"draw_status"`
	Confidence float64         `json:"confidence"`
	Certainty  string          `json:"certainty"`
	VerifiedAt time.Time       `json:"verified_at"`
}

// FromVerdict maps the domain verdict to its response shape.
func FromVerdict(v verify.Verdict) VerdictResponse {
	resp := VerdictResponse{
		TicketID:   v.TicketID,
		Game:       v.Game,
		DrawRef:    v.Ref.String(),
		BestTier:   v.BestTier(),
		Degraded:   v.Degraded,
		DrawStatus: v.DrawStatus,
		Confidence: v.Confidence,
		Certainty:  v.Certainty,
		VerifiedAt: v.VerifiedAt,
	}
	for _, p := range v.Panels {
		resp.Panels = append(resp.Panels, PanelResponse{
			MatchedMains: p.MatchedMains,
			MatchedCount: p.MatchedCount,
			BonusMatched: p.BonusMatched,
			Tier:         p.Tier,
			Won:          p.Won,
		})
	}
	return resp
}
