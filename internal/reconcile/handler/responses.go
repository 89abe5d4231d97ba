package handler

import (
	"time"

	"lottoledger/internal/reconcile"
)

// FieldStateResponse renders one field's resolution state.
type FieldStateResponse struct {
	Resolved   bool    `json:"resolved"`
	Conflicted bool    `json:"conflicted"`
	Score      float64 `json:"score"`
}

// BonusSlotResponse renders one bonus-ball slot.
type BonusSlotResponse struct {
	Value int                `json:"value"`
	State FieldStateResponse `json:"state"`
}

// ContributionResponse renders one provenance entry.
type ContributionResponse struct {
	CandidateID string    `json:"candidate_id"`
	SourceID    string    `json:"source_id"`
	Score       float64   `json:"score"`
	Role        string    `json:"role"`
	Field       string    `json:"field"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// DrawResponse is the public view of a canonical draw.
type DrawResponse struct {
	Game       string                 `json:"game"`
	DrawRef    string                 `json:"draw_ref"`
	Mains      []int                  `json:"mains"`
	MainsState FieldStateResponse     `json:"mains_state"`
	Bonus      []BonusSlotResponse    `json:"bonus,omitempty"`
	Status     string                 `json:"status"`
	Provenance []ContributionResponse `json:"provenance"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// FromDraw maps the domain record to its response shape.
func FromDraw(draw reconcile.CanonicalDraw) DrawResponse {
	resp := DrawResponse{
		Game:       draw.Game,
		DrawRef:    draw.Ref.String(),
		Mains:      draw.Mains,
		MainsState: fieldState(draw.MainsState),
		Status:     string(draw.Status),
		UpdatedAt:  draw.UpdatedAt,
	}
	for _, slot := range draw.Bonus {
		resp.Bonus = append(resp.Bonus, BonusSlotResponse{Value: slot.Value, State: fieldState(slot.State)})
	}
	for _, c := range draw.Provenance {
		resp.Provenance = append(resp.Provenance, ContributionResponse{
			CandidateID: c.CandidateID.String(),
			SourceID:    c.SourceID,
			Score:       c.Score,
			Role:        string(c.Role),
			Field:       c.Field,
			RecordedAt:  c.RecordedAt,
		})
	}
	return resp
}

func fieldState(st reconcile.FieldState) FieldStateResponse {
	return FieldStateResponse{Resolved: st.Resolved, Conflicted: st.Conflicted, Score: st.Score}
}
