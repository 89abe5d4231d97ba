package handler

import (
	"lottoledger/internal/ingest"
	"lottoledger/internal/reconcile"
)

// ObservationResponse summarizes what one accepted observation did to the
// canonical record. The full record is available via the draw endpoints.
type ObservationResponse struct {
	CandidateID string   `json:"candidate_id"`
	Game        string   `json:"game"`
	DrawRef     string   `json:"draw_ref"`
	DrawStatus  string   `json:"draw_status"`
	Warnings    []string `json:"warnings,omitempty"`
}

// FromReconciled builds the response from the candidate and post-merge draw.
func FromReconciled(cand reconcile.DrawCandidate, draw reconcile.CanonicalDraw, warnings []ingest.Warning) ObservationResponse {
	resp := ObservationResponse{
		CandidateID: cand.ID.String(),
		Game:        draw.Game,
		DrawRef:     draw.Ref.String(),
		DrawStatus:  string(draw.Status),
	}
	for _, w := range warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}
