package handler

import (
	"time"

	"lottoledger/internal/ingest"
)

// ObservationRequest is the JSON body for POST /draws/observations.
type ObservationRequest struct {
	Game    string   `json:"game"`
	DrawRef string   `json:"draw_ref"`
	Numbers []string `json:"numbers"`

	// Bonus null/absent means the source did not report the bonus field.
	Bonus []string `json:"bonus"`

	CapturedAt time.Time `json:"captured_at"`
	Confidence float64   `json:"confidence"`

	// SourceID identifies the submitter; falls back to the X-Source-ID
	// header when empty. Trust is the operator-assigned weight in [0,1].
	SourceID string  `json:"source_id"`
	Trust    float64 `json:"trust"`
}

// Observation maps the request to the ingest shape.
func (r ObservationRequest) Observation() ingest.RawObservation {
	return ingest.RawObservation{
		Game:       r.Game,
		DrawRef:    r.DrawRef,
		Numbers:    r.Numbers,
		Bonus:      r.Bonus,
		CapturedAt: r.CapturedAt,
		Confidence: r.Confidence,
	}
}
