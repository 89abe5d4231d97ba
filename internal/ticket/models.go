// Package ticket reshapes raw OCR output into structured ticket candidates.
// It performs no matching: ambiguity is collapsed to the most probable value
// here, and the confidence discount rides along for the verifier to weigh.
package ticket

import (
	"github.com/google/uuid"
)

// OCRRead is one digit group as the OCR capability reported it: the raw text
// and a confidence per character.
type OCRRead struct {
	Text     string    `json:"text"`
	CharConf []float64 `json:"char_conf,omitempty"`
}

// OCRPanel is the OCR view of one line of chosen numbers on the ticket.
type OCRPanel struct {
	Numbers []OCRRead `json:"numbers"`
	Bonus   []OCRRead `json:"bonus,omitempty"`
}

// OCROutput is the shape the OCR adapter hands over: a game-type guess, the
// draw identifier as read off the ticket (possibly garbled or absent), and
// one or more panels of digit groups.
type OCROutput struct {
	GameGuess   string     `json:"game_guess"`
	DrawRefText string     `json:"draw_ref_text,omitempty"`
	Panels      []OCRPanel `json:"panels"`
}

// Panel is one extracted set of chosen numbers.
type Panel struct {
	Numbers []int `json:"numbers"`
	Bonus   []int `json:"bonus,omitempty"`

	// Confidence is the panel-level read quality in [0,1], the product of
	// its reads' confidences after ambiguity discounts.
	Confidence float64 `json:"confidence"`
}

// TicketCandidate is one OCR-derived reading of a physical ticket. Immutable;
// created once per scan.
type TicketCandidate struct {
	ID          uuid.UUID `json:"id"`
	Game        string    `json:"game"`
	DrawRefText string    `json:"draw_ref_text,omitempty"`
	Panels      []Panel   `json:"panels"`

	// Confidence is the lowest panel confidence; a verdict can never be more
	// certain than the worst read it depends on.
	Confidence float64 `json:"confidence"`
}
