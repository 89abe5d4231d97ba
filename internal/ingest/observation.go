// Package ingest converts raw observations from scrapers, spreadsheet
// imports, and manual corrections into normalized draw candidates. A
// degraded observation is more useful than none: malformed numbers are
// dropped with warnings rather than rejecting the whole observation, and
// only an unparseable draw identifier discards it outright.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"lottoledger/internal/reconcile"
	dErrors "lottoledger/pkg/domain-errors"
)

// RawObservation is the shape ingest adapters hand to the normalizer: a game
// type tag, free-form number strings, and an optional date/sequence string.
type RawObservation struct {
	Game    string   `json:"game"`
	DrawRef string   `json:"draw_ref"`
	Numbers []string `json:"numbers"`

	// Bonus nil means the field was absent from the observation; it is
	// represented as unknown downstream, never inferred.
	Bonus []string `json:"bonus"`

	CapturedAt time.Time `json:"captured_at"`

	// Confidence is the capture's own quality signal in [0,1]; manual
	// entries use 1.0. Zero means unstated and defaults to 1.0.
	Confidence float64 `json:"confidence"`
}

// dateLayouts are the draw-date formats seen across sources, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDrawRef resolves a free-form draw identifier into a DrawRef. Accepted
// forms: a bare or #-prefixed sequence number, or a date in a known layout.
func ParseDrawRef(raw string) (reconcile.DrawRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return reconcile.DrawRef{}, dErrors.New(dErrors.CodeUnresolvableDrawID, "empty draw identifier")
	}

	seqText := strings.TrimPrefix(trimmed, "#")
	if seq, err := strconv.ParseInt(seqText, 10, 64); err == nil && seq > 0 {
		return reconcile.DrawRef{Seq: seq}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return reconcile.DrawRef{Date: t.Format("2006-01-02")}, nil
		}
	}

	return reconcile.DrawRef{}, dErrors.Newf(dErrors.CodeUnresolvableDrawID, "cannot parse draw identifier %q", raw)
}
