// Package xlsximport reads draw results from spreadsheet workbooks, one of
// the ingest sources feeding the reconciler. Each data row becomes one raw
// observation; malformed rows are reported, not fatal.
package xlsximport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"lottoledger/internal/ingest"
	"lottoledger/internal/reconcile"
	dErrors "lottoledger/pkg/domain-errors"
)

// Expected column order on the first sheet. A header row is detected by a
// non-numeric draw_ref cell and skipped.
//
//	game | draw_ref | numbers (space or comma separated) | bonus (optional)
const (
	colGame = iota
	colDrawRef
	colNumbers
	colBonus
)

// RowError records one row that could not be turned into an observation.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes one workbook import.
type Result struct {
	Reconciled int        `json:"reconciled"`
	Failed     []RowError `json:"failed,omitempty"`
}

// Reconciler is the downstream merge operation; satisfied by
// reconcile.Service.
type Reconciler interface {
	Reconcile(ctx context.Context, cand reconcile.DrawCandidate) (reconcile.CanonicalDraw, error)
}

// Importer parses workbooks and pushes the rows through normalize+reconcile.
type Importer struct {
	normalizer *ingest.Normalizer
	reconciler Reconciler
	logger     *slog.Logger

	// workers bounds concurrent reconciles; rows for the same draw still
	// serialize on the reconciler's per-key lock.
	workers int
}

func NewImporter(n *ingest.Normalizer, r Reconciler, logger *slog.Logger) *Importer {
	return &Importer{normalizer: n, reconciler: r, logger: logger, workers: 4}
}

// Import reads the workbook's first sheet and reconciles every parseable
// row. The sourceID identifies the file (e.g. "xlsx:results-2024-03.xlsx");
// trust applies to all rows.
func (im *Importer) Import(ctx context.Context, r io.Reader, sourceID string, trust float64) (Result, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, dErrors.Newf(dErrors.CodeBadRequest, "cannot open workbook: %v", err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	if sheet == "" {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "workbook has no sheets")
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return Result{}, dErrors.Newf(dErrors.CodeBadRequest, "cannot read sheet %q: %v", sheet, err)
	}

	capturedAt := time.Now()

	type rowOutcome struct {
		row int
		err error
	}
	outcomes := make([]rowOutcome, 0, len(rows))
	outcomeCh := make(chan rowOutcome, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	for i, cells := range rows {
		rowNum := i + 1
		obs, skip, parseErr := rowToObservation(cells, capturedAt)
		if skip {
			continue
		}
		if parseErr != nil {
			outcomeCh <- rowOutcome{row: rowNum, err: parseErr}
			continue
		}
		g.Go(func() error {
			cand, _, err := im.normalizer.Normalize(obs, sourceID, trust)
			if err == nil {
				_, err = im.reconciler.Reconcile(gctx, cand)
			}
			outcomeCh <- rowOutcome{row: rowNum, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	close(outcomeCh)
	for o := range outcomeCh {
		outcomes = append(outcomes, o)
	}

	result := Result{}
	for _, o := range outcomes {
		if o.err == nil {
			result.Reconciled++
			continue
		}
		result.Failed = append(result.Failed, RowError{Row: o.row, Reason: o.err.Error()})
	}

	if im.logger != nil {
		im.logger.Info("workbook import finished",
			"source_id", sourceID,
			"reconciled", result.Reconciled,
			"failed", len(result.Failed),
		)
	}
	return result, nil
}

// rowToObservation maps one sheet row to a raw observation. skip is true for
// blank rows and the header row.
func rowToObservation(cells []string, capturedAt time.Time) (ingest.RawObservation, bool, error) {
	if len(cells) == 0 || strings.TrimSpace(strings.Join(cells, "")) == "" {
		return ingest.RawObservation{}, true, nil
	}
	if len(cells) <= colNumbers {
		return ingest.RawObservation{}, false, fmt.Errorf("row has %d columns, need at least %d", len(cells), colNumbers+1)
	}
	if strings.EqualFold(strings.TrimSpace(cells[colGame]), "game") {
		return ingest.RawObservation{}, true, nil
	}

	obs := ingest.RawObservation{
		Game:       strings.TrimSpace(cells[colGame]),
		DrawRef:    strings.TrimSpace(cells[colDrawRef]),
		Numbers:    splitNumbers(cells[colNumbers]),
		CapturedAt: capturedAt,
		Confidence: 1.0, // spreadsheet cells are deliberate entries, not OCR guesses
	}
	if len(cells) > colBonus && strings.TrimSpace(cells[colBonus]) != "" {
		obs.Bonus = splitNumbers(cells[colBonus])
	}
	return obs, false, nil
}

func splitNumbers(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
