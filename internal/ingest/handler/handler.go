// Package handler exposes the ingest endpoints: single observations and
// spreadsheet imports. Both paths end in the reconciler; the handler only
// shapes transport concerns.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lottoledger/internal/ingest"
	"lottoledger/internal/ingest/xlsximport"
	"lottoledger/internal/reconcile"
	dErrors "lottoledger/pkg/domain-errors"
	"lottoledger/pkg/platform/httputil"
	"lottoledger/pkg/requestcontext"
)

// defaultTrust applies when the submitter states no trust weight. Middling on
// purpose: unweighted sources should neither displace nor be displaced freely.
const defaultTrust = 0.5

// Reconciler is the downstream merge operation; satisfied by
// reconcile.Service.
type Reconciler interface {
	Reconcile(ctx context.Context, cand reconcile.DrawCandidate) (reconcile.CanonicalDraw, error)
}

// Importer handles workbook uploads; satisfied by xlsximport.Importer.
type Importer interface {
	Import(ctx context.Context, r io.Reader, sourceID string, trust float64) (xlsximport.Result, error)
}

// Handler wires ingest endpoints to the normalizer and reconciler.
type Handler struct {
	normalizer *ingest.Normalizer
	reconciler Reconciler
	importer   Importer
	logger     *slog.Logger
}

// New constructs an ingest handler with its dependencies.
func New(n *ingest.Normalizer, rec Reconciler, imp Importer, logger *slog.Logger) *Handler {
	return &Handler{normalizer: n, reconciler: rec, importer: imp, logger: logger}
}

// Register mounts ingest endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/draws/observations", h.HandleObservation)
	r.Post("/draws/observations/import", h.HandleImport)
}

// HandleObservation handles POST /draws/observations requests.
func (h *Handler) HandleObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ObservationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sourceID := req.SourceID
	if sourceID == "" {
		sourceID = requestcontext.SourceID(ctx)
	}
	if sourceID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "source_id is required"))
		return
	}
	trust := req.Trust
	if trust == 0 {
		trust = defaultTrust
	}

	cand, warnings, err := h.normalizer.Normalize(req.Observation(), sourceID, trust)
	if err != nil {
		h.logger.WarnContext(ctx, "observation rejected",
			"request_id", requestID,
			"game", req.Game,
			"source_id", sourceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	draw, err := h.reconciler.Reconcile(ctx, cand)
	if err != nil {
		h.logger.ErrorContext(ctx, "reconciliation failed",
			"request_id", requestID,
			"game", req.Game,
			"draw_ref", cand.Ref.String(),
			"source_id", sourceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "observation accepted",
		"request_id", requestID,
		"game", draw.Game,
		"draw_ref", draw.Ref.String(),
		"status", draw.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromReconciled(cand, draw, warnings))
}

// HandleImport handles POST /draws/observations/import requests. The body is
// the workbook itself; source_id and trust ride as query parameters.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	sourceID := r.URL.Query().Get("source_id")
	if sourceID == "" {
		sourceID = requestcontext.SourceID(ctx)
	}
	if sourceID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "source_id is required"))
		return
	}

	trust := defaultTrust
	if raw := r.URL.Query().Get("trust"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid trust %q", raw))
			return
		}
		trust = parsed
	}

	result, err := h.importer.Import(ctx, r.Body, sourceID, trust)
	if err != nil {
		h.logger.ErrorContext(ctx, "workbook import failed",
			"request_id", requestID,
			"source_id", sourceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "workbook imported",
		"request_id", requestID,
		"source_id", sourceID,
		"reconciled", result.Reconciled,
		"failed", len(result.Failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, result)
}
