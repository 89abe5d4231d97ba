// Package handler exposes ticket verification. The endpoint accepts raw OCR
// output; extraction and matching happen in the domain packages.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lottoledger/internal/ticket"
	"lottoledger/internal/verify"
	"lottoledger/pkg/platform/httputil"
	"lottoledger/pkg/requestcontext"
)

// Extractor turns OCR output into a ticket candidate; satisfied by
// ticket.Extractor.
type Extractor interface {
	Extract(ocr ticket.OCROutput) (ticket.TicketCandidate, error)
}

// Service verifies a candidate against the canonical store; satisfied by
// verify.Service.
type Service interface {
	Verify(ctx context.Context, cand ticket.TicketCandidate) (verify.Verdict, error)
}

// Handler wires the verification endpoint to extraction and matching.
type Handler struct {
	extractor Extractor
	service   Service
	logger    *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(extractor Extractor, service Service, logger *slog.Logger) *Handler {
	return &Handler{extractor: extractor, service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tickets/verify", h.HandleVerify)
}

// HandleVerify handles POST /tickets/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	ocr, ok := httputil.DecodeAndPrepare[ticket.OCROutput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cand, err := h.extractor.Extract(ocr)
	if err != nil {
		h.logger.WarnContext(ctx, "ticket extraction failed",
			"request_id", requestID,
			"game_guess", ocr.GameGuess,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	verdict, err := h.service.Verify(ctx, cand)
	if err != nil {
		h.logger.WarnContext(ctx, "ticket verification failed",
			"request_id", requestID,
			"ticket_id", cand.ID,
			"game", cand.Game,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "ticket verdict returned",
		"request_id", requestID,
		"ticket_id", verdict.TicketID,
		"game", verdict.Game,
		"tier", verdict.BestTier(),
		"degraded", verdict.Degraded,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromVerdict(verdict))
}
