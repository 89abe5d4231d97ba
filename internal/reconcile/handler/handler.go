// Package handler exposes read access to canonical draws.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lottoledger/internal/ingest"
	"lottoledger/internal/reconcile"
	"lottoledger/pkg/platform/httputil"
	"lottoledger/pkg/requestcontext"
)

const defaultListLimit = 20

// Service defines the read operations the handler needs; satisfied by
// reconcile.Service.
type Service interface {
	Lookup(ctx context.Context, game string, ref reconcile.DrawRef) (reconcile.CanonicalDraw, error)
	ListByGame(ctx context.Context, game string, limit int) ([]reconcile.CanonicalDraw, error)
}

// Handler wires draw read endpoints to the reconciler.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a draw handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts draw endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/draws/{game}", h.HandleList)
	r.Get("/draws/{game}/{drawRef}", h.HandleLookup)
}

// HandleLookup handles GET /draws/{game}/{drawRef} requests. drawRef accepts
// the same forms observations do: a sequence number or a date.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	game := chi.URLParam(r, "game")

	ref, err := ingest.ParseDrawRef(chi.URLParam(r, "drawRef"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	draw, err := h.service.Lookup(ctx, game, ref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDraw(draw))
}

// HandleList handles GET /draws/{game}?limit= requests, most recent first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	game := chi.URLParam(r, "game")

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	draws, err := h.service.ListByGame(ctx, game, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "draw list failed",
			"request_id", requestcontext.RequestID(ctx),
			"game", game,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]DrawResponse, 0, len(draws))
	for _, d := range draws {
		out = append(out, FromDraw(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"draws": out})
}
