// Package handler exposes the audit log for replay. Read-only: the log is
// append-only and entries never change once written.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lottoledger/internal/audit"
	dErrors "lottoledger/pkg/domain-errors"
	"lottoledger/pkg/platform/httputil"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Reader lists recorded events; satisfied by audit.Publisher.
type Reader interface {
	ListFrom(ctx context.Context, offset int64, limit int) ([]audit.Event, error)
}

// Handler wires the audit replay endpoint.
type Handler struct {
	reader Reader
	logger *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleList)
}

// HandleList handles GET /audit/events?offset=&limit= requests. Offsets are
// dense from 1, so a consumer can page the full log by resuming at the last
// offset it saw plus one.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset := int64(1)
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid offset %q", raw))
			return
		}
		offset = parsed
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	events, err := h.reader.ListFrom(ctx, offset, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit list failed", "offset", offset, "error", err)
		httputil.WriteError(w, err)
		return
	}

	next := offset
	if len(events) > 0 {
		next = events[len(events)-1].Offset + 1
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events":      events,
		"next_offset": next,
	})
}
