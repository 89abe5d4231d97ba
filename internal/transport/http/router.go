// Package httptransport assembles the public HTTP surface. It stays thin:
// every route delegates to a module handler so transport concerns remain
// isolated from domain logic.
package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditHandler "lottoledger/internal/audit/handler"
	ingestHandler "lottoledger/internal/ingest/handler"
	reconcileHandler "lottoledger/internal/reconcile/handler"
	verifyHandler "lottoledger/internal/verify/handler"
	"lottoledger/pkg/platform/middleware/requestid"
	"lottoledger/pkg/platform/middleware/requesttime"
	"lottoledger/pkg/platform/middleware/sourceid"
)

// Handlers collects the module handlers the router mounts. HealthChecks
// are optional dependency probes reported by /healthz, keyed by name.
type Handlers struct {
	Ingest *ingestHandler.Handler
	Draws  *reconcileHandler.Handler
	Verify *verifyHandler.Handler
	Audit  *auditHandler.Handler

	HealthChecks map[string]func(context.Context) error
}

// NewRouter wires all public endpoints plus the operational surface.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(sourceid.Middleware)

	h.Ingest.Register(r)
	h.Draws.Register(r)
	h.Verify.Register(r)
	h.Audit.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for name, check := range h.HealthChecks {
			if err := check(req.Context()); err != nil {
				http.Error(w, name+": unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
