package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lottoledger/internal/audit"
	auditHandler "lottoledger/internal/audit/handler"
	"lottoledger/internal/ingest"
	ingestHandler "lottoledger/internal/ingest/handler"
	"lottoledger/internal/ingest/xlsximport"
	"lottoledger/internal/reconcile"
	reconcileHandler "lottoledger/internal/reconcile/handler"
	"lottoledger/internal/rules"
	"lottoledger/internal/ticket"
	"lottoledger/internal/verify"
	verifyHandler "lottoledger/internal/verify/handler"
	"lottoledger/pkg/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := rules.MustNewRegistry(rules.Defaults()...)

	auditor := audit.NewPublisher(audit.NewInMemoryStore(), logger)
	store := reconcile.NewInMemoryStore()
	reconciler := reconcile.NewService(reg, store, auditor, nil, logger, 0.05)
	normalizer := ingest.NewNormalizer(reg, logger)
	importer := xlsximport.NewImporter(normalizer, reconciler, logger)
	verifier := verify.NewService(reg, store, auditor, nil, logger,
		verify.Config{CertainThreshold: 0.99, DegradedCap: 0.75})

	return NewRouter(Handlers{
		Ingest: ingestHandler.New(normalizer, reconciler, importer, logger),
		Draws:  reconcileHandler.New(reconciler, logger),
		Verify: verifyHandler.New(ticket.NewExtractor(reg), verifier, logger),
		Audit:  auditHandler.New(auditor, logger),
	})
}

func postObservation(t *testing.T, router http.Handler, body map[string]any) {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/draws/observations", body))
	testutil.AssertStatusOK(t, rr)
}

func TestRouter_ObservationThenLookup(t *testing.T) {
	router := newTestRouter(t)

	postObservation(t, router, map[string]any{
		"game":      "lotto649",
		"draw_ref":  "2041",
		"numbers":   []string{"3", "11", "19", "27", "34", "45"},
		"source_id": "official-site",
		"trust":     0.95,
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/draws/lotto649/2041"))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[reconcileHandler.DrawResponse](t, rr)
	assert.Equal(t, []int{3, 11, 19, 27, 34, 45}, resp.Mains)
	assert.Equal(t, "complete", resp.Status)
	require.Len(t, resp.Provenance, 1)
	assert.Equal(t, "official-site", resp.Provenance[0].SourceID)
}

func TestRouter_ObservationRequiresSource(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/draws/observations", map[string]any{
		"game":     "lotto649",
		"draw_ref": "2041",
		"numbers":  []string{"3", "11", "19", "27", "34", "45"},
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestRouter_SourceHeaderFallback(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/draws/observations", map[string]any{
		"game":     "lotto649",
		"draw_ref": "2041",
		"numbers":  []string{"3", "11", "19", "27", "34", "45"},
		"trust":    0.9,
	})
	req.Header.Set("X-Source-ID", "scraper:results-site")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)

	lookup := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/draws/lotto649/2041"))
	resp := testutil.UnmarshalResponse[reconcileHandler.DrawResponse](t, lookup)
	require.NotEmpty(t, resp.Provenance)
	assert.Equal(t, "scraper:results-site", resp.Provenance[0].SourceID)
}

func TestRouter_UnknownGameAndBadRef(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/draws/observations", map[string]any{
		"game":      "keno",
		"draw_ref":  "1",
		"numbers":   []string{"1"},
		"source_id": "src",
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unknown_game_type")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/draws/lotto649/not-a-ref"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unresolvable_draw_identifier")
}

func TestRouter_VerifyTicket(t *testing.T) {
	router := newTestRouter(t)

	postObservation(t, router, map[string]any{
		"game":      "lotto649",
		"draw_ref":  "2041",
		"numbers":   []string{"3", "11", "19", "27", "34", "45"},
		"source_id": "official-site",
		"trust":     0.95,
	})

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/tickets/verify", map[string]any{
		"game_guess":    "lotto649",
		"draw_ref_text": "2041",
		"panels": []map[string]any{{
			"numbers": []map[string]string{
				{"text": "3"}, {"text": "11"}, {"text": "19"},
				{"text": "27"}, {"text": "34"}, {"text": "45"},
			},
		}},
	}))
	testutil.AssertStatusOK(t, rr)
	verdict := testutil.UnmarshalResponse[verifyHandler.VerdictResponse](t, rr)
	assert.Equal(t, "Jackpot", verdict.BestTier)
	assert.Equal(t, "certain", verdict.Certainty)
	assert.False(t, verdict.Degraded)
}

func TestRouter_VerifyMissingDraw(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/tickets/verify", map[string]any{
		"game_guess":    "lotto649",
		"draw_ref_text": "9999",
		"panels": []map[string]any{{
			"numbers": []map[string]string{
				{"text": "3"}, {"text": "11"}, {"text": "19"},
				{"text": "27"}, {"text": "34"}, {"text": "45"},
			},
		}},
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "draw_not_found")
}

func TestRouter_VerifyUnreadableTicket(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/tickets/verify", map[string]any{
		"game_guess":    "lotto649",
		"draw_ref_text": "2041",
		"panels": []map[string]any{{
			"numbers": []map[string]string{{"text": "@@"}, {"text": "##"}},
		}},
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "unreadable_ticket")
}

func TestRouter_AuditReplay(t *testing.T) {
	router := newTestRouter(t)

	postObservation(t, router, map[string]any{
		"game":      "lotto649",
		"draw_ref":  "2041",
		"numbers":   []string{"3", "11", "19", "27", "34", "45"},
		"source_id": "official-site",
		"trust":     0.95,
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audit/events?offset=1&limit=10"))
	testutil.AssertStatusOK(t, rr)

	type listResponse struct {
		Events     []audit.Event `json:"events"`
		NextOffset int64         `json:"next_offset"`
	}
	resp := testutil.UnmarshalResponse[listResponse](t, rr)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, audit.ActionDrawReconciled, resp.Events[0].Action)
	assert.Equal(t, int64(2), resp.NextOffset)

	bad := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/audit/events?offset=zero"))
	testutil.AssertStatusAndError(t, bad, http.StatusBadRequest, "bad_request")
}

func TestRouter_ListDraws(t *testing.T) {
	router := newTestRouter(t)

	for _, seq := range []string{"2041", "2042"} {
		postObservation(t, router, map[string]any{
			"game":      "lotto649",
			"draw_ref":  seq,
			"numbers":   []string{"3", "11", "19", "27", "34", "45"},
			"source_id": "official-site",
			"trust":     0.95,
		})
	}

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/draws/lotto649?limit=1"))
	testutil.AssertStatusOK(t, rr)
	type listResponse struct {
		Draws []reconcileHandler.DrawResponse `json:"draws"`
	}
	resp := testutil.UnmarshalResponse[listResponse](t, rr)
	assert.Len(t, resp.Draws, 1)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(t, rr)
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewRequest(t, http.MethodGet, "/healthz")
	req.Header.Set("X-Request-ID", "req-123")
	rr := testutil.DoRequest(router, req)
	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))

	anon := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	assert.NotEmpty(t, anon.Header().Get("X-Request-ID"))
}
