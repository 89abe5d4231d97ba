package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"lottoledger/internal/audit"
	"lottoledger/internal/ingest"
	"lottoledger/internal/reconcile"
	"lottoledger/internal/rules"
	"lottoledger/internal/ticket"
	verifymetrics "lottoledger/internal/verify/metrics"
	dErrors "lottoledger/pkg/domain-errors"
	"lottoledger/pkg/requestcontext"
)

// DrawLookup resolves a (game, draw ref) key to a canonical draw snapshot.
// Satisfied by any reconcile.Store; verification never blocks on an
// in-progress merge because stores return atomic snapshots.
type DrawLookup interface {
	Get(ctx context.Context, key reconcile.Key) (reconcile.CanonicalDraw, error)
}

// Auditor records verification decisions. Satisfied by audit.Publisher.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config carries the confidence policy thresholds.
type Config struct {
	// CertainThreshold is the confidence at or above which a verdict is
	// labeled certain.
	CertainThreshold float64

	// DegradedCap bounds the confidence of any verdict built on a partial
	// or conflicted draw, keeping it below the certain threshold.
	DegradedCap float64
}

// Service matches ticket candidates against the canonical draw store.
// Read-only and safe for unlimited concurrent callers.
type Service struct {
	rules   *rules.Registry
	draws   DrawLookup
	auditor Auditor
	metrics *verifymetrics.Metrics
	logger  *slog.Logger
	cfg     Config
	tracer  trace.Tracer
}

func NewService(reg *rules.Registry, draws DrawLookup, auditor Auditor, m *verifymetrics.Metrics, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		rules:   reg,
		draws:   draws,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		tracer:  otel.Tracer("lottoledger/verify"),
	}
}

// Verify matches one ticket candidate against the canonical draw it names
// and produces a deterministic, auditable verdict.
func (s *Service) Verify(ctx context.Context, cand ticket.TicketCandidate) (Verdict, error) {
	ctx, span := s.tracer.Start(ctx, "verify.Verify")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveVerifyLatency(time.Since(start)) }()

	rule, err := s.rules.RuleFor(cand.Game)
	if err != nil {
		return Verdict{}, err
	}

	ref, err := ingest.ParseDrawRef(cand.DrawRefText)
	if err != nil {
		return Verdict{}, err
	}

	draw, err := s.draws.Get(ctx, reconcile.Key{Game: cand.Game, Ref: ref.String()})
	if errors.Is(err, reconcile.ErrNotFound) {
		// Reported, not retried: retrying is meaningless until new draw data
		// arrives. A missing draw must never read as a false "no win".
		return Verdict{}, dErrors.Newf(dErrors.CodeDrawNotFound,
			"no canonical draw for %s %s", cand.Game, ref.String())
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("lookup canonical draw: %w", err)
	}

	verdict := Verdict{
		TicketID:   cand.ID.String(),
		Game:       cand.Game,
		Ref:        draw.Ref,
		DrawStatus: string(draw.Status),
		Degraded:   draw.Status != reconcile.StatusComplete,
		VerifiedAt: requestcontext.Now(ctx),
	}

	for _, panel := range cand.Panels {
		verdict.Panels = append(verdict.Panels, matchPanel(rule, panel.Numbers, panel.Bonus, draw))
	}

	verdict.Confidence = cand.Confidence
	if verdict.Degraded {
		s.metrics.IncrementDegraded()
		if verdict.Confidence > s.cfg.DegradedCap {
			verdict.Confidence = s.cfg.DegradedCap
		}
	}
	if verdict.Confidence >= s.cfg.CertainThreshold {
		verdict.Certainty = CertaintyCertain
	} else {
		verdict.Certainty = CertaintyProvisional
	}

	best := verdict.BestTier()
	s.metrics.IncrementVerdict(best, cand.Game)
	s.emitAudit(ctx, cand, draw, verdict, best)

	s.logger.InfoContext(ctx, "ticket verified",
		"request_id", requestcontext.RequestID(ctx),
		"ticket_id", verdict.TicketID,
		"game", cand.Game,
		"draw_ref", ref.String(),
		"tier", best,
		"degraded", verdict.Degraded,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return verdict, nil
}

func (s *Service) emitAudit(ctx context.Context, cand ticket.TicketCandidate, draw reconcile.CanonicalDraw, verdict Verdict, best string) {
	if s.auditor == nil {
		return
	}

	parts := make([]string, 0, len(verdict.Panels))
	for i, p := range verdict.Panels {
		parts = append(parts, fmt.Sprintf("panel[%d]: %d mains, %d bonus -> %s", i, p.MatchedCount, p.BonusMatched, p.Tier))
	}
	if verdict.Degraded {
		parts = append(parts, "draw status "+string(draw.Status)+": confidence capped")
	}

	err := s.auditor.Emit(ctx, audit.Event{
		Category:     audit.CategoryVerification,
		Action:       audit.ActionTicketVerified,
		Game:         cand.Game,
		DrawRef:      draw.Ref.String(),
		Decision:     best,
		Reason:       strings.Join(parts, "; "),
		CandidateIDs: []string{cand.ID.String()},
		RequestID:    requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to append audit entry", "action", audit.ActionTicketVerified, "error", err)
	}
}
