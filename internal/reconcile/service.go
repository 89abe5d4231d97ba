package reconcile

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
	"lottoledger/internal/reconcile/metrics"
	"lottoledger/internal/rules"
	dErrors "lottoledger/pkg/domain-errors"
	"lottoledger/pkg/requestcontext"
)

// Auditor records merge decisions. Satisfied by audit.Publisher.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service performs idempotent canonical-draw upserts. Upserts for the same
// key are serialized; different keys merge in parallel.
type Service struct {
	rules   *rules.Registry
	store   Store
	auditor Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
	margin  float64
	locks   *keyMutex
	tracer  trace.Tracer
}

// NewService constructs the reconciler. margin is the tie-breaking threshold
// for comparably trusted disagreeing sources; it is a tuning parameter, so
// callers pass it from configuration.
func NewService(reg *rules.Registry, store Store, auditor Auditor, m *metrics.Metrics, logger *slog.Logger, margin float64) *Service {
	return &Service{
		rules:   reg,
		store:   store,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		margin:  margin,
		locks:   newKeyMutex(),
		tracer:  otel.Tracer("lottoledger/reconcile"),
	}
}

// Reconcile merges one candidate into its canonical draw and returns the
// post-merge snapshot. Reconciling the same candidate twice produces no
// change on the second call.
func (s *Service) Reconcile(ctx context.Context, cand DrawCandidate) (CanonicalDraw, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.Reconcile")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveReconcileLatency(time.Since(start)) }()

	rule, err := s.rules.RuleFor(cand.Game)
	if err != nil {
		return CanonicalDraw{}, err
	}
	if cand.Ref.IsZero() {
		return CanonicalDraw{}, dErrors.New(dErrors.CodeUnresolvableDrawID, "candidate carries no draw reference")
	}

	key := cand.Key()
	unlock := s.locks.lock(key)
	defer unlock()

	draw, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		draw = newCanonical(cand.Game, cand.Ref, rule)
	default:
		return CanonicalDraw{}, fmt.Errorf("load canonical draw: %w", err)
	}

	if draw.HasContribution(cand.ID) {
		// Replay of an already-merged candidate; nothing changes and no
		// further audit entry is appended.
		return draw, nil
	}

	now := requestcontext.Now(ctx)
	decisions := merge(&draw, cand, rule, s.margin, now)
	recomputeStatus(&draw, rule)

	if err := checkInvariants(draw, rule); err != nil {
		s.metrics.IncrementInvariantViolation()
		s.logger.ErrorContext(ctx, "invariant violation during reconciliation",
			"game", cand.Game,
			"draw_ref", cand.Ref.String(),
			"candidate_id", cand.ID,
			"error", err,
		)
		s.emitAudit(ctx, cand, audit.ActionInvariantFault, "halted", err.Error(), nil)
		return CanonicalDraw{}, dErrors.Newf(dErrors.CodeInvariantViolation, "canonical draw %s/%s: %v", cand.Game, cand.Ref, err)
	}

	draw.UpdatedAt = now
	if err := s.store.Put(ctx, draw); err != nil {
		return CanonicalDraw{}, fmt.Errorf("persist canonical draw: %w", err)
	}

	overall, reason, involved := summarize(decisions, draw, cand)
	s.emitAudit(ctx, cand, audit.ActionDrawReconciled, overall, reason, involved)
	s.metrics.IncrementOutcome(overall, cand.Game)
	s.metrics.IncrementStatus(string(draw.Status), cand.Game)

	s.logger.InfoContext(ctx, "candidate reconciled",
		"request_id", requestcontext.RequestID(ctx),
		"game", cand.Game,
		"draw_ref", cand.Ref.String(),
		"source_id", cand.SourceID,
		"decision", overall,
		"status", draw.Status,
	)

	return draw.clone(), nil
}

// Lookup returns the canonical draw for a key, or a not_found error. The
// returned value is a snapshot; callers never see an in-flight merge.
func (s *Service) Lookup(ctx context.Context, game string, ref DrawRef) (CanonicalDraw, error) {
	if _, err := s.rules.RuleFor(game); err != nil {
		return CanonicalDraw{}, err
	}
	return s.store.Get(ctx, Key{Game: game, Ref: ref.String()})
}

// ListByGame returns recent canonical draws for a game.
func (s *Service) ListByGame(ctx context.Context, game string, limit int) ([]CanonicalDraw, error) {
	if _, err := s.rules.RuleFor(game); err != nil {
		return nil, err
	}
	return s.store.ListByGame(ctx, game, limit)
}

func (s *Service) emitAudit(ctx context.Context, cand DrawCandidate, action, decision, reason string, involved []string) {
	if s.auditor == nil {
		return
	}
	ids := append([]string{cand.ID.String()}, involved...)
	err := s.auditor.Emit(ctx, audit.Event{
		Category:     audit.CategoryReconciliation,
		Action:       action,
		Game:         cand.Game,
		DrawRef:      cand.Ref.String(),
		Decision:     decision,
		Reason:       reason,
		CandidateIDs: ids,
		SourceID:     cand.SourceID,
		RequestID:    requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to append audit entry", "action", action, "error", err)
	}
}

// summarize collapses per-field decisions into one overall decision plus a
// rationale string, and collects the candidates on the other side of any
// disagreement.
func summarize(decisions []fieldDecision, draw CanonicalDraw, cand DrawCandidate) (string, string, []string) {
	rank := map[ContributionRole]int{
		RoleDisagreed: 5,
		RoleReplaced:  4,
		RoleAdopted:   3,
		RoleAgreed:    2,
		RoleRejected:  1,
	}

	overall := RoleRejected
	parts := make([]string, 0, len(decisions))
	for _, d := range decisions {
		if rank[d.Role] > rank[overall] {
			overall = d.Role
		}
		parts = append(parts, fmt.Sprintf("%s:%s (%s)", d.Field, d.Role, d.Detail))
	}

	var involved []string
	if overall == RoleDisagreed {
		// The retained contributors the candidate disagreed with.
		if draw.MainsState.Conflicted && draw.MainsState.Contributor != cand.ID {
			involved = append(involved, draw.MainsState.Contributor.String())
		}
		for i := range draw.Bonus {
			st := draw.Bonus[i].State
			if st.Conflicted && st.Contributor != cand.ID {
				involved = append(involved, st.Contributor.String())
			}
		}
	}

	name := "conflicted"
	switch overall {
	case RoleAdopted:
		name = "adopted"
	case RoleReplaced:
		name = "replaced"
	case RoleAgreed:
		name = "agreed"
	case RoleRejected:
		name = "rejected"
	}

	return name, strings.Join(parts, "; "), involved
}
