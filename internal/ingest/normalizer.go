package ingest

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"lottoledger/internal/reconcile"
	"lottoledger/internal/rules"
)

// warningPenalty is the per-warning multiplier applied to the observation's
// raw confidence. Each dropped or malformed value makes the candidate less
// trustworthy in the merge without discarding it.
const warningPenalty = 0.85

// confidenceFloor keeps heavily degraded candidates mergeable; the reconciler
// decides their fate against better sources.
const confidenceFloor = 0.1

// Warning records one normalization decision for the candidate's audit trail.
type Warning struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %q: %s", w.Field, w.Value, w.Reason)
}

// Normalizer validates raw observations against the game rule registry and
// produces immutable draw candidates. Stateless and safe for concurrent use.
type Normalizer struct {
	rules  *rules.Registry
	logger *slog.Logger
}

func NewNormalizer(reg *rules.Registry, logger *slog.Logger) *Normalizer {
	return &Normalizer{rules: reg, logger: logger}
}

// Normalize converts one observation into a draw candidate. Out-of-range and
// duplicate numbers are dropped with warnings and a confidence discount; the
// candidate is still produced. Only an unparseable draw identifier fails.
func (n *Normalizer) Normalize(obs RawObservation, sourceID string, trust float64) (reconcile.DrawCandidate, []Warning, error) {
	rule, err := n.rules.RuleFor(obs.Game)
	if err != nil {
		return reconcile.DrawCandidate{}, nil, err
	}

	ref, err := ParseDrawRef(obs.DrawRef)
	if err != nil {
		return reconcile.DrawCandidate{}, nil, err
	}

	var warnings []Warning

	mains, mainWarnings := parseNumbers(obs.Numbers, "mains", rule.MainCount, rule.InMainRange)
	warnings = append(warnings, mainWarnings...)
	if len(obs.Numbers) > 0 && len(mains) < rule.MainCount {
		warnings = append(warnings, Warning{
			Field:  "mains",
			Value:  strconv.Itoa(len(mains)),
			Reason: fmt.Sprintf("partial observation: %d of %d mains recovered", len(mains), rule.MainCount),
		})
	}

	bonus := []int(nil)
	bonusKnown := obs.Bonus != nil
	if bonusKnown && rule.BonusCount > 0 {
		var bonusWarnings []Warning
		bonus, bonusWarnings = parseNumbers(obs.Bonus, "bonus", rule.BonusCount, rule.InBonusRange)
		warnings = append(warnings, bonusWarnings...)
	} else if bonusKnown && rule.BonusCount == 0 && len(obs.Bonus) > 0 {
		warnings = append(warnings, Warning{
			Field:  "bonus",
			Value:  strings.Join(obs.Bonus, ","),
			Reason: "game has no bonus slots; values ignored",
		})
		bonusKnown = false
	}

	confidence := obs.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 1.0
	}
	for range warnings {
		confidence *= warningPenalty
	}
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	cand := reconcile.DrawCandidate{
		ID:         uuid.New(),
		Game:       obs.Game,
		Ref:        ref,
		Mains:      mains,
		Bonus:      bonus,
		BonusKnown: bonusKnown,
		SourceID:   sourceID,
		Trust:      clamp01(trust),
		Confidence: confidence,
		CapturedAt: obs.CapturedAt,
		Warnings:   warningStrings(warnings),
	}

	if len(warnings) > 0 && n.logger != nil {
		n.logger.Warn("observation normalized with warnings",
			"game", obs.Game,
			"draw_ref", ref.String(),
			"source_id", sourceID,
			"warnings", len(warnings),
		)
	}

	return cand, warnings, nil
}

// parseNumbers converts free-form number strings, dropping malformed,
// out-of-range, and duplicate values with warnings. Results are sorted so
// set comparison in the reconciler is positional.
func parseNumbers(raw []string, field string, maxCount int, inRange func(int) bool) ([]int, []Warning) {
	var (
		out      []int
		warnings []Warning
		seen     = make(map[int]struct{})
	)
	for _, token := range raw {
		text := strings.TrimSpace(token)
		if text == "" {
			continue
		}
		num, err := strconv.Atoi(text)
		if err != nil {
			warnings = append(warnings, Warning{Field: field, Value: token, Reason: "not a number"})
			continue
		}
		if !inRange(num) {
			warnings = append(warnings, Warning{Field: field, Value: token, Reason: "outside game range"})
			continue
		}
		if _, dup := seen[num]; dup {
			warnings = append(warnings, Warning{Field: field, Value: token, Reason: "duplicate"})
			continue
		}
		if len(out) == maxCount {
			warnings = append(warnings, Warning{Field: field, Value: token, Reason: "exceeds game's number count"})
			continue
		}
		seen[num] = struct{}{}
		out = append(out, num)
	}
	sort.Ints(out)
	return out, warnings
}

func warningStrings(warnings []Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
