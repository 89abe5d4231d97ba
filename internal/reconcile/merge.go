package reconcile

import (
	"fmt"
	"time"

	"lottoledger/internal/rules"
)

// fieldDecision is the outcome of merging one candidate field into the
// canonical record.
type fieldDecision struct {
	Field  string
	Role   ContributionRole
	Detail string
}

// newCanonical builds an empty canonical draw shaped for the game's rule.
func newCanonical(game string, ref DrawRef, rule rules.GameRule) CanonicalDraw {
	return CanonicalDraw{
		Game:   game,
		Ref:    ref,
		Bonus:  make([]BonusSlot, rule.BonusCount),
		Status: StatusPartial,
	}
}

// merge folds one candidate into the draw, field by field. Each field is
// merged independently: the main-number set as a whole, then each bonus slot.
//
// The merge is commutative and idempotent for the adopt-when-unresolved and
// replace-when-clearly-better cases. Only the comparable-score disagreement
// is order-sensitive, deliberately: the first disagreement between
// comparably trusted sources surfaces a conflict instead of being masked by
// arrival order.
func merge(draw *CanonicalDraw, cand DrawCandidate, rule rules.GameRule, margin float64, now time.Time) []fieldDecision {
	var decisions []fieldDecision

	if len(cand.Mains) > 0 {
		role, detail := mergeMains(draw, cand, margin)
		decisions = append(decisions, fieldDecision{Field: "mains", Role: role, Detail: detail})
	}

	if cand.BonusKnown {
		for i := 0; i < rule.BonusCount && i < len(cand.Bonus); i++ {
			role, detail := mergeValue(&draw.Bonus[i].Value, &draw.Bonus[i].State, cand, cand.Bonus[i], margin)
			decisions = append(decisions, fieldDecision{
				Field:  fmt.Sprintf("bonus[%d]", i),
				Role:   role,
				Detail: detail,
			})
		}
	}

	for _, d := range decisions {
		draw.Provenance = append(draw.Provenance, Contribution{
			CandidateID: cand.ID,
			SourceID:    cand.SourceID,
			Score:       cand.Score(),
			Role:        d.Role,
			Field:       d.Field,
			RecordedAt:  now,
		})
	}

	if len(decisions) == 0 {
		// Nothing usable, but record the arrival so replays stay idempotent.
		draw.Provenance = append(draw.Provenance, Contribution{
			CandidateID: cand.ID,
			SourceID:    cand.SourceID,
			Score:       cand.Score(),
			Role:        RoleRejected,
			Field:       "none",
			RecordedAt:  now,
		})
		decisions = append(decisions, fieldDecision{Field: "none", Role: RoleRejected, Detail: "no usable fields"})
	}

	return decisions
}

// mergeMains applies the field merge to the main-number set.
func mergeMains(draw *CanonicalDraw, cand DrawCandidate, margin float64) (ContributionRole, string) {
	st := &draw.MainsState
	candScore := cand.Score()

	if !st.Resolved {
		draw.Mains = append([]int(nil), cand.Mains...)
		st.Resolved = true
		st.Score = candScore
		st.Contributor = cand.ID
		return RoleAdopted, fmt.Sprintf("adopted %d mains at score %.3f", len(cand.Mains), candScore)
	}

	if equalIntSlices(draw.Mains, cand.Mains) {
		if st.Conflicted && candScore > st.Score+margin {
			st.Conflicted = false
		}
		if candScore > st.Score {
			st.Score = candScore
			st.Contributor = cand.ID
		}
		return RoleAgreed, "matches current mains"
	}

	switch {
	case candScore > st.Score+margin:
		// Clearly better: replace, demoting the previous contributor to
		// provenance history. A clearly better source also resolves an
		// existing conflict.
		prev := st.Contributor
		prevScore := st.Score
		draw.Mains = append([]int(nil), cand.Mains...)
		st.Score = candScore
		st.Contributor = cand.ID
		st.Conflicted = false
		return RoleReplaced, fmt.Sprintf("displaced %s (score %.3f vs %.3f)", prev, prevScore, candScore)
	case candScore >= st.Score-margin:
		// Genuine disagreement between comparably trusted sources. Keep the
		// current value, retain both candidates, surface the conflict.
		st.Conflicted = true
		return RoleDisagreed, fmt.Sprintf("disagrees with %s within margin", st.Contributor)
	default:
		return RoleRejected, fmt.Sprintf("score %.3f below current %.3f", candScore, st.Score)
	}
}

// mergeValue applies the same three-way policy to a single bonus value.
func mergeValue(value *int, st *FieldState, cand DrawCandidate, candValue int, margin float64) (ContributionRole, string) {
	candScore := cand.Score()

	if !st.Resolved {
		*value = candValue
		st.Resolved = true
		st.Score = candScore
		st.Contributor = cand.ID
		return RoleAdopted, fmt.Sprintf("adopted bonus %d at score %.3f", candValue, candScore)
	}

	if *value == candValue {
		if st.Conflicted && candScore > st.Score+margin {
			st.Conflicted = false
		}
		if candScore > st.Score {
			st.Score = candScore
			st.Contributor = cand.ID
		}
		return RoleAgreed, "matches current bonus"
	}

	switch {
	case candScore > st.Score+margin:
		prev := st.Contributor
		*value = candValue
		st.Score = candScore
		st.Contributor = cand.ID
		st.Conflicted = false
		return RoleReplaced, fmt.Sprintf("displaced %s with bonus %d", prev, candValue)
	case candScore >= st.Score-margin:
		st.Conflicted = true
		return RoleDisagreed, fmt.Sprintf("bonus %d disagrees with %d within margin", candValue, *value)
	default:
		return RoleRejected, fmt.Sprintf("score %.3f below current %.3f", candScore, st.Score)
	}
}

// recomputeStatus derives the draw's resolution status from its fields.
func recomputeStatus(draw *CanonicalDraw, rule rules.GameRule) {
	conflicted := draw.MainsState.Conflicted
	complete := draw.MainsState.Resolved && len(draw.Mains) == rule.MainCount

	for i := range draw.Bonus {
		if draw.Bonus[i].State.Conflicted {
			conflicted = true
		}
		if !draw.Bonus[i].State.Resolved {
			complete = false
		}
	}

	switch {
	case conflicted:
		draw.Status = StatusConflicted
	case complete:
		draw.Status = StatusComplete
	default:
		draw.Status = StatusPartial
	}
}

// checkInvariants verifies the canonical record before it is persisted. A
// failure here means normalization let a malformed value through; processing
// of the record halts rather than coercing the value.
func checkInvariants(draw CanonicalDraw, rule rules.GameRule) error {
	seen := make(map[int]struct{}, len(draw.Mains))
	for _, n := range draw.Mains {
		if !rule.InMainRange(n) {
			return fmt.Errorf("main number %d outside range [%d,%d]", n, rule.MainMin, rule.MainMax)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("duplicate main number %d", n)
		}
		seen[n] = struct{}{}
	}
	if len(draw.Mains) > rule.MainCount {
		return fmt.Errorf("%d mains exceeds game's %d", len(draw.Mains), rule.MainCount)
	}
	if draw.Status == StatusComplete && len(draw.Mains) != rule.MainCount {
		return fmt.Errorf("complete draw holds %d of %d mains", len(draw.Mains), rule.MainCount)
	}
	for i := range draw.Bonus {
		if draw.Bonus[i].State.Resolved && !rule.InBonusRange(draw.Bonus[i].Value) {
			return fmt.Errorf("bonus %d outside range [%d,%d]", draw.Bonus[i].Value, rule.BonusMin, rule.BonusMax)
		}
	}
	return nil
}

func equalIntSlices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
