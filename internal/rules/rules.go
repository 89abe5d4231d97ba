// Package rules holds the static per-game definitions: number ranges, counts,
// bonus-ball semantics, and the ordered prize-tier table. Adding a game is a
// registry entry, never a new code path; the tier table is the single source
// of truth for prize logic.
package rules

import (
	"fmt"

	dErrors "lottoledger/pkg/domain-errors"
)

// Tier is one named prize bracket. A panel satisfies a tier when its matched
// main count equals MainMatches and its matched bonus count is at least
// BonusMatches.
type Tier struct {
	MainMatches  int    `json:"main_matches"`
	BonusMatches int    `json:"bonus_matches"`
	Label        string `json:"label"`
}

// GameRule describes one lottery game. Immutable after registry construction.
type GameRule struct {
	Game      string `json:"game"`
	MainCount int    `json:"main_count"`
	MainMin   int    `json:"main_min"`
	MainMax   int    `json:"main_max"`

	// BonusCount is the number of bonus slots drawn; zero for games without
	// bonus balls.
	BonusCount int `json:"bonus_count"`
	BonusMin   int `json:"bonus_min"`
	BonusMax   int `json:"bonus_max"`

	// Tiers is ordered most-demanding first. ResolveTier returns the first
	// satisfied entry.
	Tiers []Tier `json:"tiers"`
}

// InMainRange reports whether n is a legal main number for this game.
func (r GameRule) InMainRange(n int) bool {
	return n >= r.MainMin && n <= r.MainMax
}

// InBonusRange reports whether n is a legal bonus number for this game.
func (r GameRule) InBonusRange(n int) bool {
	return r.BonusCount > 0 && n >= r.BonusMin && n <= r.BonusMax
}

// ResolveTier scans the ordered tier table and returns the first tier whose
// requirements are met by the given match counts. The second return is false
// when no tier matches ("no win").
func (r GameRule) ResolveTier(mainMatches, bonusMatches int) (Tier, bool) {
	for _, t := range r.Tiers {
		if mainMatches == t.MainMatches && bonusMatches >= t.BonusMatches {
			return t, true
		}
	}
	return Tier{}, false
}

// TopTier returns the first (most demanding) tier in the table.
func (r GameRule) TopTier() (Tier, bool) {
	if len(r.Tiers) == 0 {
		return Tier{}, false
	}
	return r.Tiers[0], true
}

func (r GameRule) validate() error {
	if r.Game == "" {
		return fmt.Errorf("game rule missing game identifier")
	}
	if r.MainCount <= 0 {
		return fmt.Errorf("game %s: main count must be positive", r.Game)
	}
	if r.MainMin >= r.MainMax {
		return fmt.Errorf("game %s: main range [%d,%d] is empty", r.Game, r.MainMin, r.MainMax)
	}
	if r.MainMax-r.MainMin+1 < r.MainCount {
		return fmt.Errorf("game %s: range too small for %d unique mains", r.Game, r.MainCount)
	}
	if r.BonusCount > 0 && r.BonusMin >= r.BonusMax {
		return fmt.Errorf("game %s: bonus range [%d,%d] is empty", r.Game, r.BonusMin, r.BonusMax)
	}
	for i := 1; i < len(r.Tiers); i++ {
		prev, cur := r.Tiers[i-1], r.Tiers[i]
		if cur.MainMatches > prev.MainMatches ||
			(cur.MainMatches == prev.MainMatches && cur.BonusMatches > prev.BonusMatches) {
			return fmt.Errorf("game %s: tier table not ordered most-demanding first at %q", r.Game, cur.Label)
		}
	}
	return nil
}

// Registry is the process-wide game rule lookup. It is read-only after New,
// so concurrent reads need no locking.
type Registry struct {
	rules map[string]GameRule

	// minRecoverable is the smallest main count across registered games; a
	// ticket scan recovering fewer numbers than this is unreadable for every
	// known game.
	minRecoverable int
}

// NewRegistry validates and indexes the given rules.
func NewRegistry(gameRules ...GameRule) (*Registry, error) {
	if len(gameRules) == 0 {
		return nil, fmt.Errorf("registry needs at least one game rule")
	}
	reg := &Registry{rules: make(map[string]GameRule, len(gameRules))}
	minCount := 0
	for _, r := range gameRules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.rules[r.Game]; dup {
			return nil, fmt.Errorf("duplicate game rule %q", r.Game)
		}
		reg.rules[r.Game] = r
		if minCount == 0 || r.MainCount < minCount {
			minCount = r.MainCount
		}
	}
	reg.minRecoverable = minCount
	return reg, nil
}

// MustNewRegistry is NewRegistry for static rule sets known to be valid.
func MustNewRegistry(gameRules ...GameRule) *Registry {
	reg, err := NewRegistry(gameRules...)
	if err != nil {
		panic(err)
	}
	return reg
}

// RuleFor returns the rule for a game type, or an unknown_game_type error.
func (reg *Registry) RuleFor(game string) (GameRule, error) {
	if rule, ok := reg.rules[game]; ok {
		return rule, nil
	}
	return GameRule{}, dErrors.Newf(dErrors.CodeUnknownGameType, "no rule registered for game %q", game)
}

// Games lists the registered game identifiers.
func (reg *Registry) Games() []string {
	games := make([]string, 0, len(reg.rules))
	for g := range reg.rules {
		games = append(games, g)
	}
	return games
}

// MinRecoverable returns the smallest main-number count across all games.
func (reg *Registry) MinRecoverable() int {
	return reg.minRecoverable
}
