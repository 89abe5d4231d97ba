package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lottoledger/pkg/domain-errors"
)

func testRule() GameRule {
	return GameRule{
		Game:      "lotto649",
		MainCount: 6,
		MainMin:   1,
		MainMax:   49,
		Tiers: []Tier{
			{MainMatches: 6, Label: "Jackpot"},
			{MainMatches: 5, Label: "Tier2"},
			{MainMatches: 4, Label: "Tier3"},
		},
	}
}

func TestRegistryRuleFor(t *testing.T) {
	reg, err := NewRegistry(testRule())
	require.NoError(t, err)

	t.Run("known game", func(t *testing.T) {
		rule, err := reg.RuleFor("lotto649")
		require.NoError(t, err)
		assert.Equal(t, 6, rule.MainCount)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := reg.RuleFor("scratchcard")
		require.Error(t, err)
		assert.Equal(t, dErrors.CodeUnknownGameType, dErrors.CodeOf(err))
	})
}

func TestRegistryValidation(t *testing.T) {
	t.Run("rejects empty range", func(t *testing.T) {
		bad := testRule()
		bad.MainMin, bad.MainMax = 10, 10
		_, err := NewRegistry(bad)
		assert.Error(t, err)
	})

	t.Run("rejects range too small for unique mains", func(t *testing.T) {
		bad := testRule()
		bad.MainMin, bad.MainMax = 1, 5
		_, err := NewRegistry(bad)
		assert.Error(t, err)
	})

	t.Run("rejects unordered tier table", func(t *testing.T) {
		bad := testRule()
		bad.Tiers = []Tier{
			{MainMatches: 4, Label: "Tier3"},
			{MainMatches: 6, Label: "Jackpot"},
		}
		_, err := NewRegistry(bad)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate games", func(t *testing.T) {
		_, err := NewRegistry(testRule(), testRule())
		assert.Error(t, err)
	})
}

func TestResolveTier(t *testing.T) {
	rule := testRule()

	tests := []struct {
		name        string
		mainMatches int
		wantLabel   string
		wantWin     bool
	}{
		{"full match takes top tier", 6, "Jackpot", true},
		{"one miss drops exactly one bracket", 5, "Tier2", true},
		{"two misses drop to third bracket", 4, "Tier3", true},
		{"below table is no win", 3, "", false},
		{"zero matches is no win", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, won := rule.ResolveTier(tt.mainMatches, 0)
			assert.Equal(t, tt.wantWin, won)
			assert.Equal(t, tt.wantLabel, tier.Label)
		})
	}
}

func TestResolveTierWithBonus(t *testing.T) {
	reg := MustNewRegistry(Defaults()...)
	rule, err := reg.RuleFor("powerballx")
	require.NoError(t, err)

	t.Run("bonus requirement distinguishes tiers at same main count", func(t *testing.T) {
		withBonus, won := rule.ResolveTier(5, 1)
		require.True(t, won)
		assert.Equal(t, "Grand Prize", withBonus.Label)

		withoutBonus, won := rule.ResolveTier(5, 0)
		require.True(t, won)
		assert.Equal(t, "Match 5", withoutBonus.Label)
	})

	t.Run("bonus alone wins the floor tier", func(t *testing.T) {
		tier, won := rule.ResolveTier(0, 1)
		require.True(t, won)
		assert.Equal(t, "Match PB", tier.Label)
	})

	t.Run("two mains without bonus is no win", func(t *testing.T) {
		_, won := rule.ResolveTier(2, 0)
		assert.False(t, won)
	})
}

func TestMinRecoverable(t *testing.T) {
	reg := MustNewRegistry(Defaults()...)
	assert.Equal(t, 5, reg.MinRecoverable())
}

func TestDefaultsAreValid(t *testing.T) {
	_, err := NewRegistry(Defaults()...)
	assert.NoError(t, err)
}
