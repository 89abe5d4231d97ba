package rules

// Defaults returns the rule set the server boots with. Kept as data so new
// games can be added without touching matching logic.
func Defaults() []GameRule {
	return []GameRule{
		{
			Game:      "lotto649",
			MainCount: 6,
			MainMin:   1,
			MainMax:   49,
			Tiers: []Tier{
				{MainMatches: 6, Label: "Jackpot"},
				{MainMatches: 5, Label: "Tier2"},
				{MainMatches: 4, Label: "Tier3"},
				{MainMatches: 3, Label: "Tier4"},
			},
		},
		{
			Game:       "powerballx",
			MainCount:  5,
			MainMin:    1,
			MainMax:    69,
			BonusCount: 1,
			BonusMin:   1,
			BonusMax:   26,
			Tiers: []Tier{
				{MainMatches: 5, BonusMatches: 1, Label: "Grand Prize"},
				{MainMatches: 5, Label: "Match 5"},
				{MainMatches: 4, BonusMatches: 1, Label: "Match 4+PB"},
				{MainMatches: 4, Label: "Match 4"},
				{MainMatches: 3, BonusMatches: 1, Label: "Match 3+PB"},
				{MainMatches: 3, Label: "Match 3"},
				{MainMatches: 2, BonusMatches: 1, Label: "Match 2+PB"},
				{MainMatches: 1, BonusMatches: 1, Label: "Match 1+PB"},
				{MainMatches: 0, BonusMatches: 1, Label: "Match PB"},
			},
		},
		{
			Game:       "dailygrand",
			MainCount:  5,
			MainMin:    1,
			MainMax:    49,
			BonusCount: 1,
			BonusMin:   1,
			BonusMax:   7,
			Tiers: []Tier{
				{MainMatches: 5, BonusMatches: 1, Label: "Top Prize"},
				{MainMatches: 5, Label: "Second Prize"},
				{MainMatches: 4, BonusMatches: 1, Label: "Third Prize"},
				{MainMatches: 4, Label: "Fourth Prize"},
				{MainMatches: 3, BonusMatches: 1, Label: "Fifth Prize"},
			},
		},
	}
}
