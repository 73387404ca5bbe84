package eval

import "github.com/renen/renen/internal/models"

// DefaultScoringModel returns the standard investment rubric: five
// categories summing to 100 points and three inclusive tier bands.
// Constructed fresh per call so callers can never mutate shared state.
func DefaultScoringModel() models.ScoringModel {
	return models.ScoringModel{
		ID:   "default",
		Name: "Standard Investment Evaluation",
		Categories: []models.ScoringCategory{
			{Name: "market", MaxScore: 25, Weight: 1.0},
			{Name: "product", MaxScore: 25, Weight: 1.0},
			{Name: "traction", MaxScore: 20, Weight: 1.0},
			{Name: "team", MaxScore: 15, Weight: 1.0},
			{Name: "financials", MaxScore: 15, Weight: 1.0},
		},
		Tiers: []models.ScoreTier{
			{Name: "reject", MinScore: 0, MaxScore: 49, Label: "Reject"},
			{Name: "revise", MinScore: 50, MaxScore: 69, Label: "Revise"},
			{Name: "pass", MinScore: 70, MaxScore: 100, Label: "Pass"},
		},
	}
}

// DefaultSegments returns the shipped pass/revise/reject routing set.
func DefaultSegments() []models.Segment {
	return []models.Segment{
		{
			ID:         "seg-pass",
			Name:       "pass",
			Outcome:    "pass",
			Precedence: 1,
			Rules: []models.SegmentRule{
				{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 70},
				{Type: models.RuleCategoryScore, Category: "team", Operator: models.OpGTE, Value: 10},
				{Type: models.RuleCategoryScore, Category: "market", Operator: models.OpGTE, Value: 15},
			},
			ReasonTemplate: "Strong overall score with solid team and market potential. Recommended for investment.",
		},
		{
			ID:         "seg-revise",
			Name:       "revise",
			Outcome:    "revise",
			Precedence: 2,
			Rules: []models.SegmentRule{
				{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 50},
				{Type: models.RuleTotalScore, Operator: models.OpLTE, Value: 69},
			},
			ReasonTemplate: "Shows promise but needs improvement in key areas before investment consideration.",
		},
		{
			ID:         "seg-reject",
			Name:       "reject",
			Outcome:    "reject",
			Precedence: 3,
			Rules: []models.SegmentRule{
				{Type: models.RuleTotalScore, Operator: models.OpLT, Value: 50},
			},
			ReasonTemplate: "Does not meet minimum criteria for investment at this time.",
		},
	}
}
