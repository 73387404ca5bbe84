package eval

import (
	"reflect"
	"testing"

	"github.com/renen/renen/internal/models"
)

func fieldsWithSuggestions(suggestions map[string]float64) *models.ExtractedFields {
	return &models.ExtractedFields{ScoreSuggestions: suggestions}
}

func TestCalculateScores_ClampsNegativeToZero(t *testing.T) {
	result := CalculateScores(fieldsWithSuggestions(map[string]float64{
		"market": -5,
	}), DefaultScoringModel())

	if result.CategoryScores["market"] != 0 {
		t.Fatalf("expected market=0, got %d", result.CategoryScores["market"])
	}
}

func TestCalculateScores_ClampsAboveMaxToMax(t *testing.T) {
	result := CalculateScores(fieldsWithSuggestions(map[string]float64{
		"market": 30,
	}), DefaultScoringModel())

	if result.CategoryScores["market"] != 25 {
		t.Fatalf("expected market=25, got %d", result.CategoryScores["market"])
	}
}

func TestCalculateScores_MissingCategoryScoresZero(t *testing.T) {
	result := CalculateScores(fieldsWithSuggestions(map[string]float64{
		"market": 20,
	}), DefaultScoringModel())

	if result.CategoryScores["team"] != 0 {
		t.Fatalf("expected team=0 for missing suggestion, got %d", result.CategoryScores["team"])
	}
	if result.TotalScore != 20 {
		t.Fatalf("expected total=20, got %d", result.TotalScore)
	}
}

func TestCalculateScores_FractionalSuggestionsTruncate(t *testing.T) {
	result := CalculateScores(fieldsWithSuggestions(map[string]float64{
		"market":  24.9,
		"product": 30.7, // above max, clamps to 25
	}), DefaultScoringModel())

	if result.CategoryScores["market"] != 24 {
		t.Fatalf("expected market=24 (truncated), got %d", result.CategoryScores["market"])
	}
	if result.CategoryScores["product"] != 25 {
		t.Fatalf("expected product=25, got %d", result.CategoryScores["product"])
	}
}

func TestCalculateScores_TotalIsSumOfClampedScores(t *testing.T) {
	result := CalculateScores(fieldsWithSuggestions(map[string]float64{
		"market":     -5, // -> 0
		"product":    30, // -> 25
		"traction":   10,
		"team":       12,
		"financials": 99, // -> 15
	}), DefaultScoringModel())

	expected := 0 + 25 + 10 + 12 + 15
	if result.TotalScore != expected {
		t.Fatalf("expected total=%d, got %d", expected, result.TotalScore)
	}
}

func TestCalculateScores_TierBoundariesInclusive(t *testing.T) {
	cases := []struct {
		total int
		tier  string
	}{
		{49, "Reject"},
		{50, "Revise"},
		{69, "Revise"},
		{70, "Pass"},
		{100, "Pass"},
	}

	for _, tc := range cases {
		// All points on market+product so nothing clamps.
		market := tc.total
		product := 0
		if market > 25 {
			product = market - 25
			market = 25
		}
		traction := 0
		if product > 25 {
			traction = product - 25
			product = 25
		}
		result := CalculateScores(fieldsWithSuggestions(map[string]float64{
			"market":   float64(market),
			"product":  float64(product),
			"traction": float64(traction),
			"team":     0,
		}), DefaultScoringModel())

		if result.TotalScore != tc.total {
			t.Fatalf("setup error: expected total %d, got %d", tc.total, result.TotalScore)
		}
		if result.Tier != tc.tier {
			t.Fatalf("total=%d: expected tier %q, got %q", tc.total, tc.tier, result.Tier)
		}
	}
}

func TestCalculateScores_TierGapYieldsUnknown(t *testing.T) {
	model := models.ScoringModel{
		ID:   "gappy",
		Name: "Gappy",
		Categories: []models.ScoringCategory{
			{Name: "market", MaxScore: 100, Weight: 1.0},
		},
		Tiers: []models.ScoreTier{
			{Name: "low", MinScore: 0, MaxScore: 40, Label: "Low"},
			{Name: "high", MinScore: 60, MaxScore: 100, Label: "High"},
		},
	}

	result := CalculateScores(fieldsWithSuggestions(map[string]float64{"market": 50}), model)
	if result.Tier != UnknownTier {
		t.Fatalf("expected tier %q for gap, got %q", UnknownTier, result.Tier)
	}
}

func TestCalculateScores_Deterministic(t *testing.T) {
	fields := fieldsWithSuggestions(map[string]float64{
		"market":     22,
		"product":    18.5,
		"traction":   -3,
		"team":       40,
		"financials": 9,
	})

	first := CalculateScores(fields, DefaultScoringModel())
	second := CalculateScores(fields, DefaultScoringModel())

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}
