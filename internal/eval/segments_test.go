package eval

import (
	"testing"

	"github.com/renen/renen/internal/models"
)

func scoreResult(total int, categories map[string]int) ScoreResult {
	if categories == nil {
		categories = map[string]int{}
	}
	return ScoreResult{CategoryScores: categories, TotalScore: total, Tier: ""}
}

func TestApplySegmentRouting_LowerPrecedenceWinsRegardlessOfOrder(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-b", Name: "b", Outcome: "revise", Precedence: 2,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 10}},
		},
		{
			ID: "seg-a", Name: "a", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 10}},
		},
	}

	result := ApplySegmentRouting(scoreResult(50, nil), segments)
	if result.SegmentName != "a" {
		t.Fatalf("expected lower-precedence segment a, got %s", result.SegmentName)
	}
}

func TestApplySegmentRouting_PrecedenceTieKeepsListOrder(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-first", Name: "first", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 10}},
		},
		{
			ID: "seg-second", Name: "second", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 10}},
		},
	}

	result := ApplySegmentRouting(scoreResult(50, nil), segments)
	if result.SegmentName != "first" {
		t.Fatalf("expected stable sort to keep first, got %s", result.SegmentName)
	}
}

func TestApplySegmentRouting_AllRulesMustHold(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-pass", Name: "pass", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{
				{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 40},
				{Type: models.RuleCategoryScore, Category: "team", Operator: models.OpGTE, Value: 10},
			},
		},
	}

	result := ApplySegmentRouting(scoreResult(50, map[string]int{"team": 5}), segments)
	if result.SegmentID != nil {
		t.Fatalf("expected fallback, got segment %s", result.SegmentName)
	}
}

func TestApplySegmentRouting_FallbackWhenNothingMatches(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-pass", Name: "pass", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 90}},
		},
	}

	result := ApplySegmentRouting(scoreResult(10, nil), segments)
	if result.SegmentID != nil {
		t.Fatal("expected nil segment_id on fallback")
	}
	if result.SegmentName != "reject" || result.SegmentOutcome != "reject" {
		t.Fatalf("expected reject fallback, got %s/%s", result.SegmentName, result.SegmentOutcome)
	}
	if result.DecisionReason != "Did not meet any segment criteria" {
		t.Fatalf("unexpected fallback reason: %s", result.DecisionReason)
	}
}

func TestApplySegmentRouting_FallbackAppliesToEmptySegmentList(t *testing.T) {
	result := ApplySegmentRouting(scoreResult(80, nil), nil)
	if result.SegmentID != nil || result.SegmentOutcome != "reject" {
		t.Fatalf("expected reject fallback for empty list, got %+v", result)
	}
}

func TestApplySegmentRouting_UnknownRuleTypeFailsClosed(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-broken", Name: "broken", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleType("median_score"), Operator: models.OpGTE, Value: 0}},
		},
	}

	result := ApplySegmentRouting(scoreResult(100, nil), segments)
	if result.SegmentID != nil {
		t.Fatal("expected unknown rule type to fail closed")
	}
}

func TestApplySegmentRouting_UnknownOperatorFailsClosed(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-broken", Name: "broken", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.RuleOperator("neq"), Value: 0}},
		},
	}

	result := ApplySegmentRouting(scoreResult(100, nil), segments)
	if result.SegmentID != nil {
		t.Fatal("expected unknown operator to fail closed")
	}
}

func TestApplySegmentRouting_MissingCategoryReadsZero(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-zero", Name: "zero", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleCategoryScore, Category: "ghost", Operator: models.OpLTE, Value: 0}},
		},
	}

	result := ApplySegmentRouting(scoreResult(50, map[string]int{"market": 20}), segments)
	if result.SegmentName != "zero" {
		t.Fatalf("expected missing category to evaluate as 0, got %+v", result)
	}
}

func TestApplySegmentRouting_ReasonTemplateVerbatim(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-pass", Name: "pass", Outcome: "pass", Precedence: 1,
			Rules:          []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 10}},
			ReasonTemplate: "Looks great.",
		},
	}

	result := ApplySegmentRouting(scoreResult(50, nil), segments)
	if result.DecisionReason != "Looks great." {
		t.Fatalf("expected template verbatim, got %q", result.DecisionReason)
	}
}

func TestApplySegmentRouting_GeneratedReasonEmbedsTotal(t *testing.T) {
	segments := []models.Segment{
		{
			ID: "seg-pass", Name: "pass", Outcome: "pass", Precedence: 1,
			Rules: []models.SegmentRule{{Type: models.RuleTotalScore, Operator: models.OpGTE, Value: 10}},
		},
	}

	result := ApplySegmentRouting(scoreResult(42, nil), segments)
	expected := "Matched pass segment criteria (score: 42)"
	if result.DecisionReason != expected {
		t.Fatalf("expected %q, got %q", expected, result.DecisionReason)
	}
}

func TestDefaultPipeline_StrongSubmissionPasses(t *testing.T) {
	fields := fieldsWithSuggestions(map[string]float64{
		"market":     22,
		"product":    22,
		"traction":   15,
		"team":       14,
		"financials": 12,
	})

	score := CalculateScores(fields, DefaultScoringModel())
	if score.TotalScore != 85 {
		t.Fatalf("expected total=85, got %d", score.TotalScore)
	}
	if score.Tier != "Pass" {
		t.Fatalf("expected tier Pass, got %s", score.Tier)
	}

	routed := ApplySegmentRouting(score, DefaultSegments())
	if routed.SegmentOutcome != "pass" {
		t.Fatalf("expected outcome pass, got %s", routed.SegmentOutcome)
	}
}

func TestDefaultPipeline_BorderlineSubmissionRoutesToRevise(t *testing.T) {
	fields := fieldsWithSuggestions(map[string]float64{
		"market":     18,
		"product":    20,
		"traction":   10,
		"team":       12,
		"financials": 9,
	})

	score := CalculateScores(fields, DefaultScoringModel())
	if score.TotalScore != 69 {
		t.Fatalf("expected total=69, got %d", score.TotalScore)
	}
	if score.Tier != "Revise" {
		t.Fatalf("expected tier Revise, got %s", score.Tier)
	}

	routed := ApplySegmentRouting(score, DefaultSegments())
	if routed.SegmentOutcome != "revise" {
		t.Fatalf("expected outcome revise, got %s", routed.SegmentOutcome)
	}
}
