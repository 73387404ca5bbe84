package eval

import (
	"fmt"
	"sort"

	"github.com/renen/renen/internal/models"
)

// SegmentResult is the routed outcome for one evaluation. SegmentID is
// nil only when no segment matched and the fixed fallback applied.
type SegmentResult struct {
	SegmentID      *string `json:"segment_id"`
	SegmentName    string  `json:"segment_name"`
	SegmentOutcome string  `json:"segment_outcome"`
	DecisionReason string  `json:"decision_reason"`
}

const fallbackReason = "Did not meet any segment criteria"

// ApplySegmentRouting evaluates segments in ascending precedence order
// (stable: ties keep list order) and returns the first segment whose
// rules all hold. When nothing matches it returns the fixed reject
// fallback, even for caller-supplied segment lists with no catch-all.
func ApplySegmentRouting(result ScoreResult, segments []models.Segment) SegmentResult {
	sorted := make([]models.Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Precedence < sorted[j].Precedence
	})

	for _, segment := range sorted {
		if !segmentMatches(result, segment.Rules) {
			continue
		}

		reason := segment.ReasonTemplate
		if reason == "" {
			reason = fmt.Sprintf("Matched %s segment criteria (score: %d)", segment.Name, result.TotalScore)
		}

		id := segment.ID
		return SegmentResult{
			SegmentID:      &id,
			SegmentName:    segment.Name,
			SegmentOutcome: segment.Outcome,
			DecisionReason: reason,
		}
	}

	return SegmentResult{
		SegmentID:      nil,
		SegmentName:    "reject",
		SegmentOutcome: "reject",
		DecisionReason: fallbackReason,
	}
}

// segmentMatches applies AND semantics: every rule must hold.
func segmentMatches(result ScoreResult, rules []models.SegmentRule) bool {
	for _, rule := range rules {
		if !evaluateRule(result, rule) {
			return false
		}
	}
	return true
}

// evaluateRule resolves the rule's reference value and applies its
// operator. Unknown rule types and operators fail closed: a malformed
// rule can never crash routing, it just never matches.
func evaluateRule(result ScoreResult, rule models.SegmentRule) bool {
	var value float64

	switch rule.Type {
	case models.RuleTotalScore:
		value = float64(result.TotalScore)
	case models.RuleCategoryScore:
		if rule.Category == "" {
			return false
		}
		// Missing categories read as 0, not as an error.
		value = float64(result.CategoryScores[rule.Category])
	default:
		return false
	}

	switch rule.Operator {
	case models.OpGTE:
		return value >= rule.Value
	case models.OpLTE:
		return value <= rule.Value
	case models.OpEQ:
		return value == rule.Value
	case models.OpGT:
		return value > rule.Value
	case models.OpLT:
		return value < rule.Value
	default:
		return false
	}
}
