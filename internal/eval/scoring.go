package eval

import (
	"math"

	"github.com/renen/renen/internal/models"
)

// ScoreResult holds the clamped per-category scores for one evaluation.
type ScoreResult struct {
	CategoryScores map[string]int `json:"category_scores"`
	TotalScore     int            `json:"total_score"`
	Tier           string         `json:"tier"`
}

// UnknownTier is returned when a total falls outside every configured
// tier range. A rubric with gaps is allowed, not an error.
const UnknownTier = "Unknown"

// CalculateScores converts the extraction adapter's raw suggestions into
// model-bounded category scores. Suggestions are clamped to
// [0, category max]; missing categories score 0. Pure function: identical
// inputs always produce identical output.
func CalculateScores(extracted *models.ExtractedFields, model models.ScoringModel) ScoreResult {
	categoryScores := make(map[string]int, len(model.Categories))
	totalScore := 0

	for _, category := range model.Categories {
		suggested := extracted.ScoreSuggestions[category.Name]
		clamped := math.Min(math.Max(suggested, 0), float64(category.MaxScore))
		finalScore := int(clamped)

		categoryScores[category.Name] = finalScore
		totalScore += finalScore
	}

	return ScoreResult{
		CategoryScores: categoryScores,
		TotalScore:     totalScore,
		Tier:           determineTier(totalScore, model.Tiers),
	}
}

// determineTier returns the label of the first tier whose inclusive range
// contains the total, scanning in declaration order.
func determineTier(totalScore int, tiers []models.ScoreTier) string {
	for _, tier := range tiers {
		if totalScore >= tier.MinScore && totalScore <= tier.MaxScore {
			return tier.Label
		}
	}
	return UnknownTier
}
