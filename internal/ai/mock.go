package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/renen/renen/internal/models"
)

// MockExtractor is the deterministic stand-in used when no API key is
// configured. It honors the same contract as the live client, including
// the required-field checks on its input.
type MockExtractor struct{}

var _ Extractor = (*MockExtractor)(nil)

func (m *MockExtractor) Live() bool { return false }

func (m *MockExtractor) ExtractSubmissionFields(ctx context.Context, req ExtractionRequest) (*models.ExtractedFields, error) {
	if strings.TrimSpace(req.IdeaText) == "" {
		return nil, fmt.Errorf("idea_text is required")
	}

	return &models.ExtractedFields{
		IdeaSummary: "AI-powered solution for the described problem",
		Problem: models.ProblemField{
			Statement: "Extracted problem from submission",
			Severity:  "medium",
		},
		Solution: models.SolutionField{
			What:            "Proposed solution approach",
			Differentiation: "Unique value proposition",
		},
		Market: models.MarketField{
			Customer:    "Target customer segment",
			TamNote:     "Market size estimate",
			Competition: "Competitive landscape",
		},
		Traction: models.TractionField{
			Signals: []string{"Early indicator 1", "Early indicator 2"},
			Metrics: []string{"Metric 1", "Metric 2"},
		},
		Team: models.TeamField{
			Background: "Team experience and skills",
			Gaps:       []string{"Gap 1", "Gap 2"},
		},
		Financials: models.FinancialsField{
			Model:             "Business model",
			UnitEconomicsNote: "Unit economics summary",
		},
		Risks: []models.RiskFlag{
			{Type: "market", Detail: "Market-related risk"},
		},
		ScoreSuggestions: map[string]float64{
			"market":     15,
			"product":    18,
			"traction":   8,
			"team":       10,
			"financials": 8,
		},
		Confidence:           0.7,
		MissingInfoQuestions: []string{"Question 1?", "Question 2?"},
	}, nil
}
