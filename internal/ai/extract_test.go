package ai

import (
	"context"
	"strings"
	"testing"
)

const validExtraction = `{
	"idea_summary": "Farm-to-table logistics platform",
	"problem": {"statement": "Restaurants cannot source local produce reliably", "severity": "high"},
	"solution": {"what": "Aggregated ordering and routing", "differentiation": "Same-day delivery network"},
	"market": {"customer": "Independent restaurants", "tam_note": "Large", "competition": "Broadline distributors"},
	"traction": {"signals": ["Pilot with 12 restaurants"], "metrics": ["GMV $40k/mo"]},
	"team": {"background": "Ex-logistics operators", "gaps": ["No CTO"]},
	"financials": {"model": "Take rate on orders", "unit_economics_note": "Positive contribution margin"},
	"risks": [{"type": "execution", "detail": "Cold-chain complexity"}],
	"score_suggestions": {"market": 20, "product": 18, "traction": 12, "team": 9, "financials": 10},
	"confidence": 0.8,
	"missing_info_questions": ["What is the churn rate?"]
}`

func TestParseExtractedFields_PlainJSON(t *testing.T) {
	fields, err := parseExtractedFields(validExtraction)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.IdeaSummary != "Farm-to-table logistics platform" {
		t.Fatalf("unexpected idea_summary: %s", fields.IdeaSummary)
	}
	if fields.ScoreSuggestions["market"] != 20 {
		t.Fatalf("expected market suggestion 20, got %f", fields.ScoreSuggestions["market"])
	}
}

func TestParseExtractedFields_StripsMarkdownFences(t *testing.T) {
	wrapped := "```json\n" + validExtraction + "\n```"
	fields, err := parseExtractedFields(wrapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Problem.Severity != "high" {
		t.Fatalf("unexpected severity: %s", fields.Problem.Severity)
	}
}

func TestParseExtractedFields_ExtractsObjectFromProse(t *testing.T) {
	wrapped := "Here is the analysis you asked for:\n" + validExtraction + "\nLet me know if you need anything else."
	fields, err := parseExtractedFields(wrapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Confidence != 0.8 {
		t.Fatalf("unexpected confidence: %f", fields.Confidence)
	}
}

func TestParseExtractedFields_MissingRequiredFieldFails(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing idea_summary", `{"problem": {"statement": "p"}, "solution": {"what": "s"}, "score_suggestions": {"market": 5}}`},
		{"missing problem", `{"idea_summary": "i", "solution": {"what": "s"}, "score_suggestions": {"market": 5}}`},
		{"missing solution", `{"idea_summary": "i", "problem": {"statement": "p"}, "score_suggestions": {"market": 5}}`},
		{"missing score_suggestions", `{"idea_summary": "i", "problem": {"statement": "p"}, "solution": {"what": "s"}}`},
	}

	for _, tc := range cases {
		if _, err := parseExtractedFields(tc.body); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestExtractFirstJSONObject_IgnoresBracesInStrings(t *testing.T) {
	input := `noise {"a": "value with } brace", "b": {"nested": true}} trailing`
	obj, ok := extractFirstJSONObject(input)
	if !ok {
		t.Fatal("expected object to be found")
	}
	if !strings.HasPrefix(obj, `{"a"`) || !strings.HasSuffix(obj, "}") {
		t.Fatalf("unexpected object: %s", obj)
	}
	if strings.Contains(obj, "trailing") {
		t.Fatalf("object should stop at balanced brace: %s", obj)
	}
}

func TestBuildExtractionPrompt_IncludesAnswersAndDocuments(t *testing.T) {
	prompt := buildExtractionPrompt(ExtractionRequest{
		IdeaText:             "An idea",
		AssessmentAnswers:    map[string]any{"q1": "B2B SaaS"},
		UploadedFilesContent: []string{"deck page one", "deck page two"},
	})

	for _, want := range []string{"An idea", "Assessment Answers:", "B2B SaaS", "Additional Documents:", "deck page one", "---", "score_suggestions"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestMockExtractor_RequiresIdeaText(t *testing.T) {
	mock := &MockExtractor{}
	if _, err := mock.ExtractSubmissionFields(context.Background(), ExtractionRequest{IdeaText: "  "}); err == nil {
		t.Fatal("expected error for empty idea text")
	}
}

func TestMockExtractor_SatisfiesAdapterContract(t *testing.T) {
	mock := &MockExtractor{}
	fields, err := mock.ExtractSubmissionFields(context.Background(), ExtractionRequest{IdeaText: "idea"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateExtractedFields(fields); err != nil {
		t.Fatalf("mock output violates contract: %v", err)
	}
	if mock.Live() {
		t.Fatal("mock must report Live=false")
	}
}
