package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/renen/renen/internal/models"
)

// ExtractionRequest carries everything the extraction adapter may use:
// the free-text idea (required), structured assessment answers, and
// cleaned text of any uploaded documents.
type ExtractionRequest struct {
	IdeaText             string
	AssessmentAnswers    map[string]any
	UploadedFilesContent []string
}

// Extractor maps a submission into a typed field bundle. The live
// OpenAI-backed client and the deterministic stand-in both satisfy it;
// the pipeline treats them uniformly. Live reports whether calls hit an
// external provider, which drives inter-request pacing during batches.
type Extractor interface {
	ExtractSubmissionFields(ctx context.Context, req ExtractionRequest) (*models.ExtractedFields, error)
	Live() bool
}

const systemPrompt = `You are an expert investment analyst evaluating startup ideas for feasibility and investment potential.

Your task is to analyze startup submissions and extract structured information. You must output ONLY valid JSON following the exact schema provided.

Extract the following information:
1. Problem statement and severity (low/medium/high)
2. Solution description and differentiation
3. Market analysis (customer, TAM, competition)
4. Traction signals and metrics
5. Team background and gaps
6. Financial model and unit economics
7. Risk flags (regulatory/execution/market/tech)
8. Score suggestions for each category
9. Confidence level (0-1)
10. Missing information questions

Be critical but fair. Look for:
- Clear problem-solution fit
- Viable business model
- Realistic market opportunity
- Capable team
- Evidence of traction
- Financial sustainability

Output only JSON. No markdown, no explanation.`

const extractionSchema = `{
  "idea_summary": "string",
  "problem": {"statement": "string", "severity": "low | medium | high"},
  "solution": {"what": "string", "differentiation": "string"},
  "market": {"customer": "string", "tam_note": "string", "competition": "string"},
  "traction": {"signals": ["string"], "metrics": ["string"]},
  "team": {"background": "string", "gaps": ["string"]},
  "financials": {"model": "string", "unit_economics_note": "string"},
  "risks": [{"type": "regulatory | execution | market | tech", "detail": "string"}],
  "score_suggestions": {
    "market": "number (0-25)",
    "product": "number (0-25)",
    "traction": "number (0-20)",
    "team": "number (0-15)",
    "financials": "number (0-15)"
  },
  "confidence": "number (0-1)",
  "missing_info_questions": ["string"]
}`

var _ Extractor = (*OpenAIClient)(nil)

func (c *OpenAIClient) Live() bool { return true }

// ExtractSubmissionFields runs the live extraction call. JSON mode is
// tried first; if the response cannot be parsed the call is retried once
// in text mode with robust JSON extraction.
func (c *OpenAIClient) ExtractSubmissionFields(ctx context.Context, req ExtractionRequest) (*models.ExtractedFields, error) {
	if strings.TrimSpace(req.IdeaText) == "" {
		return nil, fmt.Errorf("idea_text is required")
	}

	userPrompt := buildExtractionPrompt(req)

	resp, err := c.GenerateCompletion(ctx, systemPrompt, userPrompt, true)
	if err == nil {
		if fields, parseErr := parseExtractedFields(resp); parseErr == nil {
			return fields, nil
		} else {
			log.Printf("JSON mode failed parsing: %v. Retrying with text mode...", parseErr)
		}
	} else {
		log.Printf("JSON mode generation failed: %v. Retrying with text mode...", err)
	}

	resp, err = c.GenerateCompletion(ctx, systemPrompt, userPrompt, false)
	if err != nil {
		return nil, err
	}

	fields, err := parseExtractedFields(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON after retry: %w", err)
	}

	return fields, nil
}

func buildExtractionPrompt(req ExtractionRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this startup idea and extract structured information:\n\n")
	b.WriteString(req.IdeaText)

	if len(req.AssessmentAnswers) > 0 {
		if encoded, err := json.MarshalIndent(req.AssessmentAnswers, "", "  "); err == nil {
			b.WriteString("\n\nAssessment Answers:\n")
			b.Write(encoded)
		}
	}

	if len(req.UploadedFilesContent) > 0 {
		b.WriteString("\n\nAdditional Documents:\n")
		b.WriteString(strings.Join(req.UploadedFilesContent, "\n\n---\n\n"))
	}

	b.WriteString("\n\nOutput JSON matching this schema:\n")
	b.WriteString(extractionSchema)

	return b.String()
}

func parseExtractedFields(resp string) (*models.ExtractedFields, error) {
	// Clean markdown code blocks
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	// Extract first valid JSON object {...}
	if jsonStr, ok := extractFirstJSONObject(cleaned); ok {
		cleaned = jsonStr
	}

	var fields models.ExtractedFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, err
	}

	if err := validateExtractedFields(&fields); err != nil {
		return nil, err
	}

	return &fields, nil
}

// validateExtractedFields enforces the adapter contract: idea_summary,
// problem, solution and score_suggestions must be present and non-empty.
// A violation is a hard failure, not a warning.
func validateExtractedFields(fields *models.ExtractedFields) error {
	if strings.TrimSpace(fields.IdeaSummary) == "" {
		return fmt.Errorf("invalid extraction response: missing idea_summary")
	}
	if strings.TrimSpace(fields.Problem.Statement) == "" {
		return fmt.Errorf("invalid extraction response: missing problem")
	}
	if strings.TrimSpace(fields.Solution.What) == "" {
		return fmt.Errorf("invalid extraction response: missing solution")
	}
	if len(fields.ScoreSuggestions) == 0 {
		return fmt.Errorf("invalid extraction response: missing score_suggestions")
	}
	return nil
}

// extractFirstJSONObject finds the first outermost balanced {...}
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if char == '{' {
				depth++
			} else if char == '}' {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
