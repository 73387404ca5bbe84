package models

// ExtractedFields is the structured bundle produced by the extraction
// adapter for one submission. It is created once per evaluation attempt
// and never mutated afterwards; re-evaluations reuse it as-is.
type ExtractedFields struct {
	IdeaSummary          string             `json:"idea_summary"`
	Problem              ProblemField       `json:"problem"`
	Solution             SolutionField      `json:"solution"`
	Market               MarketField        `json:"market"`
	Traction             TractionField      `json:"traction"`
	Team                 TeamField          `json:"team"`
	Financials           FinancialsField    `json:"financials"`
	Risks                []RiskFlag         `json:"risks"`
	ScoreSuggestions     map[string]float64 `json:"score_suggestions"`
	Confidence           float64            `json:"confidence"`
	MissingInfoQuestions []string           `json:"missing_info_questions"`
}

type ProblemField struct {
	Statement string `json:"statement"`
	Severity  string `json:"severity"` // low, medium, high
}

type SolutionField struct {
	What            string `json:"what"`
	Differentiation string `json:"differentiation"`
}

type MarketField struct {
	Customer    string `json:"customer"`
	TamNote     string `json:"tam_note"`
	Competition string `json:"competition"`
}

type TractionField struct {
	Signals []string `json:"signals"`
	Metrics []string `json:"metrics"`
}

type TeamField struct {
	Background string   `json:"background"`
	Gaps       []string `json:"gaps"`
}

type FinancialsField struct {
	Model             string `json:"model"`
	UnitEconomicsNote string `json:"unit_economics_note"`
}

type RiskFlag struct {
	Type   string `json:"type"` // regulatory, execution, market, tech
	Detail string `json:"detail"`
}
