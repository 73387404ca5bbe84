package models

// ScoringCategory is one scoring dimension of a rubric. Weight is kept
// for forward compatibility; totals are plain sums today.
type ScoringCategory struct {
	Name     string  `json:"name" yaml:"name"`
	MaxScore int     `json:"max_score" yaml:"max_score"`
	Weight   float64 `json:"weight" yaml:"weight"`
}

// ScoreTier binds a human-readable label to an inclusive total-score range.
type ScoreTier struct {
	Name     string `json:"name" yaml:"name"`
	MinScore int    `json:"min_score" yaml:"min_score"`
	MaxScore int    `json:"max_score" yaml:"max_score"`
	Label    string `json:"label" yaml:"label"`
}

// ScoringModel is a named rubric: ordered categories plus tier ranges.
// Tier ranges are not required to be contiguous or exhaustive; a total
// falling in a gap resolves to the "Unknown" tier rather than erroring.
type ScoringModel struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Categories []ScoringCategory `json:"categories" yaml:"categories"`
	Tiers      []ScoreTier       `json:"tiers" yaml:"tiers"`
}

// RuleType selects which value of a score result a segment rule reads.
type RuleType string

const (
	RuleTotalScore    RuleType = "total_score"
	RuleCategoryScore RuleType = "category_score"
)

// RuleOperator is the comparison applied by a segment rule. Values
// outside this set fail closed during routing.
type RuleOperator string

const (
	OpGTE RuleOperator = "gte"
	OpLTE RuleOperator = "lte"
	OpEQ  RuleOperator = "eq"
	OpGT  RuleOperator = "gt"
	OpLT  RuleOperator = "lt"
)

// SegmentRule is a stateless predicate over a score result. Category is
// only meaningful when Type is RuleCategoryScore.
type SegmentRule struct {
	Type     RuleType     `json:"type" yaml:"type"`
	Category string       `json:"category,omitempty" yaml:"category,omitempty"`
	Operator RuleOperator `json:"operator" yaml:"operator"`
	Value    float64      `json:"value" yaml:"value"`
}

// Segment is an outcome bucket. All rules must hold (AND semantics);
// lower precedence evaluates first.
type Segment struct {
	ID             string        `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	Outcome        string        `json:"outcome" yaml:"outcome"`
	Rules          []SegmentRule `json:"rules" yaml:"rules"`
	Precedence     int           `json:"precedence" yaml:"precedence"`
	ReasonTemplate string        `json:"reason_template,omitempty" yaml:"reason_template,omitempty"`
}
