package models

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationSnapshot is the immutable record of one completed evaluation.
// Re-evaluating a submission inserts a new snapshot; existing rows are
// never updated.
type EvaluationSnapshot struct {
	ID                   uuid.UUID       `json:"id"`
	SubmissionID         uuid.UUID       `json:"submission_id"`
	ScoringModelID       string          `json:"scoring_model_id"`
	ExtractedFields      ExtractedFields `json:"extracted_fields"`
	CategoryScores       map[string]int  `json:"category_scores"`
	TotalScore           int             `json:"total_score"`
	Tier                 string          `json:"tier"`
	SegmentID            *string         `json:"segment_id"`
	SegmentName          string          `json:"segment_name"`
	SegmentOutcome       string          `json:"segment_outcome"`
	DecisionReason       string          `json:"decision_reason"`
	LLMConfidence        float64         `json:"llm_confidence"`
	RiskFlags            []RiskFlag      `json:"risk_flags"`
	MissingInfoQuestions []string        `json:"missing_info_questions"`
	CreatedAt            time.Time       `json:"created_at"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
