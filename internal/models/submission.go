package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus tracks where a submission sits in the review lifecycle.
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "submitted"
	StatusEvaluated SubmissionStatus = "evaluated"
	StatusReviewed  SubmissionStatus = "reviewed"
	StatusApproved  SubmissionStatus = "approved"
	StatusRejected  SubmissionStatus = "rejected"
)

type Submission struct {
	ID             uuid.UUID        `json:"id"`
	FunnelID       uuid.UUID        `json:"funnel_id"`
	SubmitterEmail string           `json:"submitter_email"`
	SubmitterName  string           `json:"submitter_name"`
	IdeaText       string           `json:"idea_text"`
	Status         SubmissionStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Funnel is a named intake channel. Each funnel owns its assessment and
// may override the default scoring model and segment set.
type Funnel struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionScale        QuestionType = "scale"
	QuestionShortText    QuestionType = "short_text"
	QuestionLongText     QuestionType = "long_text"
	QuestionEmail        QuestionType = "email"
)

type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"`
	ScaleMin int          `json:"scale_min,omitempty"`
	ScaleMax int          `json:"scale_max,omitempty"`
}

// Assessment is the structured questionnaire attached to a funnel.
type Assessment struct {
	ID        uuid.UUID  `json:"id"`
	FunnelID  uuid.UUID  `json:"funnel_id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
