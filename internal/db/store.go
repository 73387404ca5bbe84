package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/renen/renen/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	FunnelID uuid.UUID
	Status   string // submitted, evaluated, ... or "all"
	Outcome  string // pass, revise, reject (latest snapshot)
	Tier     string
	Query    string
	Limit    int
	Offset   int
}

// SubmissionWithEvaluation pairs a submission with its latest snapshot,
// when one exists.
type SubmissionWithEvaluation struct {
	models.Submission
	Evaluation *models.EvaluationSnapshot `json:"evaluation,omitempty"`
}

type ListResult struct {
	Submissions []SubmissionWithEvaluation `json:"submissions"`
	Total       int                        `json:"total"`
	Limit       int                        `json:"limit"`
	Offset      int                        `json:"offset"`
}

// buildSubmissionFilter assembles the WHERE clause for submission
// listings. Snapshot-derived filters (outcome, tier) read the latest
// snapshot joined as `latest`.
func buildSubmissionFilter(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.FunnelID != uuid.Nil {
		where += fmt.Sprintf(" AND s.funnel_id = $%d", argIdx)
		args = append(args, params.FunnelID)
		argIdx++
	}
	if params.Status != "" && params.Status != "all" {
		where += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Outcome != "" {
		where += fmt.Sprintf(" AND latest.segment_outcome = $%d", argIdx)
		args = append(args, params.Outcome)
		argIdx++
	}
	if params.Tier != "" {
		where += fmt.Sprintf(" AND latest.tier = $%d", argIdx)
		args = append(args, params.Tier)
		argIdx++
	}
	if params.Query != "" {
		where += fmt.Sprintf(" AND s.idea_text ILIKE '%%' || $%d || '%%'", argIdx)
		args = append(args, params.Query)
		argIdx++
	}

	return where, args
}

const latestSnapshotJoin = `
	LEFT JOIN LATERAL (
		SELECT * FROM evaluation_snapshots es
		WHERE es.submission_id = s.id
		ORDER BY es.created_at DESC
		LIMIT 1
	) latest ON TRUE`

func (s *Store) ListSubmissions(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where, args := buildSubmissionFilter(params)

	var total int
	countQuery := "SELECT COUNT(*) FROM submissions s" + latestSnapshotJoin + " " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	query := `
		SELECT s.id, s.funnel_id, s.submitter_email, s.submitter_name, s.idea_text, s.status, s.created_at, s.updated_at,
		       latest.id, latest.scoring_model_id, latest.extracted_fields, latest.category_scores,
		       latest.total_score, latest.tier, latest.segment_id, latest.segment_name, latest.segment_outcome,
		       latest.decision_reason, latest.llm_confidence, latest.risk_flags, latest.missing_info_questions, latest.created_at
		FROM submissions s` + latestSnapshotJoin + `
		` + where + `
		ORDER BY s.created_at DESC
		LIMIT ` + fmt.Sprintf("$%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]SubmissionWithEvaluation, 0)
	for rows.Next() {
		item, err := scanSubmissionWithEvaluation(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, item)
	}

	return &ListResult{
		Submissions: submissions,
		Total:       total,
		Limit:       params.Limit,
		Offset:      params.Offset,
	}, nil
}

func scanSubmissionWithEvaluation(row pgx.Row) (SubmissionWithEvaluation, error) {
	var item SubmissionWithEvaluation
	var email, name *string
	var snap snapshotRow

	err := row.Scan(
		&item.ID, &item.FunnelID, &email, &name, &item.IdeaText, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		&snap.ID, &snap.ScoringModelID, &snap.ExtractedFields, &snap.CategoryScores,
		&snap.TotalScore, &snap.Tier, &snap.SegmentID, &snap.SegmentName, &snap.SegmentOutcome,
		&snap.DecisionReason, &snap.LLMConfidence, &snap.RiskFlags, &snap.MissingInfoQuestions, &snap.CreatedAt,
	)
	if err != nil {
		return item, err
	}

	if email != nil {
		item.SubmitterEmail = *email
	}
	if name != nil {
		item.SubmitterName = *name
	}
	if snap.ID != nil {
		evaluation, err := snap.toModel(item.ID)
		if err != nil {
			return item, err
		}
		item.Evaluation = evaluation
	}

	return item, nil
}

// snapshotRow holds nullable scan targets for a possibly-absent snapshot.
type snapshotRow struct {
	ID                   *uuid.UUID
	ScoringModelID       *string
	ExtractedFields      []byte
	CategoryScores       []byte
	TotalScore           *int
	Tier                 *string
	SegmentID            *string
	SegmentName          *string
	SegmentOutcome       *string
	DecisionReason       *string
	LLMConfidence        *float64
	RiskFlags            []byte
	MissingInfoQuestions []string
	CreatedAt            *time.Time
}

func (r snapshotRow) toModel(submissionID uuid.UUID) (*models.EvaluationSnapshot, error) {
	snap := &models.EvaluationSnapshot{
		ID:           *r.ID,
		SubmissionID: submissionID,
	}
	if r.ScoringModelID != nil {
		snap.ScoringModelID = *r.ScoringModelID
	}
	if len(r.ExtractedFields) > 0 {
		if err := json.Unmarshal(r.ExtractedFields, &snap.ExtractedFields); err != nil {
			return nil, fmt.Errorf("decode extracted_fields: %w", err)
		}
	}
	if len(r.CategoryScores) > 0 {
		if err := json.Unmarshal(r.CategoryScores, &snap.CategoryScores); err != nil {
			return nil, fmt.Errorf("decode category_scores: %w", err)
		}
	}
	if r.TotalScore != nil {
		snap.TotalScore = *r.TotalScore
	}
	if r.Tier != nil {
		snap.Tier = *r.Tier
	}
	snap.SegmentID = r.SegmentID
	if r.SegmentName != nil {
		snap.SegmentName = *r.SegmentName
	}
	if r.SegmentOutcome != nil {
		snap.SegmentOutcome = *r.SegmentOutcome
	}
	if r.DecisionReason != nil {
		snap.DecisionReason = *r.DecisionReason
	}
	if r.LLMConfidence != nil {
		snap.LLMConfidence = *r.LLMConfidence
	}
	if len(r.RiskFlags) > 0 {
		if err := json.Unmarshal(r.RiskFlags, &snap.RiskFlags); err != nil {
			return nil, fmt.Errorf("decode risk_flags: %w", err)
		}
	}
	snap.MissingInfoQuestions = r.MissingInfoQuestions
	if r.CreatedAt != nil {
		snap.CreatedAt = *r.CreatedAt
	}
	return snap, nil
}

func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO submissions (funnel_id, submitter_email, submitter_name, idea_text, status)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		RETURNING id, created_at, updated_at
	`, sub.FunnelID, sub.SubmitterEmail, sub.SubmitterName, sub.IdeaText, sub.Status).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (s *Store) GetSubmission(ctx context.Context, id uuid.UUID) (*SubmissionWithEvaluation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT s.id, s.funnel_id, s.submitter_email, s.submitter_name, s.idea_text, s.status, s.created_at, s.updated_at,
		       latest.id, latest.scoring_model_id, latest.extracted_fields, latest.category_scores,
		       latest.total_score, latest.tier, latest.segment_id, latest.segment_name, latest.segment_outcome,
		       latest.decision_reason, latest.llm_confidence, latest.risk_flags, latest.missing_info_questions, latest.created_at
		FROM submissions s`+latestSnapshotJoin+`
		WHERE s.id = $1
	`, id)

	item, err := scanSubmissionWithEvaluation(row)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE submissions SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	return err
}

func (s *Store) UpdateSubmissionEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE submissions SET idea_embedding = $2 WHERE id = $1
	`, id, pgvector.NewVector(embedding))
	return err
}

// ListPendingSubmissions returns submissions awaiting their first
// evaluation, oldest first, for batch processing.
func (s *Store) ListPendingSubmissions(ctx context.Context, funnelID uuid.UUID, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 100
	}

	where := "WHERE status = 'submitted'"
	args := []interface{}{limit}
	if funnelID != uuid.Nil {
		where += " AND funnel_id = $2"
		args = append(args, funnelID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, funnel_id, COALESCE(submitter_email, ''), COALESCE(submitter_name, ''), idea_text, status, created_at, updated_at
		FROM submissions `+where+`
		ORDER BY created_at ASC
		LIMIT $1
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(&sub.ID, &sub.FunnelID, &sub.SubmitterEmail, &sub.SubmitterName, &sub.IdeaText, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// InsertSnapshot stores an evaluation snapshot. Snapshots are immutable:
// there is deliberately no update path.
func (s *Store) InsertSnapshot(ctx context.Context, snap *models.EvaluationSnapshot) error {
	extractedJSON, err := json.Marshal(snap.ExtractedFields)
	if err != nil {
		return fmt.Errorf("encode extracted_fields: %w", err)
	}
	scoresJSON, err := json.Marshal(snap.CategoryScores)
	if err != nil {
		return fmt.Errorf("encode category_scores: %w", err)
	}
	risksJSON, err := json.Marshal(snap.RiskFlags)
	if err != nil {
		return fmt.Errorf("encode risk_flags: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO evaluation_snapshots (
			submission_id, scoring_model_id, extracted_fields, category_scores,
			total_score, tier, segment_id, segment_name, segment_outcome,
			decision_reason, llm_confidence, risk_flags, missing_info_questions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`,
		snap.SubmissionID, snap.ScoringModelID, extractedJSON, scoresJSON,
		snap.TotalScore, snap.Tier, snap.SegmentID, snap.SegmentName, snap.SegmentOutcome,
		snap.DecisionReason, snap.LLMConfidence, risksJSON, snap.MissingInfoQuestions,
	).Scan(&snap.ID, &snap.CreatedAt)
}

func (s *Store) ListSnapshots(ctx context.Context, submissionID uuid.UUID) ([]models.EvaluationSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, scoring_model_id, extracted_fields, category_scores,
		       total_score, tier, segment_id, segment_name, segment_outcome,
		       decision_reason, llm_confidence, risk_flags, missing_info_questions, created_at
		FROM evaluation_snapshots
		WHERE submission_id = $1
		ORDER BY created_at DESC
	`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]models.EvaluationSnapshot, 0)
	for rows.Next() {
		var r snapshotRow
		if err := rows.Scan(
			&r.ID, &r.ScoringModelID, &r.ExtractedFields, &r.CategoryScores,
			&r.TotalScore, &r.Tier, &r.SegmentID, &r.SegmentName, &r.SegmentOutcome,
			&r.DecisionReason, &r.LLMConfidence, &r.RiskFlags, &r.MissingInfoQuestions, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		snap, err := r.toModel(submissionID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, rows.Err()
}

// SimilarSubmissions ranks other submissions by cosine distance of their
// idea embeddings. Submissions without an embedding are skipped.
func (s *Store) SimilarSubmissions(ctx context.Context, id uuid.UUID, limit int) ([]models.Submission, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	rows, err := s.pool.Query(ctx, `
		SELECT o.id, o.funnel_id, COALESCE(o.submitter_email, ''), COALESCE(o.submitter_name, ''), o.idea_text, o.status, o.created_at, o.updated_at
		FROM submissions o, submissions target
		WHERE target.id = $1
		  AND o.id <> target.id
		  AND o.idea_embedding IS NOT NULL
		  AND target.idea_embedding IS NOT NULL
		ORDER BY o.idea_embedding <=> target.idea_embedding
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(&sub.ID, &sub.FunnelID, &sub.SubmitterEmail, &sub.SubmitterName, &sub.IdeaText, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Funnels

func (s *Store) CreateFunnel(ctx context.Context, funnel *models.Funnel) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO funnels (name, description, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, funnel.Name, funnel.Description, funnel.IsActive).
		Scan(&funnel.ID, &funnel.CreatedAt, &funnel.UpdatedAt)
}

func (s *Store) GetFunnel(ctx context.Context, id uuid.UUID) (*models.Funnel, error) {
	var funnel models.Funnel
	var description *string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM funnels WHERE id = $1
	`, id).Scan(&funnel.ID, &funnel.Name, &description, &funnel.IsActive, &funnel.CreatedAt, &funnel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description != nil {
		funnel.Description = *description
	}
	return &funnel, nil
}

func (s *Store) ListFunnels(ctx context.Context) ([]models.Funnel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), is_active, created_at, updated_at
		FROM funnels
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funnels := make([]models.Funnel, 0)
	for rows.Next() {
		var funnel models.Funnel
		if err := rows.Scan(&funnel.ID, &funnel.Name, &funnel.Description, &funnel.IsActive, &funnel.CreatedAt, &funnel.UpdatedAt); err != nil {
			return nil, err
		}
		funnels = append(funnels, funnel)
	}
	return funnels, rows.Err()
}

// Stats

type Stats struct {
	TotalSubmissions int            `json:"total_submissions"`
	ByStatus         map[string]int `json:"by_status"`
	ByOutcome        map[string]int `json:"by_outcome"`
	ByTier           map[string]int `json:"by_tier"`
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:  map[string]int{},
		ByOutcome: map[string]int{},
		ByTier:    map[string]int{},
	}

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.TotalSubmissions += count
	}
	rows.Close()

	rows, err = s.pool.Query(ctx, `
		SELECT latest.segment_outcome, latest.tier, COUNT(*)
		FROM submissions s` + latestSnapshotJoin + `
		WHERE latest.id IS NOT NULL
		GROUP BY latest.segment_outcome, latest.tier
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var outcome, tier string
		var count int
		if err := rows.Scan(&outcome, &tier, &count); err != nil {
			return nil, err
		}
		stats.ByOutcome[outcome] += count
		stats.ByTier[tier] += count
	}

	return stats, rows.Err()
}

// Starred submissions (reviewer shortlists)

func (s *Store) StarSubmission(ctx context.Context, userID, submissionID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO starred_submissions (user_id, submission_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, submission_id) DO NOTHING
	`, userID, submissionID)
	return err
}

func (s *Store) UnstarSubmission(ctx context.Context, userID, submissionID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM starred_submissions
		WHERE user_id = $1 AND submission_id = $2
	`, userID, submissionID)
	return err
}

func (s *Store) GetStarredSubmissions(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.funnel_id, COALESCE(s.submitter_email, ''), COALESCE(s.submitter_name, ''), s.idea_text, s.status, s.created_at, s.updated_at
		FROM submissions s
		JOIN starred_submissions ss ON s.id = ss.submission_id
		WHERE ss.user_id = $1
		ORDER BY ss.starred_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(&sub.ID, &sub.FunnelID, &sub.SubmitterEmail, &sub.SubmitterName, &sub.IdeaText, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
