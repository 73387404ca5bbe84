package eval

import (
	"context"
	"log"
	"time"

	"github.com/renen/renen/internal/ai"
	"github.com/renen/renen/internal/models"
)

// EvaluationRequest is one unit of work for the orchestrator.
type EvaluationRequest struct {
	Submission           models.Submission
	AssessmentAnswers    map[string]any
	UploadedFilesContent []string
}

// EvaluationResult is the tagged outcome of an evaluation. Callers must
// check Success before reading Snapshot.
type EvaluationResult struct {
	Snapshot *models.EvaluationSnapshot `json:"snapshot,omitempty"`
	Success  bool                       `json:"success"`
	Error    string                     `json:"error,omitempty"`
}

const defaultBatchPacing = time.Second

// Orchestrator sequences extraction, scoring, routing and snapshot
// assembly. The scoring model and segment list are fixed at construction
// and shared read-only across calls; the orchestrator itself holds no
// mutable state and never persists anything.
type Orchestrator struct {
	extractor ai.Extractor
	model     models.ScoringModel
	segments  []models.Segment
	pacing    time.Duration
}

func NewOrchestrator(extractor ai.Extractor, model models.ScoringModel, segments []models.Segment) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		model:     model,
		segments:  segments,
		pacing:    defaultBatchPacing,
	}
}

// Evaluate runs the full pipeline for one submission. An extraction
// failure aborts before scoring; no partial data flows downstream.
func (o *Orchestrator) Evaluate(ctx context.Context, req EvaluationRequest) EvaluationResult {
	extracted, err := o.extractor.ExtractSubmissionFields(ctx, ai.ExtractionRequest{
		IdeaText:             req.Submission.IdeaText,
		AssessmentAnswers:    req.AssessmentAnswers,
		UploadedFilesContent: req.UploadedFilesContent,
	})
	if err != nil {
		log.Printf("extraction failed for submission %s: %v", req.Submission.ID, err)
		return EvaluationResult{Success: false, Error: err.Error()}
	}

	return o.assemble(req.Submission, extracted)
}

// Reevaluate reruns scoring and routing over previously extracted
// fields, skipping the extraction adapter entirely. Used when rules
// change but extraction should not be repeated.
func (o *Orchestrator) Reevaluate(ctx context.Context, submission models.Submission, existing *models.ExtractedFields) EvaluationResult {
	if existing == nil {
		return EvaluationResult{Success: false, Error: "no extracted fields available for re-evaluation"}
	}
	return o.assemble(submission, existing)
}

// EvaluateBatch processes requests strictly in order, one at a time,
// with a pacing delay between live-adapter calls to stay under provider
// rate limits. It must not be parallelized. A failed item does not stop
// the rest; each result reports success or failure independently.
func (o *Orchestrator) EvaluateBatch(ctx context.Context, reqs []EvaluationRequest) []EvaluationResult {
	results := make([]EvaluationResult, 0, len(reqs))

	for i, req := range reqs {
		results = append(results, o.Evaluate(ctx, req))

		if o.extractor.Live() && i < len(reqs)-1 {
			select {
			case <-time.After(o.pacing):
			case <-ctx.Done():
				for j := i + 1; j < len(reqs); j++ {
					results = append(results, EvaluationResult{Success: false, Error: ctx.Err().Error()})
				}
				return results
			}
		}
	}

	return results
}

// SetPacing overrides the inter-request delay for live batches.
func (o *Orchestrator) SetPacing(d time.Duration) {
	if d >= 0 {
		o.pacing = d
	}
}

// Model returns the scoring model this orchestrator evaluates against.
func (o *Orchestrator) Model() models.ScoringModel {
	return o.model
}

func (o *Orchestrator) assemble(submission models.Submission, extracted *models.ExtractedFields) EvaluationResult {
	scoreResult := CalculateScores(extracted, o.model)
	segmentResult := ApplySegmentRouting(scoreResult, o.segments)

	snapshot := &models.EvaluationSnapshot{
		SubmissionID:         submission.ID,
		ScoringModelID:       o.model.ID,
		ExtractedFields:      *extracted,
		CategoryScores:       scoreResult.CategoryScores,
		TotalScore:           scoreResult.TotalScore,
		Tier:                 scoreResult.Tier,
		SegmentID:            segmentResult.SegmentID,
		SegmentName:          segmentResult.SegmentName,
		SegmentOutcome:       segmentResult.SegmentOutcome,
		DecisionReason:       segmentResult.DecisionReason,
		LLMConfidence:        extracted.Confidence,
		RiskFlags:            extracted.Risks,
		MissingInfoQuestions: extracted.MissingInfoQuestions,
	}

	return EvaluationResult{Snapshot: snapshot, Success: true}
}
