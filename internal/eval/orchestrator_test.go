package eval

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/renen/renen/internal/ai"
	"github.com/renen/renen/internal/models"
)

type failingExtractor struct {
	err  error
	live bool
}

func (f *failingExtractor) ExtractSubmissionFields(ctx context.Context, req ai.ExtractionRequest) (*models.ExtractedFields, error) {
	return nil, f.err
}

func (f *failingExtractor) Live() bool { return f.live }

func newTestOrchestrator(extractor ai.Extractor) *Orchestrator {
	o := NewOrchestrator(extractor, DefaultScoringModel(), DefaultSegments())
	o.SetPacing(0)
	return o
}

func testSubmission() models.Submission {
	return models.Submission{
		ID:       uuid.New(),
		FunnelID: uuid.New(),
		IdeaText: "A marketplace connecting local farms with restaurants.",
		Status:   models.StatusSubmitted,
	}
}

func TestEvaluate_MockExtractorProducesSnapshot(t *testing.T) {
	o := newTestOrchestrator(&ai.MockExtractor{})
	sub := testSubmission()

	result := o.Evaluate(context.Background(), EvaluationRequest{Submission: sub})
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}

	snap := result.Snapshot
	if snap.SubmissionID != sub.ID {
		t.Fatalf("expected submission id %s, got %s", sub.ID, snap.SubmissionID)
	}
	if snap.ScoringModelID != "default" {
		t.Fatalf("expected scoring model id default, got %s", snap.ScoringModelID)
	}
	// Mock suggestions: 15+18+8+10+8 = 59 -> Revise tier, revise segment.
	if snap.TotalScore != 59 {
		t.Fatalf("expected total=59, got %d", snap.TotalScore)
	}
	if snap.Tier != "Revise" {
		t.Fatalf("expected tier Revise, got %s", snap.Tier)
	}
	if snap.SegmentOutcome != "revise" {
		t.Fatalf("expected outcome revise, got %s", snap.SegmentOutcome)
	}
	if snap.LLMConfidence != 0.7 {
		t.Fatalf("expected confidence 0.7, got %f", snap.LLMConfidence)
	}
}

func TestEvaluate_ExtractionFailureAbortsPipeline(t *testing.T) {
	o := newTestOrchestrator(&failingExtractor{err: errors.New("provider unreachable")})

	result := o.Evaluate(context.Background(), EvaluationRequest{Submission: testSubmission()})
	if result.Success {
		t.Fatal("expected failure result")
	}
	if result.Error != "provider unreachable" {
		t.Fatalf("expected underlying message to surface, got %q", result.Error)
	}
	if result.Snapshot != nil {
		t.Fatal("expected no snapshot on extraction failure")
	}
}

func TestReevaluate_SkipsExtractorAndIsIdempotent(t *testing.T) {
	// Extractor always errors, proving re-evaluation never calls it.
	o := newTestOrchestrator(&failingExtractor{err: errors.New("must not be called")})
	sub := testSubmission()

	fields := &models.ExtractedFields{
		IdeaSummary: "summary",
		Problem:     models.ProblemField{Statement: "problem", Severity: "high"},
		Solution:    models.SolutionField{What: "solution"},
		ScoreSuggestions: map[string]float64{
			"market":     22,
			"product":    22,
			"traction":   15,
			"team":       14,
			"financials": 12,
		},
		Confidence: 0.9,
	}

	first := o.Reevaluate(context.Background(), sub, fields)
	second := o.Reevaluate(context.Background(), sub, fields)

	if !first.Success || !second.Success {
		t.Fatalf("expected success, got %q / %q", first.Error, second.Error)
	}
	if !reflect.DeepEqual(first.Snapshot, second.Snapshot) {
		t.Fatalf("expected identical snapshots, got %+v vs %+v", first.Snapshot, second.Snapshot)
	}
	if first.Snapshot.SegmentOutcome != "pass" {
		t.Fatalf("expected outcome pass, got %s", first.Snapshot.SegmentOutcome)
	}
}

func TestReevaluate_NilFieldsFails(t *testing.T) {
	o := newTestOrchestrator(&ai.MockExtractor{})

	result := o.Reevaluate(context.Background(), testSubmission(), nil)
	if result.Success {
		t.Fatal("expected failure for nil fields")
	}
}

func TestEvaluateBatch_PreservesOrderAndSurvivesFailures(t *testing.T) {
	o := newTestOrchestrator(&ai.MockExtractor{})

	good := testSubmission()
	bad := testSubmission()
	bad.IdeaText = "" // mock extractor rejects empty idea text

	results := o.EvaluateBatch(context.Background(), []EvaluationRequest{
		{Submission: good},
		{Submission: bad},
		{Submission: good},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Fatal("expected surrounding items to succeed")
	}
	if results[1].Success {
		t.Fatal("expected middle item to fail")
	}
}

func TestEvaluateBatch_CancelledContextFailsRemaining(t *testing.T) {
	extractor := &failingExtractor{err: errors.New("boom"), live: true}
	o := NewOrchestrator(extractor, DefaultScoringModel(), DefaultSegments())
	o.SetPacing(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := o.EvaluateBatch(ctx, []EvaluationRequest{
		{Submission: testSubmission()},
		{Submission: testSubmission()},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Success {
			t.Fatalf("expected item %d to fail", i)
		}
	}
}
