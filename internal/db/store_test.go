package db

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBuildSubmissionFilter_Empty(t *testing.T) {
	where, args := buildSubmissionFilter(ListParams{})
	if where != "WHERE 1=1" {
		t.Fatalf("unexpected where clause: %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %d", len(args))
	}
}

func TestBuildSubmissionFilter_AllStatusIsNoFilter(t *testing.T) {
	where, args := buildSubmissionFilter(ListParams{Status: "all"})
	if strings.Contains(where, "s.status") {
		t.Fatalf("status=all must not filter, got %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %d", len(args))
	}
}

func TestBuildSubmissionFilter_PlaceholdersStaySequential(t *testing.T) {
	funnelID := uuid.New()
	where, args := buildSubmissionFilter(ListParams{
		FunnelID: funnelID,
		Status:   "evaluated",
		Outcome:  "pass",
		Tier:     "Pass",
		Query:    "fintech",
	})

	for _, want := range []string{"$1", "$2", "$3", "$4", "$5"} {
		if !strings.Contains(where, want) {
			t.Fatalf("missing placeholder %s in %q", want, where)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if args[0] != funnelID {
		t.Fatalf("expected funnel id first, got %v", args[0])
	}
	if args[2] != "pass" {
		t.Fatalf("expected outcome arg third, got %v", args[2])
	}
}

func TestBuildSubmissionFilter_OutcomeReadsLatestSnapshot(t *testing.T) {
	where, _ := buildSubmissionFilter(ListParams{Outcome: "reject"})
	if !strings.Contains(where, "latest.segment_outcome") {
		t.Fatalf("outcome filter must target the latest snapshot, got %q", where)
	}
}
