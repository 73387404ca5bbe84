package eval

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRubric_EmbeddedDefaultMatchesBuiltins(t *testing.T) {
	rubric, err := LoadRubric("")
	if err != nil {
		t.Fatalf("load embedded rubric: %v", err)
	}

	want := DefaultScoringModel()
	if rubric.Model.ID != want.ID {
		t.Fatalf("expected model id %s, got %s", want.ID, rubric.Model.ID)
	}
	if len(rubric.Model.Categories) != len(want.Categories) {
		t.Fatalf("expected %d categories, got %d", len(want.Categories), len(rubric.Model.Categories))
	}
	for i, category := range rubric.Model.Categories {
		if category.Name != want.Categories[i].Name || category.MaxScore != want.Categories[i].MaxScore {
			t.Fatalf("category %d mismatch: %+v vs %+v", i, category, want.Categories[i])
		}
	}
	if len(rubric.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(rubric.Segments))
	}
	if rubric.Segments[0].Name != "pass" || rubric.Segments[0].Precedence != 1 {
		t.Fatalf("unexpected first segment: %+v", rubric.Segments[0])
	}
}

func TestLoadRubric_RejectsDuplicateCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	content := `
scoring_model:
  id: dup
  name: Duplicated
  categories:
    - name: market
      max_score: 25
    - name: market
      max_score: 10
  tiers: []
segments: []
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRubric(path); err == nil {
		t.Fatal("expected duplicate category error")
	}
}

func TestLoadRubric_MissingFileErrors(t *testing.T) {
	if _, err := LoadRubric(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing rubric file")
	}
}
