package eval

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/renen/renen/internal/models"
)

//go:embed config/rubric.yaml
var rubricYAML embed.FS

// Rubric bundles a scoring model with its segment routing set. The
// embedded rubric.yaml mirrors DefaultScoringModel/DefaultSegments and
// can be overridden with a local file for custom funnels.
type Rubric struct {
	Model    models.ScoringModel `yaml:"scoring_model"`
	Segments []models.Segment    `yaml:"segments"`
}

// LoadRubric reads the rubric from path when it exists, otherwise falls
// back to the embedded default. Category names must be unique; anything
// else about the rubric (tier gaps included) is accepted as-is.
func LoadRubric(path string) (*Rubric, error) {
	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rubric %s: %w", path, err)
		}
	} else {
		data, err = rubricYAML.ReadFile("config/rubric.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded rubric: %w", err)
		}
	}

	var rubric Rubric
	if err := yaml.Unmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("failed to parse rubric: %w", err)
	}

	if err := validateRubric(&rubric); err != nil {
		return nil, err
	}

	return &rubric, nil
}

func validateRubric(rubric *Rubric) error {
	if len(rubric.Model.Categories) == 0 {
		return fmt.Errorf("rubric %q has no categories", rubric.Model.Name)
	}

	seen := make(map[string]bool, len(rubric.Model.Categories))
	for _, category := range rubric.Model.Categories {
		if category.Name == "" {
			return fmt.Errorf("rubric %q has a category with no name", rubric.Model.Name)
		}
		if category.MaxScore < 0 {
			return fmt.Errorf("category %q has negative max_score", category.Name)
		}
		if seen[category.Name] {
			return fmt.Errorf("duplicate category name %q", category.Name)
		}
		seen[category.Name] = true
	}

	return nil
}
