package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"coursecompass/internal/core/domain"
)

// LoadCourseFacts reads the structured course-facts file (grading scale,
// activity weights, policies). Loaded from YAML so course staff can update
// it without a redeploy. An empty path returns empty facts: the intent
// registry then simply never matches and every query falls through to
// retrieval.
func LoadCourseFacts(path string) (domain.CourseFacts, error) {
	if path == "" {
		return domain.CourseFacts{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.CourseFacts{}, fmt.Errorf("read course facts: %w", err)
	}
	var facts domain.CourseFacts
	if err := yaml.Unmarshal(raw, &facts); err != nil {
		return domain.CourseFacts{}, fmt.Errorf("parse course facts: %w", err)
	}
	if facts.TotalPoints <= 0 {
		total := 0.0
		for _, a := range facts.GradedActivities {
			total += a.Points
		}
		facts.TotalPoints = int(total)
	}
	return facts, nil
}
