package config

import (
	"os"
	"path/filepath"
	"testing"

	"coursecompass/internal/core/domain"
)

func validConfig() Config {
	return Config{
		ChunkSize:     1200,
		ChunkOverlap:  200,
		FusionAlpha:   0.5,
		VectorBackend: "chromem",
		RetrievalTopN: 6,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsBadChunking(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkOverlap = cfg.ChunkSize
	if err := cfg.Validate(); !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = validConfig()
	cfg.ChunkSize = 0
	if err := cfg.Validate(); !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsAlphaOutsideUnitInterval(t *testing.T) {
	cfg := validConfig()
	cfg.FusionAlpha = 1.1
	if err := cfg.Validate(); !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsUnknownVectorBackend(t *testing.T) {
	cfg := validConfig()
	cfg.VectorBackend = "pinecone"
	if err := cfg.Validate(); !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestCandidateLimitDefaultsToTwiceTopN(t *testing.T) {
	cfg := validConfig()
	if got := cfg.CandidateLimit(); got != 12 {
		t.Fatalf("CandidateLimit() = %d, want 12", got)
	}

	cfg.HybridCandidates = 40
	if got := cfg.CandidateLimit(); got != 40 {
		t.Fatalf("CandidateLimit() = %d, want 40", got)
	}
}

func TestLoadCourseFactsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.yaml")
	content := `
grading_scale:
  - grade: A
    min_percent: 93
  - grade: B
    min_percent: 85
graded_activities:
  - name: Policy Memo
    points: 300
  - name: Final Exam
    points: 700
policies:
  - name: Late Work
    text: Late submissions lose 10% per day.
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}

	facts, err := LoadCourseFacts(path)
	if err != nil {
		t.Fatalf("LoadCourseFacts() error = %v", err)
	}
	if len(facts.GradingScale) != 2 || facts.GradingScale[0].Grade != "A" {
		t.Fatalf("unexpected grading scale: %+v", facts.GradingScale)
	}
	if facts.TotalPoints != 1000 {
		t.Fatalf("total points must be summed when omitted, got %d", facts.TotalPoints)
	}
	if len(facts.Policies) != 1 {
		t.Fatalf("unexpected policies: %+v", facts.Policies)
	}
}

func TestLoadCourseFactsEmptyPathYieldsEmptyFacts(t *testing.T) {
	facts, err := LoadCourseFacts("")
	if err != nil {
		t.Fatalf("LoadCourseFacts() error = %v", err)
	}
	if !facts.Empty() {
		t.Fatalf("expected empty facts, got %+v", facts)
	}
}

func TestLoadCourseFactsRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.yaml")
	if err := os.WriteFile(path, []byte("grading_scale: [unclosed"), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}
	if _, err := LoadCourseFacts(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
