package usecase

import (
	"strings"
	"testing"

	"coursecompass/internal/core/domain"
)

func testFacts() domain.CourseFacts {
	return domain.CourseFacts{
		GradingScale: []domain.GradeThreshold{
			{Grade: "A", MinPercent: 93},
			{Grade: "A-", MinPercent: 90},
			{Grade: "B+", MinPercent: 87},
		},
		GradedActivities: []domain.GradedActivity{
			{Name: "Policy Memo", Points: 300},
			{Name: "Weekly Responses", Points: 200},
			{Name: "Final Exam", Points: 500},
		},
		TotalPoints: 1000,
		Policies: []domain.Policy{
			{Name: "Late Work", Text: "Late submissions lose 10% per day."},
			{Name: "Academic Integrity", Text: "Plagiarism results in a failing grade."},
		},
	}
}

func TestIntentActivityWeights(t *testing.T) {
	registry := NewIntentRegistry(testFacts())

	text, ok := registry.Match("How much is the final exam worth?", nil)
	if !ok {
		t.Fatalf("expected weights intent to match")
	}
	if !strings.Contains(text, "Final Exam: 500 points (50% of the final grade)") {
		t.Fatalf("unexpected weights answer: %q", text)
	}
}

func TestIntentWeightsNotMatchedForLatePolicyQuestions(t *testing.T) {
	registry := NewIntentRegistry(testFacts())

	text, ok := registry.Match("What is the late work policy for graded assignments?", nil)
	if !ok {
		t.Fatalf("expected policy intent to match")
	}
	if !strings.Contains(text, "lose 10% per day") {
		t.Fatalf("expected the late-work policy, got %q", text)
	}
}

func TestIntentPolicyPicksBestNameOverlap(t *testing.T) {
	registry := NewIntentRegistry(testFacts())

	text, ok := registry.Match("What happens under the academic integrity policy?", nil)
	if !ok {
		t.Fatalf("expected policy intent to match")
	}
	if !strings.Contains(text, "Plagiarism") {
		t.Fatalf("expected academic integrity policy, got %q", text)
	}
}

func TestIntentDueDateReadsFromPassages(t *testing.T) {
	registry := NewIntentRegistry(testFacts())
	passages := []domain.RetrievedPassage{
		{Chunk: domain.Chunk{Text: "Week 2 overview\nPolicy memo due Friday, Oct 10 at 11:59pm\nReadings: ch. 3"}},
	}

	text, ok := registry.Match("When is the policy memo due?", passages)
	if !ok {
		t.Fatalf("expected due-date intent to match")
	}
	if !strings.Contains(text, "due Friday, Oct 10") {
		t.Fatalf("expected schedule line in answer, got %q", text)
	}
}

func TestIntentFallsThroughWithoutFacts(t *testing.T) {
	registry := NewIntentRegistry(domain.CourseFacts{})

	if _, ok := registry.Match("What is the grading scale?", nil); ok {
		t.Fatalf("matched intent with no backing data must fall through")
	}
}

func TestIntentNoMatchForOpenQuestions(t *testing.T) {
	registry := NewIntentRegistry(testFacts())

	if _, ok := registry.Match("Can you summarize the week 3 readings?", nil); ok {
		t.Fatalf("open question must fall through to generation")
	}
}
