package usecase

import (
	"fmt"
	"strings"

	"coursecompass/internal/core/domain"
)

// IntentRegistry answers common course-administration questions from the
// structured course-facts file instead of the generative oracle. Matchers
// run in priority order; the first whose predicate and template both succeed
// wins. A closed set keeps the fast path auditable in isolation.
type IntentRegistry struct {
	facts    domain.CourseFacts
	matchers []intentMatcher
}

type intentMatcher struct {
	name   string
	match  func(query string, terms map[string]bool) bool
	render func(facts domain.CourseFacts, query string, passages []domain.RetrievedPassage) (string, bool)
}

func NewIntentRegistry(facts domain.CourseFacts) *IntentRegistry {
	return &IntentRegistry{
		facts: facts,
		matchers: []intentMatcher{
			{name: "grading-scale", match: matchGradingScale, render: renderGradingScale},
			{name: "activity-weights", match: matchActivityWeights, render: renderActivityWeights},
			{name: "due-date", match: matchDueDate, render: renderDueDate},
			{name: "policy", match: matchPolicy, render: renderPolicy},
		},
	}
}

// Match returns a deterministic answer when the query hits a known intent
// and the backing data can actually serve it. A matched intent with no data
// falls through so the caller still gets a generative answer.
func (r *IntentRegistry) Match(query string, passages []domain.RetrievedPassage) (string, bool) {
	q := strings.ToLower(query)
	terms := make(map[string]bool)
	for _, t := range domain.Tokenize(query) {
		terms[t] = true
	}
	for _, m := range r.matchers {
		if !m.match(q, terms) {
			continue
		}
		if text, ok := m.render(r.facts, q, passages); ok {
			return text, true
		}
	}
	return "", false
}

func matchGradingScale(q string, terms map[string]bool) bool {
	if strings.Contains(q, "grading scale") || strings.Contains(q, "grade scale") {
		return true
	}
	return (terms["grade"] || terms["grades"] || terms["grading"]) &&
		(terms["scale"] || terms["letter"] || terms["cutoff"] || terms["cutoffs"])
}

func renderGradingScale(facts domain.CourseFacts, _ string, _ []domain.RetrievedPassage) (string, bool) {
	if len(facts.GradingScale) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("The grading scale for this course:\n")
	for _, t := range facts.GradingScale {
		fmt.Fprintf(&b, "- %s: %.0f%% and above\n", t.Grade, t.MinPercent)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func matchActivityWeights(q string, terms map[string]bool) bool {
	// "late policy" and similar mention grades without asking for weights.
	if terms["late"] || terms["policy"] || terms["policies"] {
		return false
	}
	if strings.Contains(q, "worth") || strings.Contains(q, "weight") {
		return true
	}
	return (terms["percent"] || terms["percentage"] || terms["points"]) &&
		(terms["grade"] || terms["grades"] || terms["count"] || terms["counts"])
}

func renderActivityWeights(facts domain.CourseFacts, _ string, _ []domain.RetrievedPassage) (string, bool) {
	if len(facts.GradedActivities) == 0 || facts.TotalPoints <= 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("Graded work and how much each part counts:\n")
	for _, a := range facts.GradedActivities {
		pct := a.Points / float64(facts.TotalPoints) * 100
		fmt.Fprintf(&b, "- %s: %.0f points (%.0f%% of the final grade)\n", a.Name, a.Points, pct)
	}
	fmt.Fprintf(&b, "Total: %d points.", facts.TotalPoints)
	return b.String(), true
}

func matchDueDate(q string, terms map[string]bool) bool {
	return terms["due"] || terms["deadline"] || terms["deadlines"] ||
		strings.Contains(q, "when is") || strings.Contains(q, "when are")
}

// renderDueDate surfaces the retrieved schedule lines that mention a
// deadline. Dates live in the course schedule, not the facts file, so this
// template reads from the passages themselves.
func renderDueDate(_ domain.CourseFacts, _ string, passages []domain.RetrievedPassage) (string, bool) {
	var lines []string
	for _, p := range passages {
		for _, line := range strings.Split(p.Chunk.Text, "\n") {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "due") || strings.Contains(lower, "deadline") {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
		if len(lines) >= 3 {
			break
		}
	}
	if len(lines) == 0 {
		return "", false
	}
	if len(lines) > 3 {
		lines = lines[:3]
	}
	return "From the course schedule:\n- " + strings.Join(lines, "\n- "), true
}

func matchPolicy(q string, terms map[string]bool) bool {
	return terms["policy"] || terms["policies"] ||
		strings.Contains(q, "late work") || strings.Contains(q, "academic integrity") ||
		terms["attendance"] || terms["plagiarism"]
}

// renderPolicy picks the policy whose name shares the most terms with the
// query. No overlap picks nothing and the query falls through to generation.
func renderPolicy(facts domain.CourseFacts, query string, _ []domain.RetrievedPassage) (string, bool) {
	if len(facts.Policies) == 0 {
		return "", false
	}
	queryTerms := make(map[string]bool)
	for _, t := range domain.Tokenize(query) {
		queryTerms[t] = true
	}

	best := -1
	bestOverlap := 0
	for i, p := range facts.Policies {
		overlap := 0
		for _, t := range domain.Tokenize(p.Name) {
			if queryTerms[t] {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best < 0 {
		return "", false
	}
	p := facts.Policies[best]
	return fmt.Sprintf("%s: %s", p.Name, p.Text), true
}
