package ollama

import "fmt"

func buildAnswerPrompt(question, grounding string) string {
	return fmt.Sprintf(`You are a course assistant.
Answer the question only from the course materials below.
If the materials do not contain the answer, say "I can't find that in the course materials."
Prefer short, direct answers. When citing dates, points, or percentages, copy them exactly.

Question:
%s

Course materials:
%s
`, question, grounding)
}
