package tutor

import (
	"fmt"
	"strings"

	"github.com/studyloop/studyloop/internal/concepts"
	"github.com/studyloop/studyloop/internal/llm"
)

func buildTutoringSystemPrompt(subject string, prior []concepts.Snippet) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("You are a %s tutor. Build upon previous explanations using simple, succinct language.\n\n", subject))
	b.WriteString(`For every reply, also decide whether this exchange taught a concept worth quizzing the student on later:
- Mark it testable when the student learned something substantive that could be tested.
- Do not mark greetings, meta questions, or small talk as testable.
- When testable, name the topic in 2-5 words (e.g. "standard deviation").`)

	if len(prior) > 0 {
		b.WriteString("\n\nRelevant exchanges from earlier sessions:\n")
		for _, s := range prior {
			b.WriteString(fmt.Sprintf("- Student: %s\n  Tutor: %s\n", s.UserInput, s.TutorResponse))
		}
	}

	return b.String()
}

func questionSystemPrompt(subject string) string {
	return fmt.Sprintf("You are a %s tutor creating test questions. Based on the previous interaction, generate a question that tests understanding of the concept. Make it specific and practical.", subject)
}

func buildQuestionUserMessage(c concepts.Concept) string {
	if c.Label != "" {
		return fmt.Sprintf("Generate a test question about %s that requires understanding, not just memorization.", c.Label)
	}
	return "Generate a test question about this concept that requires understanding, not just memorization."
}

func evaluationSystemPrompt(subject string) string {
	return fmt.Sprintf("You are a %s tutor evaluating a student's answer. Determine if they demonstrate understanding. Provide specific, constructive feedback.", subject)
}

func buildEvaluationUserMessage(question, answer string) string {
	var b strings.Builder

	if question != "" {
		b.WriteString(fmt.Sprintf("Question: %s\n", question))
	}
	b.WriteString(fmt.Sprintf("Student answer: %s\n", answer))
	b.WriteString("\nEvaluate whether this answer demonstrates understanding of the concept.")

	return b.String()
}

// snippetMessages renders stored exchanges as conversation turns. A
// positive last keeps only that many of the newest snippets.
func snippetMessages(snippets []concepts.Snippet, last int) []llm.Message {
	if last > 0 && len(snippets) > last {
		snippets = snippets[len(snippets)-last:]
	}

	msgs := make([]llm.Message, 0, len(snippets)*2)
	for _, s := range snippets {
		// Opaque records decode to a snippet with only UserInput set;
		// never emit an empty turn.
		if s.UserInput != "" {
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: s.UserInput})
		}
		if s.TutorResponse != "" {
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: s.TutorResponse})
		}
	}
	return msgs
}
