package tutor

import "github.com/studyloop/studyloop/internal/llm"

// ReplySchema defines the JSON schema for tutoring replies. The reply
// carries the retention decision so no second round-trip is needed to
// decide what goes into the memory store.
var ReplySchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "A tutoring reply plus the decision whether the exchange is worth quizzing later",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "The tutoring response shown to the student",
			},
			"testable": map[string]any{
				"type":        "boolean",
				"description": "Whether this exchange taught a concept worth testing later",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "Short topic label when testable (2-5 words), empty otherwise",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One sentence explaining the testable decision",
			},
		},
		"required":             []any{"reply", "testable", "topic", "reason"},
		"additionalProperties": false,
	},
}

// QuestionSchema defines the JSON schema for quiz question generation.
var QuestionSchema = &llm.Schema{
	Name:        "test-question",
	Description: "A quiz question probing understanding of a previously taught concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "A specific, practical question that requires understanding, not memorization",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// EvaluationSchema defines the JSON schema for answer evaluation.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Judgment of a student's quiz answer with constructive feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{
				"type":        "boolean",
				"description": "Whether the answer demonstrates understanding of the concept",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Specific, constructive feedback for the student",
			},
		},
		"required":             []any{"is_correct", "feedback"},
		"additionalProperties": false,
	},
}
