package questiongen

import "github.com/satriadi/qaforge/internal/llm"

// QuestionListSchema is the structured-output schema used when Structured
// mode is enabled. Providers that support native structured output return a
// JSON object with one "questions" array.
var QuestionListSchema = &llm.Schema{
	Name:        "question-list",
	Description: "A list of questions derived from a document.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "The generated questions, one string each.",
				"items": map[string]any{
					"type": "string",
				},
			},
		},
		"required": []any{"questions"},
	},
}
