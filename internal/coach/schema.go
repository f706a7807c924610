package coach

import "github.com/abhisek/focusflow/internal/llm"

// NoteSchema is the structured output a coaching note must match.
var NoteSchema = &llm.Schema{
	Name:        "coaching-note",
	Description: "A short, personal coaching note about a user's recent focus sessions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One sentence capturing the period (6-14 words)",
			},
			"observations": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 factual observations grounded in the numbers",
			},
			"suggestions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 concrete next steps",
			},
			"encouragement": map[string]any{
				"type":        "string",
				"description": "One warm closing sentence",
			},
		},
		"required":             []any{"headline", "observations", "suggestions", "encouragement"},
		"additionalProperties": false,
	},
}
