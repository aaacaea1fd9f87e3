package llm

// ChatCompletionSchema is the minimum shape we accept from a chat/completions endpoint:
// at least one choice whose message carries string content.
var ChatCompletionSchema = map[string]any{
	"type":     "object",
	"required": []string{"choices"},
	"properties": map[string]any{
		"choices": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"message"},
				"properties": map[string]any{
					"message": map[string]any{
						"type":     "object",
						"required": []string{"content"},
						"properties": map[string]any{
							"role":    map[string]any{"type": "string"},
							"content": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
}
