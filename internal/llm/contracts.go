package llm

import (
	"context"

	"github.com/joseph-ayodele/screenchat/internal/result"
)

// ChatClient is Stage 2: prompt -> completion text.
type ChatClient interface {
	Ask(ctx context.Context, prompt string) result.Result
}

const RoleUser = "user"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat/completions request body.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// ChatResponse keeps only the part of the response we surface.
type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// UserPrompt builds the single-turn request for prompt.
func UserPrompt(model, prompt string) ChatRequest {
	return ChatRequest{
		Model:    model,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}
