package llm

import (
	"context"
	"fmt"
)

// Transcript roles. The remote model only ever sees these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one transcript entry: a user message or an assistant reply.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Provider defines the interface for remote generative-model providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Reply sends one turn (system prompt + history + payload) and returns
	// the assistant's free-text reply
	Reply(ctx context.Context, req ReplyRequest) (*ReplyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ReplyRequest contains the input for one coaching turn.
type ReplyRequest struct {
	// System is the fixed per-deployment instruction string constraining
	// the model to the supplied numeric data
	System string

	// History is the rolling transcript preceding this turn
	History []Turn

	// Payload is the structured plain-text turn content: catalog JSON,
	// inferred-context JSON and the raw user message
	Payload string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReplyResponse contains the model's reply.
type ReplyResponse struct {
	// Text is the assistant reply to append to the transcript
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// RemoteModelError wraps a failed remote model call. It is recovered at the
// session boundary: the transcript still advances with an inline error
// message instead of the turn silently vanishing, and the failure is never
// fatal to the process.
type RemoteModelError struct {
	Provider string
	Err      error
}

func (e *RemoteModelError) Error() string {
	return fmt.Sprintf("remote model call failed (%s): %v", e.Provider, e.Err)
}

func (e *RemoteModelError) Unwrap() error {
	return e.Err
}
