package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Provider is the capability the pipeline stages depend on instead of a
// concrete vendor SDK. One implementation exists per backend (OpenAI,
// Anthropic, Gemini, OpenRouter, Together, mock); stages never see which
// one they are talking to.
type Provider interface {
	// Generate sends a single-turn request to the model and returns its
	// completion. When the request carries a Schema, the provider uses its
	// native structured-output mechanism and the response Content is the
	// validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured for.
	ModelID() string
}

// Request describes one model call.
type Request struct {
	// System sets the model's role for this call (e.g. "you are an
	// investigator"). Empty means no system message.
	System string

	// Messages is the conversation. Every pipeline stage sends exactly one
	// user message, but the type allows history for future use.
	Messages []Message

	// Schema, when set, constrains the response to JSON conforming to it.
	// When nil the response Content is the raw completion text.
	Schema *Schema

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// Temperature controls sampling randomness, 0.0 - 2.0.
	Temperature float64

	// TopP is the nucleus sampling parameter. Only honored by
	// completion-style providers (Together); zero means provider default.
	TopP float64
}

// Message is a single conversation message.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the response must conform to.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name for
	// OpenAI). Kebab-case, e.g. "question-list".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

// Response holds the model's output.
type Response struct {
	// Content is the completion. Validated JSON when the request carried a
	// Schema, raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this call.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as a plain string. Structured responses
// come back as raw JSON; text responses come back verbatim.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}
