package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultTogetherBaseURL = "https://api.together.xyz/v1"

// TogetherProvider implements Provider against the Together completions
// endpoint. Unlike the chat providers, Together is driven in raw-completion
// style: the system instruction is folded into the prompt text and nucleus
// sampling (TopP) is honored. The endpoint is OpenAI-compatible, so the
// OpenAI SDK's completion API is reused with an overridden base URL.
type TogetherProvider struct {
	client *openai.Client
	model  string
}

// NewTogetherProvider creates a provider targeting the Together API.
func NewTogetherProvider(cfg TogetherConfig) (*TogetherProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("together API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = defaultTogetherBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &TogetherProvider{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

func (p *TogetherProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	compReq := openai.CompletionRequest{
		Model:       p.model,
		Prompt:      buildTogetherPrompt(req),
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.TopP > 0 {
		compReq.TopP = float32(req.TopP)
	}

	resp, err := p.client.CreateCompletion(ctx, compReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in Together response"),
		}
	}

	text := strings.TrimSpace(resp.Choices[0].Text)
	if text == "" {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("empty completion text in Together response"),
		}
	}
	content := json.RawMessage(text)

	// The completions endpoint has no structured-output mode; when a schema
	// is requested, validate the raw text after the fact.
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: mapTogetherFinishReason(resp.Choices[0].FinishReason),
	}, nil
}

func (p *TogetherProvider) ModelID() string {
	return p.model
}

// buildTogetherPrompt flattens system + messages into one prompt string.
func buildTogetherPrompt(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func mapTogetherFinishReason(reason string) string {
	switch reason {
	case "length":
		return "max_tokens"
	default:
		return "end"
	}
}
