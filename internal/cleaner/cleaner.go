// Package cleaner restructures raw extracted page text into a readable
// document using the model provider. It degrades instead of failing: any
// provider error returns the input unchanged.
package cleaner

import (
	"context"
	"fmt"
	"strings"

	"github.com/satriadi/qaforge/internal/llm"
)

const systemPrompt = "You are an assistant that cleans and restructures raw text so it is easy for a human to read."

// Config holds cleaner settings.
type Config struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultConfig returns the default cleaner settings.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.7,
		TopP:        0.7,
		MaxTokens:   2000,
	}
}

// Cleaner is the normalization stage.
type Cleaner struct {
	provider llm.Provider
	config   Config
}

// New creates a Cleaner with the given provider and config.
func New(provider llm.Provider, cfg Config) *Cleaner {
	return &Cleaner{provider: provider, config: cfg}
}

// Clean returns a restructured version of text. On any provider failure or
// empty response it returns the input unchanged and reports the error; the
// result is never empty unless the input was empty.
func (c *Cleaner) Clean(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeClean)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(text)},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return text, fmt.Errorf("clean text: %w", err)
	}

	cleaned := strings.TrimSpace(resp.Text())
	if cleaned == "" {
		return text, fmt.Errorf("clean text: empty response")
	}

	return cleaned, nil
}

func buildPrompt(text string) string {
	return "Clean up the following text and make it more structured:\n\n" + text
}
