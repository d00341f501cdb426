// Package questiongen produces a list of questions about a document using
// the model provider. On total failure it synthesizes placeholder questions
// so the caller always gets a usable list.
package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/satriadi/qaforge/internal/llm"
)

// Config holds generator settings.
type Config struct {
	Profile     Profile
	Temperature float64
	TopP        float64
	MaxTokens   int

	// Structured requests a schema-constrained JSON response instead of
	// parsing the completion line by line. Falls back to line parsing when
	// the response is not valid JSON.
	Structured bool
}

// DefaultConfig returns the default generator settings.
func DefaultConfig() Config {
	return Config{
		Profile:     ProfileGeneral,
		Temperature: 0.7,
		TopP:        0.7,
		MaxTokens:   1000,
	}
}

// Generator is the question-generation stage.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// Generate returns up to n questions about document, in model output order.
//
// On partial success (the model returned fewer non-empty lines than n) the
// shorter list is returned as-is, without padding. On total failure (provider
// error or empty content) the result is exactly n placeholder questions,
// "default question 1" through "default question n". The second error
// return carries the failure for reporting; the list is always usable.
func (g *Generator) Generate(ctx context.Context, document string, n int) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt(g.config.Profile),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(document, n, g.config.Profile)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		TopP:        g.config.TopP,
	}
	if g.config.Structured {
		req.Schema = QuestionListSchema
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return Placeholders(n), fmt.Errorf("generate questions: %w", err)
	}

	questions := parseQuestions(resp.Text(), n)
	if len(questions) == 0 {
		return Placeholders(n), fmt.Errorf("generate questions: no usable content")
	}

	return questions, nil
}

// parseQuestions extracts up to n questions from the model output. A JSON
// object matching QuestionListSchema is honored first; anything else is
// split into non-empty trimmed lines.
func parseQuestions(content string, n int) []string {
	var structured struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &structured); err == nil && len(structured.Questions) > 0 {
		return truncate(trimNonEmpty(structured.Questions), n)
	}

	return truncate(trimNonEmpty(strings.Split(content, "\n")), n)
}

// Placeholders returns exactly n default question strings, 1-indexed.
func Placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("default question %d", i+1)
	}
	return out
}

func trimNonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
