// Package answerer answers a single question against a document using the
// model provider. It never fails: any provider error yields a fixed
// fallback answer.
package answerer

import (
	"context"
	"fmt"
	"strings"

	"github.com/satriadi/qaforge/internal/llm"
	"github.com/satriadi/qaforge/internal/questiongen"
)

// FallbackAnswer is substituted when the model yields no usable answer.
const FallbackAnswer = "no answer generated"

const generalSystemPrompt = "Answer the question from the provided document, in detail and accurately."

const legalSystemPrompt = `You are a police investigator expert in special criminal law outside the general criminal code, such as consumer protection, financial services, fiduciary, corruption, and environmental statutes. Your task is to give a detailed and accurate answer based on the provided document, referring to the relevant articles and explaining how they apply to the case and which legal elements must be met.`

// Config holds answerer settings.
type Config struct {
	Profile     questiongen.Profile
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultConfig returns the default answerer settings.
func DefaultConfig() Config {
	return Config{
		Profile:     questiongen.ProfileGeneral,
		Temperature: 0.7,
		TopP:        0.7,
		MaxTokens:   2000,
	}
}

// Answerer is the answering stage.
type Answerer struct {
	provider llm.Provider
	config   Config
}

// New creates an Answerer with the given provider and config.
func New(provider llm.Provider, cfg Config) *Answerer {
	return &Answerer{provider: provider, config: cfg}
}

// Answer returns the model's answer to question given document. On provider
// failure or empty content it returns FallbackAnswer and the error for
// reporting; the answer string is always usable.
func (a *Answerer) Answer(ctx context.Context, question, document string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAnswer)

	req := llm.Request{
		System: a.systemPrompt(),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(question, document, a.config.Profile)},
		},
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		TopP:        a.config.TopP,
	}

	resp, err := a.provider.Generate(ctx, req)
	if err != nil {
		return FallbackAnswer, fmt.Errorf("answer question: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return FallbackAnswer, fmt.Errorf("answer question: empty response")
	}

	return answer, nil
}

func (a *Answerer) systemPrompt() string {
	if a.config.Profile == questiongen.ProfileLegal {
		return legalSystemPrompt
	}
	return generalSystemPrompt
}

func buildPrompt(question, document string, profile questiongen.Profile) string {
	var b strings.Builder

	b.WriteString("Based on the following document:\n\n")
	b.WriteString(document)
	b.WriteString("\n\n")

	if profile == questiongen.ProfileLegal {
		b.WriteString("Use the information in the document above to answer the following question in detail and accurately, referring to the relevant articles and the legal elements required:\n\n")
	} else {
		b.WriteString("Answer this question in detail and accurately:\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)

	return b.String()
}
