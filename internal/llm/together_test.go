package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestTogetherProvider(t *testing.T, handler http.HandlerFunc) *TogetherProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"

	return &TogetherProvider{
		client: openai.NewClientWithConfig(config),
		model:  "Qwen/Qwen2.5-7B-Instruct-Turbo",
	}
}

func TestTogetherProvider_HappyPath(t *testing.T) {
	var gotBody struct {
		Prompt      string  `json:"prompt"`
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"top_p"`
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-test",
			"object": "text_completion",
			"model":  "Qwen/Qwen2.5-7B-Instruct-Turbo",
			"choices": []map[string]any{
				{"index": 0, "text": "  A cleaned answer.  ", "finish_reason": "stop"},
			},
			"usage": map[string]any{
				"prompt_tokens":     12,
				"completion_tokens": 6,
				"total_tokens":      18,
			},
		})
	}

	p := newTestTogetherProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:      "You are an assistant.",
		Messages:    []Message{{Role: RoleUser, Content: "Clean this."}},
		MaxTokens:   2000,
		Temperature: 0.7,
		TopP:        0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "A cleaned answer." {
		t.Fatalf("expected trimmed completion, got %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 18 {
		t.Fatalf("expected 18 total tokens, got %d", resp.Usage.TotalTokens)
	}

	// The system instruction is folded into the prompt for completion APIs.
	if !strings.HasPrefix(gotBody.Prompt, "You are an assistant.") {
		t.Fatalf("expected system prefix in prompt, got %q", gotBody.Prompt)
	}
	if !strings.Contains(gotBody.Prompt, "Clean this.") {
		t.Fatalf("expected user content in prompt, got %q", gotBody.Prompt)
	}
	if gotBody.TopP != 0.7 {
		t.Fatalf("expected top_p 0.7, got %v", gotBody.TopP)
	}
}

func TestTogetherProvider_NoChoices(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-test",
			"object":  "text_completion",
			"model":   "Qwen/Qwen2.5-7B-Instruct-Turbo",
			"choices": []map[string]any{},
		})
	}

	p := newTestTogetherProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestTogetherProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "server_error", "message": "overloaded"},
		})
	}

	p := newTestTogetherProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestBuildTogetherPrompt_NoSystem(t *testing.T) {
	got := buildTogetherPrompt(Request{
		Messages: []Message{{Role: RoleUser, Content: "just this"}},
	})
	if got != "just this" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}
