// Package fetch talks to a reader-style extraction service that renders a
// web page into plain text (r.jina.ai by default). The service takes the
// target URL as a path suffix and a bearer credential.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultReaderBaseURL = "https://r.jina.ai"

// Config holds extraction-service configuration.
type Config struct {
	// APIKey is the reader-service bearer credential.
	APIKey string

	// BaseURL is the reader endpoint. Default: "https://r.jina.ai".
	BaseURL string

	// Timeout bounds one extraction request. Default: 30s.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: defaultReaderBaseURL,
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if k := os.Getenv("QAFORGE_READER_KEY"); k != "" {
		cfg.APIKey = k
	} else if k := os.Getenv("JINA_API_KEY"); k != "" {
		cfg.APIKey = k
	}
	if u := os.Getenv("QAFORGE_READER_URL"); u != "" {
		cfg.BaseURL = u
	}
	return cfg
}

// Validate checks that the credential is present.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("QAFORGE_READER_KEY (or JINA_API_KEY) is required")
	}
	return nil
}

// Client fetches extracted page text from the reader service.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a reader client from config.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultReaderBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Fetch returns the extracted text for the given page URL. The reader
// renders the page server-side; any transport error or non-2xx status is
// returned as an error, which the pipeline treats as a halting fetch failure.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", fmt.Errorf("empty URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return string(body), nil
}
