package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// retryClass buckets provider errors by how the retry loop treats them.
type retryClass int

const (
	retryNever retryClass = iota // cancellation or caller misconfiguration
	retryOnce                    // likely deterministic, one second chance
	retryFull                    // transient, spend the whole attempt budget
)

// RetryProvider decorates a Provider with bounded retries. A pipeline run
// issues one call to clean, one to generate questions, and one per question,
// all sequentially, so a stalled retry loop stalls the entire run. Waits are
// therefore capped at MaxWait even when the provider hints a longer pause;
// past the cap it is cheaper to let the stage fall back.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	attempts := r.config.MaxAttempts
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classifyRetry(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			// An empty or malformed completion tends to repeat for the same
			// prompt. Allow a single second chance, then hand the failure to
			// the stage fallback instead of burning the remaining budget.
			if attempts > attempt+2 {
				attempts = attempt + 2
			}
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait(attempt, err)):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// classifyRetry buckets an error for the retry loop.
func classifyRetry(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}

	// A truncated completion means MaxTokens is too low for the prompt;
	// resending the same request truncates again.
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return retryNever
	}

	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		return retryOnce
	}

	// Rate limits, 5xx, and transport errors are transient.
	return retryFull
}

// wait computes the pause before the next attempt: the provider's Retry-After
// hint when present, exponential backoff otherwise, both jittered and capped
// at MaxWait.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	wait := float64(r.config.InitialWait)
	for i := 0; i < attempt; i++ {
		wait *= r.config.Multiplier
	}

	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		wait = float64(rl.RetryAfter)
	}

	if limit := float64(r.config.MaxWait); wait > limit {
		wait = limit
	}

	// Multiplicative jitter in [0.8, 1.2) so repeated calls don't line up
	// with the provider's rate window.
	wait *= 0.8 + 0.4*rand.Float64()

	return time.Duration(wait)
}
