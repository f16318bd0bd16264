// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai wraps the external AI provider behind small interfaces the
// form processor consumes: text cleanup, summarization, and embedding
// generation. The production implementation talks to OpenAI through
// langchaingo; tests supply mocks.
package ai

import (
	"context"
	"math"
	"time"
)

// Input truncation limits, in bytes, matching the provider's token budgets.
const (
	// CleanupInputLimit bounds the raw text sent to the cleanup call.
	CleanupInputLimit = 8000

	// SummaryExcerptLimit bounds the cleaned-text excerpt in the
	// summarization prompt.
	SummaryExcerptLimit = 3000

	// EmbedInputLimit bounds text sent to the embedding call.
	EmbedInputLimit = 30000
)

// Cleaner normalizes noisy text extracted from a form PDF.
type Cleaner interface {
	CleanText(ctx context.Context, raw string) (string, error)
}

// SummaryRequest carries the form context for one summarization call.
type SummaryRequest struct {
	FormName      string
	Title         string
	URL           string
	FieldsContext string
	CleanedText   string
}

// Summarizer produces a veteran-facing overview of one form.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Embedder generates a vector embedding for a text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Provider bundles the three AI services the pipeline needs.
type Provider interface {
	Cleaner
	Summarizer
	Embedder
}

// backoffBase controls the base duration for exponential backoff between
// retry attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// withRetry calls fn with bounded exponential backoff: attempt n waits
// 2^(n-1) * backoffBase before retrying. The context aborts waits.
func withRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return zero, lastErr
}

// Truncate bounds s to at most limit bytes, cutting at a byte boundary.
// The provider tokenizes on its side; a byte cap is enough to stay clear
// of request-size limits.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
