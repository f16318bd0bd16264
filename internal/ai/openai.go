// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/pdiddy/forms-engine/pkg/types"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-small"
)

// Client implements Provider against an OpenAI-compatible API.
type Client struct {
	llm        *openai.LLM
	embedder   embeddings.Embedder
	maxRetries int
}

// NewClient builds an OpenAI-backed provider from cfg. An API key is
// required; model names fall back to defaults when unset.
func NewClient(cfg types.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key: set OPENAI_API_KEY or .secrets/openai-api-key")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
		openai.WithEmbeddingModel(embeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Client{
		llm:        llm,
		embedder:   embedder,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// CleanText normalizes raw extracted text through the cleanup prompt.
func (c *Client) CleanText(ctx context.Context, raw string) (string, error) {
	prompt, err := renderCleanupPrompt(raw)
	if err != nil {
		return "", fmt.Errorf("rendering cleanup prompt: %w", err)
	}

	return withRetry(ctx, c.maxRetries, func() (string, error) {
		return c.chat(ctx, cleanupSystemPrompt, prompt, llms.WithTemperature(0.1), llms.WithMaxTokens(2000))
	})
}

// Summarize produces the veteran-facing overview for one form.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	prompt, err := renderSummaryPrompt(req)
	if err != nil {
		return "", fmt.Errorf("rendering summary prompt: %w", err)
	}

	return withRetry(ctx, c.maxRetries, func() (string, error) {
		return c.chat(ctx, summarySystemPrompt, prompt, llms.WithTemperature(0.3), llms.WithMaxTokens(500))
	})
}

// EmbedText returns a vector embedding for text, truncated to the
// provider's input limit.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	input := Truncate(text, EmbedInputLimit)
	return withRetry(ctx, c.maxRetries, func() ([]float32, error) {
		return c.embedder.EmbedQuery(ctx, input)
	})
}

func (c *Client) chat(ctx context.Context, system, user string, opts ...llms.CallOption) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}

	resp, err := c.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
