// Package gemini wraps the Google Generative AI SDK behind the narrow
// surface the application needs: batch embeddings and grounded generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// maxEmbedBatch is the API limit on texts per batch embedding request.
const maxEmbedBatch = 100

var (
	// ErrNoAnswer indicates the model returned no usable candidate.
	ErrNoAnswer = errors.New("model returned no answer")
)

// Config holds Gemini client settings.
type Config struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	// RequestsPerSecond caps outbound API calls. 0 disables limiting.
	RequestsPerSecond int
	Temperature       float32
}

// Client is a rate-limited Gemini API client.
type Client struct {
	client    *genai.Client
	embedding *genai.EmbeddingModel
	chat      *genai.GenerativeModel
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a Client and verifies the configuration is usable.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	chat := client.GenerativeModel(cfg.ChatModel)
	chat.SetTemperature(cfg.Temperature)

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond)
	}

	return &Client{
		client:    client,
		embedding: client.EmbeddingModel(cfg.EmbeddingModel),
		chat:      chat,
		limiter:   limiter,
		logger:    logger.With("component", "gemini"),
	}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// wait blocks until the rate limiter admits another request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// EmbedTexts embeds a slice of texts, preserving order.
// Texts are sent in batches of at most 100 per API request.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := start + maxEmbedBatch
		if end > len(texts) {
			end = len(texts)
		}

		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		batch := c.embedding.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}

		resp, err := c.embedding.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch embed contents: %w", err)
		}

		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("batch embed returned %d vectors for %d texts", len(resp.Embeddings), end-start)
		}

		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.embedding.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp.Embedding == nil {
		return nil, errors.New("embed content returned no embedding")
	}

	return resp.Embedding.Values, nil
}

// Generate produces a completion for the given prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.chat.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrNoAnswer
	}

	return text, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String())
}
