// Package history provides query event capture and processing. Every answered
// question is published to a Redis stream and persisted asynchronously by a
// background worker.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"github.com/docqa/docqa/internal/metrics"
)

const (
	// StreamKey is the Redis stream for query events.
	StreamKey = "stream:query_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:query_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// QueryEventPayload is the compressed event format for the Redis stream.
type QueryEventPayload struct {
	URLHash    string `json:"dh"`           // document url_hash
	Question   string `json:"q"`            // question (truncated)
	Answer     string `json:"a"`            // answer (truncated)
	Failed     bool   `json:"f,omitempty"`  // answer generation failed
	CacheHit   bool   `json:"ch,omitempty"` // index served from cache
	DurationMs int64  `json:"d"`            // per-question latency
	AskedAt    int64  `json:"t"`            // Unix milliseconds
}

// Publisher enqueues query events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new query event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "history.publisher"),
		metrics: recorder,
	}
}

// Publish adds a query event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event QueryEventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event QueryEventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish query event",
				"url_hash", event.URLHash,
				"error", err,
			)
			p.metrics.IncHistoryEventPublished("dropped")
			return
		}

		p.logger.Debug("query event published",
			"url_hash", event.URLHash,
			"stream_id", streamID,
		)
		p.metrics.IncHistoryEventPublished(metrics.StatusSuccess)
	}()
}

// TruncateText caps free-form text fields before they enter the stream.
// The cut never splits a multi-byte rune, so the result stays valid UTF-8.
func TruncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
