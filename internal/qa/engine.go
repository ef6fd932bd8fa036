// Package qa turns a vector index and a question list into answers. Questions
// are processed in fixed-size batches, concurrently within each batch.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docqa/docqa/internal/metrics"
	"github.com/docqa/docqa/internal/vectorstore"
)

// ErrEmptyAnswer indicates the model returned no usable text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// Embedder produces a query embedding for retrieval.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces the final answer text from a filled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answer is the outcome for a single question. Failed answers still carry
// human-readable text so the response array lines up with the question array.
type Answer struct {
	Question   string
	Text       string
	Failed     bool
	DurationMs int64
}

// Engine answers questions against a prebuilt index.
type Engine struct {
	embedder  Embedder
	generator Generator
	topK      int
	batchSize int
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// New creates an engine. topK is how many chunks are retrieved per question,
// batchSize caps in-flight questions.
func New(embedder Embedder, generator Generator, topK, batchSize int, recorder metrics.Recorder, logger *slog.Logger) *Engine {
	if topK < 1 {
		topK = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Engine{
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		batchSize: batchSize,
		recorder:  recorder,
		logger:    logger,
	}
}

// AnswerAll answers every question in order. Individual question failures do
// not abort the run; the failed slot gets an error message as its answer.
// Only context cancellation stops processing early.
func (e *Engine) AnswerAll(ctx context.Context, index *vectorstore.Index, questions []string) ([]Answer, error) {
	answers := make([]Answer, len(questions))

	for start := 0; start < len(questions); start += e.batchSize {
		end := start + e.batchSize
		if end > len(questions) {
			end = len(questions)
		}
		batch := questions[start:end]

		e.logger.Info("answering question batch",
			"batch_start", start,
			"batch_size", len(batch),
			"total", len(questions),
		)
		e.recorder.ObserveAnswerBatchSize(len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, q := range batch {
			idx := start + i
			question := q
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				answers[idx] = e.answerOne(gctx, index, question)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("answer batch starting at %d: %w", start, err)
		}
	}

	return answers, nil
}

func (e *Engine) answerOne(ctx context.Context, index *vectorstore.Index, question string) Answer {
	started := time.Now()
	text, err := e.resolve(ctx, index, question)
	elapsed := time.Since(started)
	e.recorder.ObserveAnswerDuration(elapsed)

	ans := Answer{
		Question:   question,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		e.logger.Warn("question failed", "error", err)
		e.recorder.IncQuestionAnswered(metrics.StatusFailed)
		ans.Text = fmt.Sprintf("Error processing question: %s", err)
		ans.Failed = true
		return ans
	}
	e.recorder.IncQuestionAnswered(metrics.StatusSuccess)
	ans.Text = text
	return ans
}

func (e *Engine) resolve(ctx context.Context, index *vectorstore.Index, question string) (string, error) {
	vec, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	results, err := index.Search(vec, e.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	prompt := BuildPrompt(question, results)
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
