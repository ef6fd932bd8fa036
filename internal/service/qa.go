package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docqa/docqa/internal/history"
	"github.com/docqa/docqa/internal/metrics"
	"github.com/docqa/docqa/internal/model"
	"github.com/docqa/docqa/internal/qa"
	"github.com/docqa/docqa/internal/repository"
	"github.com/docqa/docqa/internal/vectorstore"
)

// QA errors.
var (
	ErrNoQuestions      = errors.New("at least one question is required")
	ErrTooManyQuestions = errors.New("too many questions in one request")
	ErrEmptyQuestion    = errors.New("questions must not be empty")
	ErrQuestionTooLong  = errors.New("question exceeds length limit")
)

const maxQuestionLength = 2000

// QAService answers question batches against ingested documents.
type QAService struct {
	docs         *DocumentService
	indexes      *vectorstore.Cache
	engine       *qa.Engine
	repo         *repository.Repository
	publisher    *history.Publisher
	maxQuestions int
	metrics      metrics.Recorder
	logger       *slog.Logger
}

// NewQAService creates a QAService. maxQuestions caps questions per request.
func NewQAService(
	docs *DocumentService,
	indexes *vectorstore.Cache,
	engine *qa.Engine,
	repo *repository.Repository,
	publisher *history.Publisher,
	maxQuestions int,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *QAService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &QAService{
		docs:         docs,
		indexes:      indexes,
		engine:       engine,
		repo:         repo,
		publisher:    publisher,
		maxQuestions: maxQuestions,
		metrics:      recorder,
		logger:       logger.With("component", "service.qa"),
	}
}

// RunResult is the outcome of one QA request.
type RunResult struct {
	Answers  []string
	CacheHit bool
}

// Run answers every question against the document at docURL, in order.
// The document is ingested on first sight and its index cached for reuse.
func (s *QAService) Run(ctx context.Context, docURL string, questions []string) (*RunResult, error) {
	if err := s.validateQuestions(questions); err != nil {
		return nil, err
	}
	if err := validateDocumentURL(docURL); err != nil {
		return nil, err
	}
	urlHash := model.HashDocumentURL(docURL)

	index, cacheHit, err := s.indexes.GetOrBuild(ctx, urlHash, func(ctx context.Context) (*vectorstore.Index, error) {
		cached, err := s.docs.Ingest(ctx, docURL)
		if err != nil {
			return nil, err
		}
		return vectorstore.NewIndex(cached.Chunks)
	})
	if err != nil {
		return nil, fmt.Errorf("build document index: %w", err)
	}
	if cacheHit {
		s.metrics.IncIndexCacheHit()
	} else {
		s.metrics.IncIndexCacheMiss()
	}

	answers, err := s.engine.AnswerAll(ctx, index, questions)
	if err != nil {
		return nil, err
	}

	s.recordHistory(urlHash, cacheHit, answers)

	if err := s.repo.TouchDocumentAsked(ctx, urlHash, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last_asked_at", "url_hash", urlHash, "error", err)
	}

	texts := make([]string, len(answers))
	for i, a := range answers {
		texts[i] = a.Text
	}
	s.logger.Info("qa run complete",
		"url_hash", urlHash,
		"questions", len(questions),
		"index_cache_hit", cacheHit,
	)
	return &RunResult{Answers: texts, CacheHit: cacheHit}, nil
}

// ListQueries returns recent query history, optionally filtered by document URL.
func (s *QAService) ListQueries(ctx context.Context, docURL string, limit int) ([]*model.QueryRecord, error) {
	urlHash := ""
	if docURL != "" {
		if err := validateDocumentURL(docURL); err != nil {
			return nil, err
		}
		urlHash = model.HashDocumentURL(docURL)
	}
	return s.repo.ListQueries(ctx, urlHash, limit)
}

// recordHistory publishes one query event per answer, fire-and-forget.
func (s *QAService) recordHistory(urlHash string, cacheHit bool, answers []qa.Answer) {
	if s.publisher == nil {
		return
	}
	now := time.Now().UTC()
	for _, a := range answers {
		s.publisher.PublishAsync(history.QueryEventPayload{
			URLHash:    urlHash,
			Question:   history.TruncateText(a.Question, 2000),
			Answer:     history.TruncateText(a.Text, 8000),
			Failed:     a.Failed,
			CacheHit:   cacheHit,
			DurationMs: a.DurationMs,
			AskedAt:    now.UnixMilli(),
		})
	}
}

func (s *QAService) validateQuestions(questions []string) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	if s.maxQuestions > 0 && len(questions) > s.maxQuestions {
		return ErrTooManyQuestions
	}
	for _, q := range questions {
		if q == "" {
			return ErrEmptyQuestion
		}
		if len(q) > maxQuestionLength {
			return ErrQuestionTooLong
		}
	}
	return nil
}
