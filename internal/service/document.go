// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docqa/docqa/internal/cache"
	"github.com/docqa/docqa/internal/document"
	"github.com/docqa/docqa/internal/metrics"
	"github.com/docqa/docqa/internal/model"
	"github.com/docqa/docqa/internal/repository"
	"github.com/docqa/docqa/internal/vectorstore"
)

// Service errors.
var (
	ErrInvalidDocumentURL = errors.New("invalid document URL")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrRecentlyFailed     = errors.New("document recently failed processing")
)

const maxDocumentURLLength = 2048

// Embedder turns chunk texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentService handles document ingestion: fetch, extract, split, embed
// and cache. Processed chunks live in Redis, document metadata in Postgres.
type DocumentService struct {
	repo     *repository.Repository
	cache    *cache.Cache
	fetcher  *document.Fetcher
	splitter *document.Splitter
	embedder Embedder
	indexes  *vectorstore.Cache
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	repo *repository.Repository,
	c *cache.Cache,
	fetcher *document.Fetcher,
	splitter *document.Splitter,
	embedder Embedder,
	indexes *vectorstore.Cache,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *DocumentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DocumentService{
		repo:     repo,
		cache:    c,
		fetcher:  fetcher,
		splitter: splitter,
		embedder: embedder,
		indexes:  indexes,
		metrics:  recorder,
		logger:   logger.With("component", "service.document"),
	}
}

// Ingest returns the processed chunks for a document URL, fetching and
// embedding it on a cache miss. A URL that failed recently is rejected
// without re-downloading until the negative cache entry expires.
func (s *DocumentService) Ingest(ctx context.Context, docURL string) (*cache.CachedDocument, error) {
	if err := validateDocumentURL(docURL); err != nil {
		return nil, err
	}
	urlHash := model.HashDocumentURL(docURL)

	failed, err := s.cache.IsNegativelyCached(ctx, urlHash)
	if err != nil {
		s.logger.Warn("negative cache check failed", "error", err)
	} else if failed {
		return nil, ErrRecentlyFailed
	}

	cached, err := s.cache.GetDocument(ctx, urlHash)
	if err == nil {
		s.metrics.IncChunkCacheHit()
		s.logger.Debug("document served from chunk cache", "url_hash", urlHash)
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("chunk cache read failed", "url_hash", urlHash, "error", err)
	}
	s.metrics.IncChunkCacheMiss()

	started := time.Now()
	cached, err = s.process(ctx, docURL)
	if err != nil {
		s.metrics.IncDocumentIngested(metrics.StatusFailed)
		if isPermanentProcessError(err) {
			if nerr := s.cache.SetNegativeCache(ctx, urlHash, err.Error()); nerr != nil {
				s.logger.Warn("failed to set negative cache", "url_hash", urlHash, "error", nerr)
			}
		}
		return nil, err
	}
	elapsed := time.Since(started)
	s.metrics.IncDocumentIngested(metrics.StatusSuccess)
	s.metrics.ObserveIngestDuration(elapsed)

	if err := s.cache.SetDocument(ctx, urlHash, cached); err != nil {
		s.logger.Warn("failed to cache document chunks", "url_hash", urlHash, "error", err)
	}

	doc := &model.Document{
		ID:         ulid.Make().String(),
		URLHash:    urlHash,
		URL:        docURL,
		Type:       cached.Type,
		Pages:      cached.Pages,
		ChunkCount: len(cached.Chunks),
		SizeBytes:  cached.SizeBytes,
		FetchedAt:  cached.FetchedAt,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.repo.UpsertDocument(ctx, doc); err != nil {
		s.logger.Warn("failed to persist document metadata", "url_hash", urlHash, "error", err)
	}

	s.logger.Info("document ingested",
		"url_hash", urlHash,
		"doc_type", cached.Type,
		"pages", cached.Pages,
		"chunks", len(cached.Chunks),
		"size_bytes", cached.SizeBytes,
		"duration_ms", elapsed.Milliseconds(),
	)
	return cached, nil
}

// process downloads, extracts, splits and embeds one document.
func (s *DocumentService) process(ctx context.Context, docURL string) (*cache.CachedDocument, error) {
	fetched, err := s.fetcher.Fetch(ctx, docURL)
	if err != nil {
		return nil, err
	}

	var pages []document.PageText
	switch fetched.Type {
	case model.DocumentTypePDF:
		pages, err = document.ExtractPDF(fetched.Data)
	case model.DocumentTypeDocx:
		var text string
		text, err = document.ExtractDocx(fetched.Data)
		if err == nil {
			pages = []document.PageText{{Page: 1, Text: text}}
		}
	default:
		return nil, document.ErrUnsupportedType
	}
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if len(pages) == 0 {
		return nil, document.ErrEmptyDocument
	}

	// Split page by page so every chunk keeps its page number.
	chunks := make([]model.Chunk, 0, len(pages))
	for _, page := range pages {
		for _, piece := range s.splitter.Split(page.Text) {
			chunks = append(chunks, model.Chunk{Text: piece, Page: page.Page})
		}
	}
	if len(chunks) == 0 {
		return nil, document.ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	return &cache.CachedDocument{
		URL:       docURL,
		Type:      fetched.Type,
		Pages:     len(pages),
		SizeBytes: int64(len(fetched.Data)),
		FetchedAt: time.Now().UTC(),
		Chunks:    chunks,
	}, nil
}

// GetDocument returns document metadata by ID.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns the most recently ingested documents.
func (s *DocumentService) ListDocuments(ctx context.Context, limit int) ([]*model.Document, error) {
	return s.repo.ListDocuments(ctx, limit)
}

// DeleteDocument removes a document record and evicts every cache tier.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.repo.DeleteDocument(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	s.indexes.Delete(doc.URLHash)
	if err := s.cache.DeleteDocument(ctx, doc.URLHash); err != nil {
		s.logger.Warn("failed to evict chunk cache", "url_hash", doc.URLHash, "error", err)
	}

	s.logger.Info("document deleted", "document_id", doc.ID, "url_hash", doc.URLHash)
	return nil
}

// PreWarm ingests a document in the background so the first request against
// it does not pay the processing cost. Failures are logged, never fatal.
func (s *DocumentService) PreWarm(ctx context.Context, docURL string) {
	started := time.Now()
	if _, err := s.Ingest(ctx, docURL); err != nil {
		s.logger.Warn("pre-warm failed",
			"url_hash", model.HashDocumentURL(docURL),
			"error", err,
		)
		return
	}
	s.logger.Info("pre-warm complete",
		"url_hash", model.HashDocumentURL(docURL),
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

// validateDocumentURL accepts absolute http(s) URLs only.
func validateDocumentURL(docURL string) error {
	if docURL == "" || len(docURL) > maxDocumentURLLength {
		return ErrInvalidDocumentURL
	}
	parsed, err := url.Parse(docURL)
	if err != nil {
		return ErrInvalidDocumentURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidDocumentURL
	}
	if parsed.Host == "" {
		return ErrInvalidDocumentURL
	}
	return nil
}

// isPermanentProcessError reports whether retrying the same URL soon would
// fail again, which makes the failure worth negative-caching.
func isPermanentProcessError(err error) bool {
	return errors.Is(err, document.ErrUnsupportedType) ||
		errors.Is(err, document.ErrTooLarge) ||
		errors.Is(err, document.ErrEmptyDocument) ||
		errors.Is(err, document.ErrFetchFailed)
}
