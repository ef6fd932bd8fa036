package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/docqa/docqa/internal/model"
)

// Common errors for document repository operations.
var (
	ErrDocumentNotFound = errors.New("document not found")
)

// UpsertDocument inserts a document or refreshes its metadata if the URL hash
// already exists. Returns the stored row (the original ID wins on conflict).
func (r *Repository) UpsertDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	query := `
		INSERT INTO documents (id, url_hash, url, doc_type, pages, chunk_count, size_bytes, fetched_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url_hash) DO UPDATE SET
			pages = EXCLUDED.pages,
			chunk_count = EXCLUDED.chunk_count,
			size_bytes = EXCLUDED.size_bytes,
			fetched_at = EXCLUDED.fetched_at
		RETURNING id, url_hash, url, doc_type, pages, chunk_count, size_bytes, fetched_at, created_at, last_asked_at
	`

	return r.scanDocument(r.pool.QueryRow(ctx, query,
		doc.ID,
		doc.URLHash,
		doc.URL,
		string(doc.Type),
		doc.Pages,
		doc.ChunkCount,
		doc.SizeBytes,
		doc.FetchedAt,
		doc.CreatedAt,
	))
}

// GetDocumentByID retrieves a document by its ID.
func (r *Repository) GetDocumentByID(ctx context.Context, id string) (*model.Document, error) {
	query := `
		SELECT id, url_hash, url, doc_type, pages, chunk_count, size_bytes, fetched_at, created_at, last_asked_at
		FROM documents
		WHERE id = $1
	`

	return r.scanDocument(r.pool.QueryRow(ctx, query, id))
}

// GetDocumentByURLHash retrieves a document by its URL hash.
func (r *Repository) GetDocumentByURLHash(ctx context.Context, urlHash string) (*model.Document, error) {
	query := `
		SELECT id, url_hash, url, doc_type, pages, chunk_count, size_bytes, fetched_at, created_at, last_asked_at
		FROM documents
		WHERE url_hash = $1
	`

	return r.scanDocument(r.pool.QueryRow(ctx, query, urlHash))
}

// ListDocuments retrieves documents ordered by creation time, newest first.
func (r *Repository) ListDocuments(ctx context.Context, limit int) ([]*model.Document, error) {
	query := `
		SELECT id, url_hash, url, doc_type, pages, chunk_count, size_bytes, fetched_at, created_at, last_asked_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := r.scanDocumentFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document from the registry.
func (r *Repository) DeleteDocument(ctx context.Context, id string) (*model.Document, error) {
	query := `
		DELETE FROM documents
		WHERE id = $1
		RETURNING id, url_hash, url, doc_type, pages, chunk_count, size_bytes, fetched_at, created_at, last_asked_at
	`

	return r.scanDocument(r.pool.QueryRow(ctx, query, id))
}

// TouchDocumentAsked updates last_asked_at for a document by URL hash.
// Fire-and-forget from the ask path.
func (r *Repository) TouchDocumentAsked(ctx context.Context, urlHash string, at time.Time) error {
	query := `
		UPDATE documents
		SET last_asked_at = $2
		WHERE url_hash = $1
	`

	if _, err := r.pool.Exec(ctx, query, urlHash, at); err != nil {
		return fmt.Errorf("failed to touch document: %w", err)
	}

	return nil
}

// scanDocument scans a single row into a Document model.
func (r *Repository) scanDocument(row pgx.Row) (*model.Document, error) {
	var doc model.Document
	var docType string

	err := row.Scan(
		&doc.ID,
		&doc.URLHash,
		&doc.URL,
		&docType,
		&doc.Pages,
		&doc.ChunkCount,
		&doc.SizeBytes,
		&doc.FetchedAt,
		&doc.CreatedAt,
		&doc.LastAskedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.Type = model.DocumentType(docType)
	return &doc, nil
}

// scanDocumentFromRows scans a row from pgx.Rows into a Document model.
func (r *Repository) scanDocumentFromRows(rows pgx.Rows) (*model.Document, error) {
	var doc model.Document
	var docType string

	err := rows.Scan(
		&doc.ID,
		&doc.URLHash,
		&doc.URL,
		&docType,
		&doc.Pages,
		&doc.ChunkCount,
		&doc.SizeBytes,
		&doc.FetchedAt,
		&doc.CreatedAt,
		&doc.LastAskedAt,
	)

	if err != nil {
		return nil, err
	}

	doc.Type = model.DocumentType(docType)
	return &doc, nil
}
