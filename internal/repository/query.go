package repository

import (
	"context"
	"fmt"

	"github.com/docqa/docqa/internal/model"
)

// BulkInsertQueries inserts a batch of query records.
// ON CONFLICT DO NOTHING on event_id makes re-delivered stream messages idempotent.
func (r *Repository) BulkInsertQueries(ctx context.Context, records []*model.QueryRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO queries (id, event_id, url_hash, question, answer, failed, cache_hit, duration_ms, asked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if _, err := tx.Exec(ctx, query,
			rec.ID,
			rec.EventID,
			rec.URLHash,
			rec.Question,
			rec.Answer,
			rec.Failed,
			rec.CacheHit,
			rec.DurationMs,
			rec.AskedAt,
		); err != nil {
			return fmt.Errorf("insert query record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ListQueries retrieves recent query records, newest first.
// An empty urlHash returns records for all documents.
func (r *Repository) ListQueries(ctx context.Context, urlHash string, limit int) ([]*model.QueryRecord, error) {
	query := `
		SELECT id, url_hash, question, answer, failed, cache_hit, duration_ms, asked_at
		FROM queries
		WHERE ($1 = '' OR url_hash = $1)
		ORDER BY asked_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, urlHash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	defer rows.Close()

	var records []*model.QueryRecord
	for rows.Next() {
		var rec model.QueryRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.URLHash,
			&rec.Question,
			&rec.Answer,
			&rec.Failed,
			&rec.CacheHit,
			&rec.DurationMs,
			&rec.AskedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query records: %w", err)
	}

	return records, nil
}
