package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docqa/docqa/internal/model"
)

// Cache key prefixes and TTLs.
const (
	docKeyPrefix      = "doc:"
	negCacheKeySuffix = ":neg"

	// DefaultDocumentTTL is the TTL for cached document chunks. Signed
	// document URLs expire, so there is no point keeping entries forever.
	DefaultDocumentTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries. A URL that
	// failed to download or parse is not retried until it expires.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// CachedDocument is the serialized form of a processed document: its chunks
// together with their embedding vectors. Restoring it lets a fresh process
// rebuild the in-memory index without re-fetching or re-embedding.
type CachedDocument struct {
	URL       string             `json:"url"`
	Type      model.DocumentType `json:"type"`
	Pages     int                `json:"pages"`
	SizeBytes int64              `json:"size_bytes"`
	FetchedAt time.Time          `json:"fetched_at"`
	Chunks    []model.Chunk      `json:"chunks"`
}

// GetDocument retrieves cached document chunks by URL hash.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetDocument(ctx context.Context, urlHash string) (*CachedDocument, error) {
	key := docKeyPrefix + urlHash

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached CachedDocument
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry, drop it and report a miss
		c.client.Del(ctx, key)
		return nil, ErrCacheMiss
	}

	return &cached, nil
}

// SetDocument stores processed document chunks.
func (c *Cache) SetDocument(ctx context.Context, urlHash string, doc *CachedDocument) error {
	key := docKeyPrefix + urlHash

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cached document: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, DefaultDocumentTTL)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache document: %w", err)
	}

	return nil
}

// DeleteDocument removes a document from cache.
func (c *Cache) DeleteDocument(ctx context.Context, urlHash string) error {
	key := docKeyPrefix + urlHash

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete document from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a URL hash is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, urlHash string) (bool, error) {
	key := docKeyPrefix + urlHash + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a URL hash as failed to process.
// The reason is stored for troubleshooting.
func (c *Cache) SetNegativeCache(ctx context.Context, urlHash, reason string) error {
	key := docKeyPrefix + urlHash + negCacheKeySuffix

	if err := c.client.SetEx(ctx, key, reason, NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
