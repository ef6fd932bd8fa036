// Package model defines domain entities for the application.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DocumentType identifies the source format of an ingested document.
type DocumentType string

// Supported document types.
const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeDocx DocumentType = "docx"
)

// IsValid reports whether the document type is supported.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypePDF || t == DocumentTypeDocx
}

// Document represents an ingested document in the registry.
type Document struct {
	ID          string       `json:"id"`
	URLHash     string       `json:"url_hash"`
	URL         string       `json:"url"`
	Type        DocumentType `json:"type"`
	Pages       int          `json:"pages"`
	ChunkCount  int          `json:"chunk_count"`
	SizeBytes   int64        `json:"size_bytes"`
	FetchedAt   time.Time    `json:"fetched_at"`
	CreatedAt   time.Time    `json:"created_at"`
	LastAskedAt *time.Time   `json:"last_asked_at,omitempty"`
}

// Chunk is a contiguous slice of document text with its embedding vector.
type Chunk struct {
	Text   string    `json:"text"`
	Page   int       `json:"page,omitempty"`
	Vector []float32 `json:"vector,omitempty"`
}

// HashDocumentURL derives the stable cache/registry key for a document URL.
// The full URL (including query string) participates in the hash: two signed
// URLs for the same blob are treated as distinct documents.
func HashDocumentURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
