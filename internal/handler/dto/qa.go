// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/docqa/docqa/internal/model"
)

// QARunRequest represents a question answering request. DocURL points at a
// PDF or DOCX file.
type QARunRequest struct {
	DocURL    string   `json:"doc_url"`
	Questions []string `json:"questions"`
}

// QARunResponse carries one answer per question, in request order.
type QARunResponse struct {
	Answers []string `json:"answers"`
}

// IngestDocumentRequest represents a document pre-processing request.
type IngestDocumentRequest struct {
	URL string `json:"url"`
}

// DocumentResponse represents an ingested document in API responses.
type DocumentResponse struct {
	ID          string     `json:"id"`
	URLHash     string     `json:"url_hash"`
	URL         string     `json:"url"`
	Type        string     `json:"type"`
	Pages       int        `json:"pages"`
	ChunkCount  int        `json:"chunk_count"`
	SizeBytes   int64      `json:"size_bytes"`
	FetchedAt   time.Time  `json:"fetched_at"`
	LastAskedAt *time.Time `json:"last_asked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DocumentListResponse represents a list of documents.
type DocumentListResponse struct {
	Data []DocumentResponse `json:"data"`
}

// QueryResponse represents one historical question/answer pair.
type QueryResponse struct {
	ID         string    `json:"id"`
	URLHash    string    `json:"url_hash"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Failed     bool      `json:"failed"`
	CacheHit   bool      `json:"cache_hit"`
	DurationMs int64     `json:"duration_ms"`
	AskedAt    time.Time `json:"asked_at"`
}

// QueryListResponse represents a list of query history records.
type QueryListResponse struct {
	Data []QueryResponse `json:"data"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToDocumentResponse converts a Document model to its DTO.
func ToDocumentResponse(doc *model.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:          doc.ID,
		URLHash:     doc.URLHash,
		URL:         doc.URL,
		Type:        string(doc.Type),
		Pages:       doc.Pages,
		ChunkCount:  doc.ChunkCount,
		SizeBytes:   doc.SizeBytes,
		FetchedAt:   doc.FetchedAt,
		LastAskedAt: doc.LastAskedAt,
		CreatedAt:   doc.CreatedAt,
	}
}

// ToDocumentListResponse converts documents to a list DTO.
func ToDocumentListResponse(docs []*model.Document) *DocumentListResponse {
	responses := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = *ToDocumentResponse(doc)
	}
	return &DocumentListResponse{Data: responses}
}

// ToQueryResponse converts a QueryRecord model to its DTO.
func ToQueryResponse(record *model.QueryRecord) *QueryResponse {
	return &QueryResponse{
		ID:         record.ID,
		URLHash:    record.URLHash,
		Question:   record.Question,
		Answer:     record.Answer,
		Failed:     record.Failed,
		CacheHit:   record.CacheHit,
		DurationMs: record.DurationMs,
		AskedAt:    record.AskedAt,
	}
}

// ToQueryListResponse converts query records to a list DTO.
func ToQueryListResponse(records []*model.QueryRecord) *QueryListResponse {
	responses := make([]QueryResponse, len(records))
	for i, record := range records {
		responses[i] = *ToQueryResponse(record)
	}
	return &QueryListResponse{Data: responses}
}
