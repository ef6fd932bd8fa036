package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docqa/docqa/internal/cache"
	"github.com/docqa/docqa/internal/handler/dto"
	"github.com/docqa/docqa/internal/model"
	"github.com/docqa/docqa/internal/service"
)

type fakeDocumentStore struct {
	cached  *cache.CachedDocument
	doc     *model.Document
	docs    []*model.Document
	err     error
	deleted string
}

func (f *fakeDocumentStore) Ingest(_ context.Context, _ string) (*cache.CachedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cached, nil
}

func (f *fakeDocumentStore) GetDocument(_ context.Context, _ string) (*model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *fakeDocumentStore) ListDocuments(_ context.Context, _ int) ([]*model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeDocumentStore) DeleteDocument(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

func sampleDocument() *model.Document {
	return &model.Document{
		ID:         "01J5ZX3Q",
		URLHash:    strings.Repeat("ab", 32),
		URL:        "https://example.com/policy.pdf",
		Type:       model.DocumentTypePDF,
		Pages:      12,
		ChunkCount: 40,
		SizeBytes:  123456,
		FetchedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDocumentHandler_Ingest(t *testing.T) {
	store := &fakeDocumentStore{
		cached: &cache.CachedDocument{
			URL:       "https://example.com/policy.pdf",
			Type:      model.DocumentTypePDF,
			Pages:     12,
			SizeBytes: 123456,
			Chunks:    make([]model.Chunk, 40),
		},
	}
	h := NewDocumentHandler(store, discardLogger())

	body := `{"url":"https://example.com/policy.pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Ingest(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["chunk_count"].(float64) != 40 {
		t.Errorf("unexpected chunk_count: %v", response["chunk_count"])
	}
}

func TestDocumentHandler_Ingest_RejectsBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"relative url", "/policy.pdf"},
		{"file scheme", "file:///etc/passwd"},
		{"url too long", "https://example.com/" + strings.Repeat("a", 2048) + ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeDocumentStore{}
			h := NewDocumentHandler(store, discardLogger())

			body := `{"url":"` + tt.url + `"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.Ingest(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestDocumentHandler_Get(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentStore{doc: sampleDocument()}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/01J5ZX3Q", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "01J5ZX3Q")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response dto.DocumentResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != "01J5ZX3Q" {
		t.Errorf("unexpected ID: %s", response.ID)
	}
	if response.Type != "pdf" {
		t.Errorf("unexpected type: %s", response.Type)
	}
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentStore{err: service.ErrDocumentNotFound}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestDocumentHandler_List(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentStore{docs: []*model.Document{sampleDocument()}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?limit=10", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response dto.DocumentListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 1 {
		t.Fatalf("expected 1 document, got %d", len(response.Data))
	}
}

func TestDocumentHandler_Delete(t *testing.T) {
	store := &fakeDocumentStore{}
	h := NewDocumentHandler(store, discardLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/01J5ZX3Q", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "01J5ZX3Q")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if store.deleted != "01J5ZX3Q" {
		t.Errorf("expected delete of 01J5ZX3Q, got %q", store.deleted)
	}
}

type fakeQueryLister struct {
	records []*model.QueryRecord
	err     error
	gotURL  string
}

func (f *fakeQueryLister) ListQueries(_ context.Context, docURL string, _ int) ([]*model.QueryRecord, error) {
	f.gotURL = docURL
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestQueryHandler_List(t *testing.T) {
	lister := &fakeQueryLister{
		records: []*model.QueryRecord{
			{
				ID:       "01J5ZX3R",
				URLHash:  strings.Repeat("ab", 32),
				Question: "What is covered?",
				Answer:   "Hospitalization.",
				AskedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	h := NewQueryHandler(lister, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries?document=https://example.com/policy.pdf", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if lister.gotURL != "https://example.com/policy.pdf" {
		t.Errorf("service received URL %q", lister.gotURL)
	}

	var response dto.QueryListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Data) != 1 {
		t.Fatalf("expected 1 record, got %d", len(response.Data))
	}
	if response.Data[0].Question != "What is covered?" {
		t.Errorf("unexpected question: %s", response.Data[0].Question)
	}
}

func TestQueryHandler_List_InvalidFilter(t *testing.T) {
	h := NewQueryHandler(&fakeQueryLister{err: service.ErrInvalidDocumentURL}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries?document=not-a-url", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}
