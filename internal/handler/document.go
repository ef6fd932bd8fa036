package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docqa/docqa/internal/cache"
	"github.com/docqa/docqa/internal/document"
	"github.com/docqa/docqa/internal/handler/dto"
	"github.com/docqa/docqa/internal/middleware"
	"github.com/docqa/docqa/internal/model"
	"github.com/docqa/docqa/internal/service"
)

// DocumentStore manages ingested documents.
type DocumentStore interface {
	Ingest(ctx context.Context, docURL string) (*cache.CachedDocument, error)
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// DocumentHandler handles document management endpoints.
type DocumentHandler struct {
	svc    DocumentStore
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc DocumentStore, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		svc:    svc,
		logger: logger,
	}
}

// Ingest handles POST /api/v1/documents.
// It processes a document eagerly so later QA runs hit warm caches.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateDocumentURL(req.URL); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_DOCUMENT_URL", "Document URL must be an absolute http(s) URL")
		return
	}

	cached, err := h.svc.Ingest(r.Context(), req.URL)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_ingested",
		"url_hash", model.HashDocumentURL(req.URL),
		"doc_type", cached.Type,
		"chunks", len(cached.Chunks),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"url_hash":    model.HashDocumentURL(req.URL),
		"type":        cached.Type,
		"pages":       cached.Pages,
		"chunk_count": len(cached.Chunks),
		"size_bytes":  cached.SizeBytes,
	})
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDocumentResponse(doc))
}

// List handles GET /api/v1/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	docs, err := h.svc.ListDocuments(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDocumentListResponse(docs))
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_deleted", "document_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *DocumentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		h.writeError(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrInvalidDocumentURL):
		h.writeError(w, http.StatusBadRequest, "INVALID_DOCUMENT_URL", "Document URL must be an absolute http(s) URL")
	case errors.Is(err, service.ErrRecentlyFailed):
		h.writeError(w, http.StatusUnprocessableEntity, "DOCUMENT_RECENTLY_FAILED", "Document failed processing recently, try again later")
	case errors.Is(err, document.ErrUnsupportedType):
		h.writeError(w, http.StatusBadRequest, "UNSUPPORTED_DOCUMENT_TYPE", "Only PDF and DOCX documents are supported")
	case errors.Is(err, document.ErrTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE", "Document exceeds the size limit")
	case errors.Is(err, document.ErrEmptyDocument):
		h.writeError(w, http.StatusUnprocessableEntity, "EMPTY_DOCUMENT", "No text could be extracted from the document")
	case errors.Is(err, document.ErrFetchFailed):
		h.writeError(w, http.StatusBadGateway, "FETCH_FAILED", "Document could not be downloaded")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *DocumentHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
