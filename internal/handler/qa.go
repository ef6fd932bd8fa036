package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/docqa/docqa/internal/document"
	"github.com/docqa/docqa/internal/handler/dto"
	"github.com/docqa/docqa/internal/middleware"
	"github.com/docqa/docqa/internal/service"
)

// QARunner answers question batches against a document URL.
type QARunner interface {
	Run(ctx context.Context, docURL string, questions []string) (*service.RunResult, error)
}

// QAHandler handles question answering requests.
type QAHandler struct {
	svc    QARunner
	logger *slog.Logger
}

// NewQAHandler creates a new QAHandler.
func NewQAHandler(svc QARunner, logger *slog.Logger) *QAHandler {
	return &QAHandler{
		svc:    svc,
		logger: logger,
	}
}

// Run handles POST /api/v1/qa/run.
func (h *QAHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.QARunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateDocumentURL(req.DocURL); err != nil {
		h.writeValidationError(w, err)
		return
	}
	if err := middleware.ValidateQuestions(req.Questions); err != nil {
		h.writeValidationError(w, err)
		return
	}

	started := time.Now()
	result, err := h.svc.Run(r.Context(), req.DocURL, req.Questions)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("qa_run",
		"questions", len(req.Questions),
		"index_cache_hit", result.CacheHit,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, dto.QARunResponse{Answers: result.Answers})
}

// handleServiceError maps service errors to HTTP responses.
func (h *QAHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDocumentURL):
		h.writeError(w, http.StatusBadRequest, "INVALID_DOCUMENT_URL", "Document URL must be an absolute http(s) URL")
	case errors.Is(err, service.ErrNoQuestions):
		h.writeError(w, http.StatusBadRequest, "NO_QUESTIONS", "At least one question is required")
	case errors.Is(err, service.ErrEmptyQuestion):
		h.writeError(w, http.StatusBadRequest, "EMPTY_QUESTION", "Questions must not be empty")
	case errors.Is(err, service.ErrQuestionTooLong):
		h.writeError(w, http.StatusBadRequest, "QUESTION_TOO_LONG", "Question exceeds maximum length")
	case errors.Is(err, service.ErrTooManyQuestions):
		h.writeError(w, http.StatusBadRequest, "TOO_MANY_QUESTIONS", "Too many questions in one request")
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

// writeValidationError maps request validation errors to HTTP responses.
func (h *QAHandler) writeValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, middleware.ErrDocumentURLTooLong),
		errors.Is(err, middleware.ErrDocumentURLInvalid),
		errors.Is(err, middleware.ErrDocumentURLUnsafe):
		h.writeError(w, http.StatusBadRequest, "INVALID_DOCUMENT_URL", "Document URL must be an absolute http(s) URL")
	case errors.Is(err, middleware.ErrQuestionEmpty):
		h.writeError(w, http.StatusBadRequest, "EMPTY_QUESTION", "Questions must not be empty")
	case errors.Is(err, middleware.ErrQuestionTooLong):
		h.writeError(w, http.StatusBadRequest, "QUESTION_TOO_LONG", "Question exceeds maximum length")
	case errors.Is(err, middleware.ErrQuestionControlChar):
		h.writeError(w, http.StatusBadRequest, "QUESTION_CONTROL_CHARS", "Questions must not contain control characters")
	case errors.Is(err, middleware.ErrTooManyQuestions):
		h.writeError(w, http.StatusBadRequest, "TOO_MANY_QUESTIONS", "Too many questions in one request")
	default:
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
	}
}

// writeError writes an error response.
func (h *QAHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
