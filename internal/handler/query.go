package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docqa/docqa/internal/handler/dto"
	"github.com/docqa/docqa/internal/model"
	"github.com/docqa/docqa/internal/service"
)

// QueryLister returns historical query records.
type QueryLister interface {
	ListQueries(ctx context.Context, docURL string, limit int) ([]*model.QueryRecord, error)
}

// QueryHandler serves the query history endpoint.
type QueryHandler struct {
	svc    QueryLister
	logger *slog.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(svc QueryLister, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/queries.
// Optional ?document=<url> filters to a single document.
func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 50
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	records, err := h.svc.ListQueries(r.Context(), query.Get("document"), limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDocumentURL) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error: "Document URL must be an absolute http(s) URL",
				Code:  "INVALID_DOCUMENT_URL",
			})
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.ToQueryListResponse(records))
}
