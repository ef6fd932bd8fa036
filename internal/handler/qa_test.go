package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docqa/docqa/internal/document"
	"github.com/docqa/docqa/internal/handler/dto"
	"github.com/docqa/docqa/internal/service"
)

type fakeQARunner struct {
	result *service.RunResult
	err    error

	gotURL       string
	gotQuestions []string
}

func (f *fakeQARunner) Run(_ context.Context, docURL string, questions []string) (*service.RunResult, error) {
	f.gotURL = docURL
	f.gotQuestions = questions
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQAHandler_Run(t *testing.T) {
	runner := &fakeQARunner{
		result: &service.RunResult{Answers: []string{"Thirty days.", "Yes."}},
	}
	h := NewQAHandler(runner, discardLogger())

	body := `{"doc_url":"https://example.com/policy.pdf","questions":["What is the grace period?","Is surgery covered?"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/qa/run", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response dto.QARunResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(response.Answers))
	}
	if response.Answers[0] != "Thirty days." {
		t.Errorf("unexpected first answer: %s", response.Answers[0])
	}
	if runner.gotURL != "https://example.com/policy.pdf" {
		t.Errorf("service received URL %q", runner.gotURL)
	}
	if len(runner.gotQuestions) != 2 {
		t.Errorf("service received %d questions", len(runner.gotQuestions))
	}
}

func TestQAHandler_Run_InvalidJSON(t *testing.T) {
	h := NewQAHandler(&fakeQARunner{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/qa/run", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestQAHandler_Run_RequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		docURL    string
		questions []string
		wantCode  string
	}{
		{"non-http scheme", "ftp://example.com/doc.pdf", []string{"q"}, "INVALID_DOCUMENT_URL"},
		{"javascript scheme smuggled", "https://example.com/javascript:alert(1).pdf", []string{"q"}, "INVALID_DOCUMENT_URL"},
		{"url too long", "https://example.com/" + strings.Repeat("a", 2048) + ".pdf", []string{"q"}, "INVALID_DOCUMENT_URL"},
		{"blank question", "https://example.com/doc.pdf", []string{"   "}, "EMPTY_QUESTION"},
		{"question too long", "https://example.com/doc.pdf", []string{strings.Repeat("x", 2001)}, "QUESTION_TOO_LONG"},
		{"question with nul byte", "https://example.com/doc.pdf", []string{"what is\x00this"}, "QUESTION_CONTROL_CHARS"},
		{"question with escape char", "https://example.com/doc.pdf", []string{"hidden\x1bquestion"}, "QUESTION_CONTROL_CHARS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeQARunner{}
			h := NewQAHandler(runner, discardLogger())

			body, err := json.Marshal(dto.QARunRequest{DocURL: tt.docURL, Questions: tt.questions})
			if err != nil {
				t.Fatalf("failed to marshal request: %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/qa/run", strings.NewReader(string(body)))
			rec := httptest.NewRecorder()

			h.Run(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, response.Code)
			}
			if runner.gotURL != "" {
				t.Errorf("service should not be reached, got URL %q", runner.gotURL)
			}
		})
	}
}

func TestQAHandler_Run_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid_url", service.ErrInvalidDocumentURL, http.StatusBadRequest, "INVALID_DOCUMENT_URL"},
		{"no_questions", service.ErrNoQuestions, http.StatusBadRequest, "NO_QUESTIONS"},
		{"too_many", service.ErrTooManyQuestions, http.StatusBadRequest, "TOO_MANY_QUESTIONS"},
		{"recently_failed", service.ErrRecentlyFailed, http.StatusUnprocessableEntity, "DOCUMENT_RECENTLY_FAILED"},
		{"unsupported", document.ErrUnsupportedType, http.StatusBadRequest, "UNSUPPORTED_DOCUMENT_TYPE"},
		{"too_large", document.ErrTooLarge, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE"},
		{"empty_doc", document.ErrEmptyDocument, http.StatusUnprocessableEntity, "EMPTY_DOCUMENT"},
		{"fetch_failed", document.ErrFetchFailed, http.StatusBadGateway, "FETCH_FAILED"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewQAHandler(&fakeQARunner{err: tt.err}, discardLogger())

			body := `{"doc_url":"https://example.com/doc.pdf","questions":["q"]}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/qa/run", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.Run(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, response.Code)
			}
		})
	}
}
