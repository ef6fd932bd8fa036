package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docqa/docqa/internal/document"
)

func TestValidateDocumentURL(t *testing.T) {
	longURL := "https://example.com/" + strings.Repeat("a", maxDocumentURLLength)

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"empty", "", ErrInvalidDocumentURL},
		{"invalid_scheme", "ftp://example.com/doc.pdf", ErrInvalidDocumentURL},
		{"missing_host", "https://", ErrInvalidDocumentURL},
		{"relative", "/path/doc.pdf", ErrInvalidDocumentURL},
		{"too_long", longURL, ErrInvalidDocumentURL},
		{"valid_https", "https://example.com/policy.pdf?sig=abc", nil},
		{"valid_http", "http://example.com/policy.docx", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validateDocumentURL(test.url)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestValidateQuestions(t *testing.T) {
	svc := &QAService{maxQuestions: 3}

	many := make([]string, 4)
	for i := range many {
		many[i] = "q"
	}

	tests := []struct {
		name      string
		questions []string
		wantErr   error
	}{
		{"none", nil, ErrNoQuestions},
		{"too_many", many, ErrTooManyQuestions},
		{"empty_question", []string{"ok", ""}, ErrEmptyQuestion},
		{"too_long", []string{strings.Repeat("q", maxQuestionLength+1)}, ErrQuestionTooLong},
		{"valid", []string{"What is covered?", "What is the grace period?"}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := svc.validateQuestions(test.questions)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestIsPermanentProcessError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{document.ErrUnsupportedType, true},
		{document.ErrTooLarge, true},
		{document.ErrEmptyDocument, true},
		{fmt.Errorf("wrapped: %w", document.ErrFetchFailed), true},
		{errors.New("network timeout"), false},
	}

	for _, test := range tests {
		if got := isPermanentProcessError(test.err); got != test.want {
			t.Errorf("isPermanentProcessError(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}
