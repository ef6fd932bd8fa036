// Package middleware provides HTTP middleware for the DocQA API.
package middleware

import (
	"errors"
	"strings"
	"unicode"
)

// Validation limits.
const (
	// MaxDocumentURLLength is the maximum length for document URLs.
	MaxDocumentURLLength = 2048

	// MaxQuestionLength is the maximum length for a single question.
	MaxQuestionLength = 2000

	// MaxQuestionsPerRequest caps how many questions one request may carry.
	MaxQuestionsPerRequest = 200
)

// Validation errors.
var (
	ErrDocumentURLTooLong  = errors.New("document URL exceeds maximum length")
	ErrDocumentURLInvalid  = errors.New("document URL is invalid")
	ErrDocumentURLUnsafe   = errors.New("document URL uses unsafe scheme")
	ErrQuestionEmpty       = errors.New("question is empty")
	ErrQuestionTooLong     = errors.New("question exceeds maximum length")
	ErrQuestionControlChar = errors.New("question contains control characters")
	ErrTooManyQuestions    = errors.New("too many questions in one request")
)

// ValidateDocumentURL validates a document URL before it reaches the
// ingestion pipeline.
func ValidateDocumentURL(url string) error {
	if len(url) > MaxDocumentURLLength {
		return ErrDocumentURLTooLong
	}

	// Basic scheme validation
	lowerURL := strings.ToLower(url)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return ErrDocumentURLInvalid
	}

	// Block dangerous schemes (in case of URL encoding tricks)
	forbiddenSchemes := []string{"javascript:", "data:", "vbscript:", "file:"}
	for _, scheme := range forbiddenSchemes {
		if strings.Contains(lowerURL, scheme) {
			return ErrDocumentURLUnsafe
		}
	}

	return nil
}

// ValidateQuestion checks a single question for basic sanity. Newlines and
// tabs are allowed, other control characters are not.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrQuestionEmpty
	}
	if len(question) > MaxQuestionLength {
		return ErrQuestionTooLong
	}

	for _, r := range question {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return ErrQuestionControlChar
		}
	}

	return nil
}

// ValidateQuestions checks a question batch.
func ValidateQuestions(questions []string) error {
	if len(questions) > MaxQuestionsPerRequest {
		return ErrTooManyQuestions
	}
	for _, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}
