package middleware

import (
	"strings"
	"testing"
)

func TestValidateDocumentURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{
			name:    "valid https",
			url:     "https://example.com/policy.pdf",
			wantErr: nil,
		},
		{
			name:    "valid http",
			url:     "http://example.com/contract.docx",
			wantErr: nil,
		},
		{
			name:    "valid with signed query",
			url:     "https://storage.example.com/doc.pdf?sig=abc&expires=123",
			wantErr: nil,
		},
		{
			name:    "javascript scheme blocked",
			url:     "javascript:alert('xss')",
			wantErr: ErrDocumentURLInvalid,
		},
		{
			name:    "data scheme blocked",
			url:     "data:application/pdf;base64,JVBERi0=",
			wantErr: ErrDocumentURLInvalid,
		},
		{
			name:    "file scheme blocked",
			url:     "file:///etc/passwd",
			wantErr: ErrDocumentURLInvalid,
		},
		{
			name:    "embedded unsafe scheme",
			url:     "https://example.com/redirect?to=javascript:alert(1)",
			wantErr: ErrDocumentURLUnsafe,
		},
		{
			name:    "too long URL",
			url:     "https://example.com/" + strings.Repeat("a", 2100),
			wantErr: ErrDocumentURLTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentURL(tt.url)
			if err != tt.wantErr {
				t.Errorf("ValidateDocumentURL(%q) = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantErr  error
	}{
		{
			name:     "valid question",
			question: "What is the grace period for premium payment?",
			wantErr:  nil,
		},
		{
			name:     "multiline allowed",
			question: "Given the policy terms,\nwhat is excluded?",
			wantErr:  nil,
		},
		{
			name:     "empty",
			question: "",
			wantErr:  ErrQuestionEmpty,
		},
		{
			name:     "whitespace only",
			question: "   \t ",
			wantErr:  ErrQuestionEmpty,
		},
		{
			name:     "too long",
			question: strings.Repeat("q", MaxQuestionLength+1),
			wantErr:  ErrQuestionTooLong,
		},
		{
			name:     "control character",
			question: "what is\x00covered?",
			wantErr:  ErrQuestionControlChar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.question)
			if err != tt.wantErr {
				t.Errorf("ValidateQuestion(%q) = %v, want %v", tt.question, err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuestions(t *testing.T) {
	many := make([]string, MaxQuestionsPerRequest+1)
	for i := range many {
		many[i] = "q"
	}

	if err := ValidateQuestions(many); err != ErrTooManyQuestions {
		t.Errorf("expected ErrTooManyQuestions, got %v", err)
	}

	if err := ValidateQuestions([]string{"What is covered?"}); err != nil {
		t.Errorf("valid batch rejected: %v", err)
	}

	if err := ValidateQuestions([]string{"ok", ""}); err != ErrQuestionEmpty {
		t.Errorf("expected ErrQuestionEmpty, got %v", err)
	}
}
