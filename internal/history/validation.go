// Package history provides query event capture and processing.
package history

import "fmt"

const (
	urlHashLength     = 64
	maxQuestionLength = 2000
	maxAnswerLength   = 8000
)

// ValidateQueryEventPayload validates query event payload fields.
func ValidateQueryEventPayload(payload QueryEventPayload) error {
	if payload.URLHash == "" {
		return fmt.Errorf("url_hash is required")
	}
	if len(payload.URLHash) != urlHashLength || !isHex(payload.URLHash) {
		return fmt.Errorf("url_hash must be %d hex chars", urlHashLength)
	}
	if payload.Question == "" {
		return fmt.Errorf("question is required")
	}
	if len(payload.Question) > maxQuestionLength {
		return fmt.Errorf("question too long")
	}
	if len(payload.Answer) > maxAnswerLength {
		return fmt.Errorf("answer too long")
	}
	if payload.DurationMs < 0 {
		return fmt.Errorf("duration_ms must not be negative")
	}
	if payload.AskedAt <= 0 {
		return fmt.Errorf("asked_at must be set")
	}
	return nil
}

func isHex(value string) bool {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') {
			continue
		}
		return false
	}
	return true
}
