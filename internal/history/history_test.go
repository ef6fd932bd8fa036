package history

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func validPayload() QueryEventPayload {
	return QueryEventPayload{
		URLHash:    strings.Repeat("ab", 32),
		Question:   "What is the grace period?",
		Answer:     "Thirty days.",
		DurationMs: 1200,
		AskedAt:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func TestValidateQueryEventPayload_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateQueryEventPayload(validPayload()); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
}

func TestValidateQueryEventPayload_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*QueryEventPayload)
	}{
		{"missing url_hash", func(p *QueryEventPayload) { p.URLHash = "" }},
		{"short url_hash", func(p *QueryEventPayload) { p.URLHash = "abc123" }},
		{"non-hex url_hash", func(p *QueryEventPayload) { p.URLHash = strings.Repeat("zz", 32) }},
		{"missing question", func(p *QueryEventPayload) { p.Question = "" }},
		{"question too long", func(p *QueryEventPayload) { p.Question = strings.Repeat("q", 2001) }},
		{"answer too long", func(p *QueryEventPayload) { p.Answer = strings.Repeat("a", 8001) }},
		{"negative duration", func(p *QueryEventPayload) { p.DurationMs = -1 }},
		{"missing asked_at", func(p *QueryEventPayload) { p.AskedAt = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPayload()
			tt.mutate(&p)
			if err := ValidateQueryEventPayload(p); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestQueryEventPayload_CompactJSON(t *testing.T) {
	t.Parallel()

	p := validPayload()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Short keys keep stream entries small.
	for _, key := range []string{`"dh"`, `"q"`, `"a"`, `"d"`, `"t"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("serialized payload missing key %s: %s", key, data)
		}
	}

	// Zero-value flags are omitted entirely.
	if strings.Contains(string(data), `"f"`) || strings.Contains(string(data), `"ch"`) {
		t.Errorf("false flags should be omitted: %s", data)
	}
}

func TestTruncateText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		max     int
		wantLen int
	}{
		{"short", "hello", 10, 5},
		{"exact", strings.Repeat("x", 10), 10, 10},
		{"over", strings.Repeat("x", 20), 10, 10},
		{"cut inside multibyte rune", "abé", 3, 2},
		{"cut after multibyte rune", "abé", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := TruncateText(tt.input, tt.max)
			if len(got) != tt.wantLen {
				t.Errorf("TruncateText length = %d, want %d", len(got), tt.wantLen)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TruncateText produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestNewConsumerID_Unique(t *testing.T) {
	t.Parallel()

	id1 := NewConsumerID()
	id2 := NewConsumerID()
	if id1 == id2 {
		t.Error("consumer IDs should differ between calls")
	}
	if id1 == "" {
		t.Error("consumer ID should not be empty")
	}
}
