package model

import (
	"testing"
	"time"
)

func TestAPIKey_HasScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scopes []string
		check  string
		want   bool
	}{
		{"has read", []string{ScopeRead}, ScopeRead, true},
		{"missing write", []string{ScopeRead}, ScopeWrite, false},
		{"admin implies read", []string{ScopeAdmin}, ScopeRead, true},
		{"admin implies write", []string{ScopeAdmin}, ScopeWrite, true},
		{"empty scopes", nil, ScopeRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			k := &APIKey{Scopes: tt.scopes}
			if got := k.HasScope(tt.check); got != tt.want {
				t.Errorf("HasScope(%q) = %v, want %v", tt.check, got, tt.want)
			}
		})
	}
}

func TestAPIKey_IsRevoked(t *testing.T) {
	t.Parallel()

	k := &APIKey{}
	if k.IsRevoked() {
		t.Error("key without revoked_at should not be revoked")
	}

	now := time.Now()
	k.RevokedAt = &now
	if !k.IsRevoked() {
		t.Error("key with revoked_at should be revoked")
	}
}

func TestAPIKey_GetRateLimitConfig(t *testing.T) {
	t.Parallel()

	k := &APIKey{RateLimitTier: TierPro}
	cfg := k.GetRateLimitConfig()
	if cfg.RequestsPerMinute != 120 {
		t.Errorf("pro tier RPM = %d, want 120", cfg.RequestsPerMinute)
	}

	k.RateLimitTier = "nonsense"
	cfg = k.GetRateLimitConfig()
	if cfg != TierConfigs[TierFree] {
		t.Error("unknown tier should fall back to free")
	}
}

func TestHashDocumentURL(t *testing.T) {
	t.Parallel()

	a := HashDocumentURL("https://example.com/policy.pdf")
	b := HashDocumentURL("https://example.com/policy.pdf")
	if a != b {
		t.Error("same URL should produce same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}

	// Signed URLs for the same blob differ in query string and must not collide.
	c := HashDocumentURL("https://example.com/policy.pdf?sig=abc")
	if a == c {
		t.Error("URLs differing in query string should hash differently")
	}
}

func TestDocumentType_IsValid(t *testing.T) {
	t.Parallel()

	if !DocumentTypePDF.IsValid() {
		t.Error("pdf should be valid")
	}
	if !DocumentTypeDocx.IsValid() {
		t.Error("docx should be valid")
	}
	if DocumentType("txt").IsValid() {
		t.Error("txt should not be valid")
	}
}
