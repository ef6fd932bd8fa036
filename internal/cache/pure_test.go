package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/docqa/docqa/internal/model"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	hash1 := hashIP("8.8.8.8")
	hash2 := hashIP("192.168.1.1")

	if hash1 == hash2 {
		t.Error("Different IPs should produce different hashes")
	}
}

func TestCachedDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	doc := &CachedDocument{
		URL:       "https://example.com/policy.pdf",
		Type:      model.DocumentTypePDF,
		Pages:     12,
		SizeBytes: 48211,
		FetchedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		Chunks: []model.Chunk{
			{Text: "chunk one", Page: 1, Vector: []float32{0.1, 0.2, 0.3}},
			{Text: "chunk two", Page: 2, Vector: []float32{0.4, 0.5, 0.6}},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored CachedDocument
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored.URL != doc.URL {
		t.Errorf("url = %s, want %s", restored.URL, doc.URL)
	}
	if len(restored.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(restored.Chunks))
	}
	if len(restored.Chunks[0].Vector) != 3 {
		t.Errorf("vector length = %d, want 3", len(restored.Chunks[0].Vector))
	}
}
