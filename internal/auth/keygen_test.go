package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey(EnvLive)
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	if !strings.HasPrefix(key.Plaintext, "dk_live_") {
		t.Errorf("expected dk_live_ prefix, got %s", key.Plaintext)
	}

	if len(key.Prefix) != KeyPrefixLen {
		t.Errorf("prefix length = %d, want %d", len(key.Prefix), KeyPrefixLen)
	}

	if key.Hash == "" || key.Hash == key.Plaintext {
		t.Error("hash must be set and differ from plaintext")
	}
}

func TestGenerateAPIKey_InvalidEnvDefaultsToLive(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey("staging")
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	if !strings.HasPrefix(key.Plaintext, "dk_live_") {
		t.Errorf("expected fallback to live env, got %s", key.Plaintext)
	}
}

func TestParseAPIKey_RoundTrip(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey(EnvTest)
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	parsed, err := ParseAPIKey(key.Plaintext)
	if err != nil {
		t.Fatalf("ParseAPIKey failed: %v", err)
	}

	if parsed.Env != EnvTest {
		t.Errorf("env = %s, want %s", parsed.Env, EnvTest)
	}

	if parsed.Prefix != key.Prefix {
		t.Errorf("prefix = %s, want %s", parsed.Prefix, key.Prefix)
	}
}

func TestParseAPIKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"wrong prefix", "pk_live_aabbcc_00112233445566778899aabbccddeeff"},
		{"bad env", "dk_prod_aabbcc_00112233445566778899aabbccddeeff"},
		{"short secret", "dk_live_aabbcc_0011"},
		{"uppercase hex", "dk_live_AABBCC_00112233445566778899AABBCCDDEEFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseAPIKey(tt.key); err == nil {
				t.Errorf("ParseAPIKey(%q) should fail", tt.key)
			}
		})
	}
}

func TestHashKey_VerifyKey(t *testing.T) {
	t.Parallel()

	hash, err := HashKey("dk_live_aabbcc_00112233445566778899aabbccddeeff")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	match, err := VerifyKey("dk_live_aabbcc_00112233445566778899aabbccddeeff", hash)
	if err != nil {
		t.Fatalf("VerifyKey failed: %v", err)
	}
	if !match {
		t.Error("expected key to match its own hash")
	}

	match, err = VerifyKey("dk_live_aabbcc_ffffffffffffffffffffffffffffffff", hash)
	if err != nil {
		t.Fatalf("VerifyKey failed: %v", err)
	}
	if match {
		t.Error("different key should not match")
	}
}

func TestVerifyKey_MalformedHash(t *testing.T) {
	t.Parallel()

	if _, err := VerifyKey("anything", "not-a-phc-string"); err == nil {
		t.Error("expected error for malformed hash")
	}
}
