package utils

import "testing"

func TestAPIKeyHash(t *testing.T) {
	hash, err := HashAPIKey("xpectrum-key")
	if err != nil {
		t.Fatalf("HashAPIKey: %v", err)
	}
	if !CheckAPIKeyHash("xpectrum-key", hash) {
		t.Error("expected key to match its hash")
	}
	if CheckAPIKeyHash("other-key", hash) {
		t.Error("expected other key not to match")
	}
	if CheckAPIKeyHash("xpectrum-key", "not-a-hash") {
		t.Error("expected malformed hash not to match")
	}
}
