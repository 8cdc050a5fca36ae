package hasher_test

import (
	"testing"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_NewBcrypt_InvalidCost(t *testing.T) {
	if hasher.NewBcrypt(1) == nil || hasher.NewBcrypt(100) == nil {
		t.Fatal("expected hasher with default cost")
	}
}

func TestBcrypt_HashCompare(t *testing.T) {
	h := hasher.NewBcrypt(bcrypt.MinCost) // min cost for speed in tests

	hash, err := h.Hash("operator-secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) == 0 || hash[0] != '$' {
		t.Errorf("expected bcrypt format, got %q", hash)
	}
	if !h.Compare(hash, "operator-secret") {
		t.Error("Compare should match the original plaintext")
	}
	if h.Compare(hash, "wrong") {
		t.Error("Compare should reject a different plaintext")
	}
	if h.Compare([]byte("not-a-hash"), "operator-secret") {
		t.Error("Compare should reject malformed hashes")
	}
}

func TestFake(t *testing.T) {
	h := hasher.Fake{}
	hash, _ := h.Hash("k")
	if !h.Compare(hash, "k") || h.Compare(hash, "x") {
		t.Error("Fake compare mismatch")
	}
}

func TestCallerID(t *testing.T) {
	// sha256("test-key")
	const want = "62af8704764faf8ea82fc61ce9c4c3908b6cb97d463a634e9e587d7c885db0ef"
	if got := hasher.CallerID("test-key"); got != want {
		t.Errorf("CallerID() = %s, want %s", got, want)
	}
	if hasher.CallerID("a") == hasher.CallerID("b") {
		t.Error("distinct keys should produce distinct caller ids")
	}
	if len(hasher.CallerID("")) != 64 {
		t.Error("caller id should be 64 hex chars")
	}
}
