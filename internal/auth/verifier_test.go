package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// TestPlainVerifier_ExactMatchOnly は平文比較の判定を検証する。
func TestPlainVerifier_ExactMatchOnly(t *testing.T) {
	v := PlainVerifier{}

	if !v.Verify("plankton123", "plankton123") {
		t.Error("exact match should verify")
	}
	if v.Verify("plankton123", "plankton124") {
		t.Error("mismatch should not verify")
	}
	if v.Verify("plankton123", "") {
		t.Error("empty input should not verify")
	}
}

// TestBcryptVerifier_HashComparison はbcryptハッシュ照合を検証する。
func TestBcryptVerifier_HashComparison(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("plankton123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := BcryptVerifier{}

	if !v.Verify(string(hashed), "plankton123") {
		t.Error("correct secret should verify")
	}
	if v.Verify(string(hashed), "wrong") {
		t.Error("wrong secret should not verify")
	}
	if v.Verify("not-a-hash", "plankton123") {
		t.Error("invalid stored hash should not verify")
	}
}

// TestNewVerifier_SelectsImplementation は設定値に応じた実装選択を検証する。
func TestNewVerifier_SelectsImplementation(t *testing.T) {
	if _, ok := NewVerifier("bcrypt").(BcryptVerifier); !ok {
		t.Error("bcrypt should select BcryptVerifier")
	}
	if _, ok := NewVerifier("plain").(PlainVerifier); !ok {
		t.Error("plain should select PlainVerifier")
	}
	if _, ok := NewVerifier("unknown").(PlainVerifier); !ok {
		t.Error("unknown value should fall back to PlainVerifier")
	}
}
