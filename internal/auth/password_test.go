package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("open sesame")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "open sesame" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !hasher.Check("open sesame", hash) {
		t.Fatal("Check returned false for the original plaintext")
	}
	if hasher.Check("open sesame!", hash) {
		t.Fatal("Check returned true for a different plaintext")
	}
}

func TestPasswordHashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("1234")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("1234")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext must differ")
	}
}

func TestPasswordHashInvalidInput(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	if _, err := hasher.Hash(""); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword for empty input, got %v", err)
	}

	tooLong := strings.Repeat("a", MaxPasswordLength+1)
	if _, err := hasher.Hash(tooLong); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword for oversized input, got %v", err)
	}
}

func TestPasswordHasherClampsInvalidCost(t *testing.T) {
	hasher := NewPasswordHasher(99)

	hash, err := hasher.Hash("1234")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !hasher.Check("1234", hash) {
		t.Fatal("Check returned false after clamped-cost hash")
	}
}
