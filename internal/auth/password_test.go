package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("hunter22", 99)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestPasswordMatches(t *testing.T) {
	hash := mustHash(t, "hunter22")

	if !PasswordMatches(hash, "hunter22") {
		t.Fatalf("expected match")
	}
	if PasswordMatches(hash, "hunter23") {
		t.Fatalf("wrong password matched")
	}
	if PasswordMatches("", "") {
		t.Fatalf("empty hash must never match")
	}
}

func TestTimingEqualizerHashesOnce(t *testing.T) {
	eq := &timingEqualizer{cost: bcrypt.MinCost}
	eq.burn("a")
	first := eq.hash
	eq.burn("b")

	if !strings.HasPrefix(first, "$2") || eq.hash != first {
		t.Fatalf("equalizer hash must be computed once, got %q then %q", first, eq.hash)
	}
}
