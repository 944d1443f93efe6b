package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const timingPlaceholder = "status-page-timing-equalizer"

// HashPassword bcrypt-hashes a plaintext password. Out-of-range costs fall
// back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// PasswordMatches reports whether plain hashes to hashed. Accounts without a
// stored hash never match.
func PasswordMatches(hashed, plain string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// timingEqualizer spends one bcrypt comparison on lookups that found no
// account, so a miss costs as much as a wrong password.
type timingEqualizer struct {
	cost int
	once sync.Once
	hash string
}

func (e *timingEqualizer) burn(plain string) {
	e.once.Do(func() {
		if hash, err := HashPassword(timingPlaceholder, e.cost); err == nil {
			e.hash = hash
		}
	})
	PasswordMatches(e.hash, plain)
}
