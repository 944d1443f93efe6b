package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/status-page/internal/domain"
)

// UserLookup is the storage capability the verifier needs. A missing user is
// reported as pgx.ErrNoRows.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// VerifiedUser is the outcome of a successful credential check.
type VerifiedUser struct {
	ID             string
	Email          string
	Name           string
	Kind           domain.PrincipalKind
	OrganizationID string
}

// CredentialVerifier decides whether an email/password pair is valid.
type CredentialVerifier struct {
	users    UserLookup
	demoMode bool
	timing   *timingEqualizer
}

// NewCredentialVerifier builds a verifier. demoMode enables the static demo table.
func NewCredentialVerifier(users UserLookup, demoMode bool, bcryptCost int) *CredentialVerifier {
	return &CredentialVerifier{
		users:    users,
		demoMode: demoMode,
		timing:   &timingEqualizer{cost: bcryptCost},
	}
}

// NormalizeEmail trims and lower-cases an address before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verify checks the submitted credentials. It has no side effects.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*VerifiedUser, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if v.demoMode {
		if account, ok := matchDemoAccount(email, password); ok {
			return &VerifiedUser{
				ID:             account.ID,
				Email:          account.Email,
				Name:           account.Name,
				Kind:           domain.PrincipalDemo,
				OrganizationID: DemoOrganizationID,
			}, nil
		}
	}

	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			v.timing.burn(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if !PasswordMatches(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &VerifiedUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Kind:  domain.PrincipalPersisted,
	}, nil
}
