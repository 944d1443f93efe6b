package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/status-page/internal/domain"
)

// DemoOrganizationID is the tenant every demo account belongs to. It has no row.
const DemoOrganizationID = domain.DemoIDPrefix + "admin-org"

// DemoAccount is one entry of the static demo credential table.
type DemoAccount struct {
	ID       string
	Email    string
	Name     string
	Password string
}

var demoAccounts = []DemoAccount{
	{ID: domain.DemoIDPrefix + "user-1", Email: "demo@example.com", Name: "Demo User", Password: "password123"},
	{ID: domain.DemoIDPrefix + "user-2", Email: "admin@example.com", Name: "Demo Admin", Password: "password123"},
}

// DemoOrganization describes the synthetic tenant returned to demo sign-ins.
func DemoOrganization() domain.Organization {
	return domain.Organization{
		ID:   DemoOrganizationID,
		Name: "Demo Organization",
		Slug: "demo-org",
	}
}

// IsDemoSubject reports whether a subject id belongs to a synthetic demo caller.
func IsDemoSubject(subjectID string) bool {
	return strings.HasPrefix(subjectID, domain.DemoIDPrefix)
}

// NewDemoSubjectID returns a fresh synthetic id for ad-hoc demo logins.
func NewDemoSubjectID() string {
	return domain.DemoIDPrefix + "user-" + uuid.NewString()
}

// lookupDemoAccount finds the demo entry by email.
func lookupDemoAccount(email string) (DemoAccount, bool) {
	for _, account := range demoAccounts {
		if account.Email == email {
			return account, true
		}
	}
	return DemoAccount{}, false
}

// matchDemoAccount checks both halves of a demo credential pair.
func matchDemoAccount(email, password string) (DemoAccount, bool) {
	account, ok := lookupDemoAccount(email)
	if !ok {
		return DemoAccount{}, false
	}
	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return DemoAccount{}, false
	}
	return account, true
}

// DemoIdentityFor maps an email to a demo caller without checking a password.
// Table emails keep their fixed ids; anything else gets a synthetic id.
func DemoIdentityFor(email string) VerifiedUser {
	email = NormalizeEmail(email)
	if account, ok := lookupDemoAccount(email); ok {
		return VerifiedUser{
			ID:             account.ID,
			Email:          account.Email,
			Name:           account.Name,
			Kind:           domain.PrincipalDemo,
			OrganizationID: DemoOrganizationID,
		}
	}
	name, _, _ := strings.Cut(email, "@")
	return VerifiedUser{
		ID:             NewDemoSubjectID(),
		Email:          email,
		Name:           name,
		Kind:           domain.PrincipalDemo,
		OrganizationID: DemoOrganizationID,
	}
}
