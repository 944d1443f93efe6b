package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/status-page/internal/domain"
)

// Principal is the resolved caller.
type Principal struct {
	Kind           domain.PrincipalKind
	ID             string
	Email          string
	OrganizationID string
	// User is nil for demo principals.
	User *domain.User
}

// IsDemo reports whether the principal has no backing user row.
func (p *Principal) IsDemo() bool {
	return p != nil && p.Kind == domain.PrincipalDemo
}

// UserFinder loads users by id. A missing user is reported as pgx.ErrNoRows.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// MembershipFinder returns the organization membership a user acts under.
type MembershipFinder interface {
	PrimaryForUser(ctx context.Context, userID string) (*domain.Member, error)
}

// TokenDenylist records token ids that must no longer resolve.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IdentityResolver turns decoded identities into principals.
type IdentityResolver struct {
	users    UserFinder
	members  MembershipFinder
	denylist TokenDenylist
}

// NewIdentityResolver builds a resolver. members and denylist may be nil.
func NewIdentityResolver(users UserFinder, members MembershipFinder, denylist TokenDenylist) *IdentityResolver {
	return &IdentityResolver{users: users, members: members, denylist: denylist}
}

// Resolve returns the principal behind identity. ErrPrincipalNotFound means
// the session should be dropped; ErrStorageUnavailable means the store could
// not answer and the caller should be treated as signed out.
func (r *IdentityResolver) Resolve(ctx context.Context, identity Identity) (*Principal, error) {
	if identity.SubjectID == "" {
		return nil, ErrTokenInvalid
	}

	if err := r.checkRevoked(ctx, identity); err != nil {
		return nil, err
	}

	if identity.IsDemo() {
		return &Principal{
			Kind:           domain.PrincipalDemo,
			ID:             identity.SubjectID,
			Email:          identity.Email,
			OrganizationID: identity.OrganizationID,
		}, nil
	}

	user, err := r.users.GetByID(ctx, identity.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	principal := &Principal{
		Kind:           domain.PrincipalPersisted,
		ID:             user.ID,
		Email:          user.Email,
		OrganizationID: identity.OrganizationID,
		User:           user,
	}

	if r.members != nil {
		member, err := r.members.PrimaryForUser(ctx, user.ID)
		switch {
		case err == nil:
			principal.OrganizationID = member.OrganizationID
		case errors.Is(err, pgx.ErrNoRows):
			principal.OrganizationID = ""
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	return principal, nil
}

func (r *IdentityResolver) checkRevoked(ctx context.Context, identity Identity) error {
	if r.denylist == nil || identity.TokenID == "" {
		return nil
	}
	revoked, err := r.denylist.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if revoked {
		return ErrPrincipalNotFound
	}
	return nil
}
