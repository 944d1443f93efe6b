package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/config"
	"github.com/spec-kit/status-page/internal/domain"
	"github.com/spec-kit/status-page/internal/events"
	"github.com/spec-kit/status-page/internal/repository"
	apperrors "github.com/spec-kit/status-page/pkg/util/errorutil"
)

const (
	minPasswordLength = 6
	slugSuffixLength  = 6
	storeRetryAfter   = 5 * time.Second
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// TxRunner runs fn inside one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Session is the outcome of a successful sign-in, sign-up or demo login.
type Session struct {
	Token        string
	Identity     auth.Identity
	User         domain.User
	Organization *domain.Organization
	IsDemo       bool
}

// SignUpInput carries a registration request.
type SignUpInput struct {
	Email            string
	Password         string
	Name             string
	OrganizationName string
}

// AuthService coordinates sign-in, sign-up, demo login and sign-out.
type AuthService struct {
	verifier   *auth.CredentialVerifier
	codec      *auth.TokenCodec
	resolver   *auth.IdentityResolver
	users      repository.UserRepository
	orgs       repository.OrganizationRepository
	members    repository.MemberRepository
	tx         TxRunner
	denylist   auth.TokenDenylist
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	demoMode   bool
}

// AuthDependencies encapsulates collaborators for the auth service.
// Denylist is nil unless revocation is enabled.
type AuthDependencies struct {
	Codec      *auth.TokenCodec
	UserRepo   repository.UserRepository
	OrgRepo    repository.OrganizationRepository
	MemberRepo repository.MemberRepository
	Tx         TxRunner
	Denylist   auth.TokenDenylist
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		verifier:   auth.NewCredentialVerifier(deps.UserRepo, cfg.DemoMode, cfg.BcryptCost),
		codec:      deps.Codec,
		resolver:   auth.NewIdentityResolver(deps.UserRepo, deps.MemberRepo, deps.Denylist),
		users:      deps.UserRepo,
		orgs:       deps.OrgRepo,
		members:    deps.MemberRepo,
		tx:         deps.Tx,
		denylist:   deps.Denylist,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		demoMode:   cfg.DemoMode,
	}
}

// Resolver exposes the identity resolver for route guards.
func (s *AuthService) Resolver() *auth.IdentityResolver {
	return s.resolver
}

// DemoMode reports whether demo credentials are accepted.
func (s *AuthService) DemoMode() bool {
	return s.demoMode
}

// SignIn verifies credentials and issues a session. It returns
// auth.ErrInvalidCredentials for any credential problem.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	verified, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.publish(ctx, events.EventSignInFailed, events.Actor{}, events.SignInFailedPayload{
				EmailDomain: emailDomain(email),
				Reason:      "invalid_credentials",
			})
			return nil, auth.ErrInvalidCredentials
		}
		s.logger.Warn("sign-in could not reach the user store", zap.Error(err))
		return nil, unavailable(err)
	}

	var org *domain.Organization
	if verified.Kind == domain.PrincipalDemo {
		demoOrg := auth.DemoOrganization()
		org = &demoOrg
	} else {
		org, err = s.primaryOrganization(ctx, verified.ID)
		if err != nil {
			s.logger.Warn("sign-in could not load membership", zap.String("subject_id", verified.ID), zap.Error(err))
			return nil, unavailable(err)
		}
		if org != nil {
			verified.OrganizationID = org.ID
		}
	}

	session, err := s.issue(verified, org)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserSignedIn, actorOf(session), nil)
	return session, nil
}

// SignUp registers an account, optionally with its own organization, and
// signs it in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := auth.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	orgName := strings.TrimSpace(in.OrganizationName)

	if err := validateSignUp(email, in.Password); err != nil {
		return nil, err
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Email: email, Name: name, PasswordHash: hash}
	var org *domain.Organization

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return repository.ErrDuplicate
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if orgName == "" {
			return nil
		}

		org = &domain.Organization{Name: orgName, Slug: uniqueSlug(orgName)}
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		return s.members.Create(ctx, &domain.Member{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           domain.MemberRoleAdmin,
			Email:          user.Email,
			Name:           user.Name,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("User with this email already exists", nil)
		}
		s.logger.Error("sign-up failed", zap.Error(err))
		return nil, unavailable(err)
	}

	verified := auth.VerifiedUser{ID: user.ID, Email: user.Email, Name: user.Name, Kind: domain.PrincipalPersisted}
	if org != nil {
		verified.OrganizationID = org.ID
	}

	session, err := s.issue(&verified, org)
	if err != nil {
		return nil, err
	}
	session.User = *user
	session.User.PasswordHash = ""

	s.publish(ctx, events.EventUserSignedUp, actorOf(session), events.SignedUpPayload{OrganizationCreated: org != nil})
	return session, nil
}

// DemoLogin signs in as a demo caller without a password. Only available
// in demo mode.
func (s *AuthService) DemoLogin(ctx context.Context, email string) (*Session, error) {
	if !s.demoMode {
		return nil, apperrors.NewForbidden("Demo mode is not enabled")
	}
	if auth.NormalizeEmail(email) == "" {
		return nil, apperrors.NewValidationError("Email is required", map[string]any{"email": "required"})
	}

	verified := auth.DemoIdentityFor(email)
	demoOrg := auth.DemoOrganization()
	session, err := s.issue(&verified, &demoOrg)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventDemoLogin, actorOf(session), nil)
	return session, nil
}

// SignOut ends the session carried by token. The cookie is the caller's job;
// this only revokes the token when a denylist is configured. A missing or
// invalid token is not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) {
	identity, ok := s.codec.Decode(token)
	if !ok {
		return
	}

	revoked := false
	if s.denylist != nil && identity.TokenID != "" {
		ttl := identity.ExpiresAt.Sub(s.codec.Now())
		if err := s.denylist.Revoke(ctx, identity.TokenID, ttl); err != nil {
			s.logger.Warn("token revocation failed", zap.String("subject_id", identity.SubjectID), zap.Error(err))
		} else {
			revoked = true
		}
	}

	kind := domain.PrincipalPersisted
	if identity.IsDemo() {
		kind = domain.PrincipalDemo
	}
	s.publish(ctx, events.EventUserSignedOut, events.Actor{
		Kind:           kind,
		SubjectID:      identity.SubjectID,
		OrganizationID: identity.OrganizationID,
	}, events.SignedOutPayload{Revoked: revoked})
}

// CurrentPrincipal resolves the caller behind token. Errors are the auth
// sentinels.
func (s *AuthService) CurrentPrincipal(ctx context.Context, token string) (*auth.Principal, error) {
	identity, ok := s.codec.Decode(token)
	if !ok {
		return nil, auth.ErrTokenInvalid
	}
	return s.resolver.Resolve(ctx, identity)
}

func (s *AuthService) issue(verified *auth.VerifiedUser, org *domain.Organization) (*Session, error) {
	token, identity, err := s.codec.Issue(auth.Identity{
		SubjectID:      verified.ID,
		Email:          verified.Email,
		OrganizationID: verified.OrganizationID,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{
		Token:        token,
		Identity:     identity,
		User:         domain.User{ID: verified.ID, Email: verified.Email, Name: verified.Name},
		Organization: org,
		IsDemo:       verified.Kind == domain.PrincipalDemo,
	}, nil
}

// primaryOrganization returns nil without error for users with no membership.
func (s *AuthService) primaryOrganization(ctx context.Context, userID string) (*domain.Organization, error) {
	if s.members == nil || s.orgs == nil {
		return nil, nil
	}
	member, err := s.members.PrimaryForUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(ctx, member.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return org, err
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, actor, s.codec.Now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func actorOf(session *Session) events.Actor {
	kind := domain.PrincipalPersisted
	if session.IsDemo {
		kind = domain.PrincipalDemo
	}
	return events.Actor{
		Kind:           kind,
		SubjectID:      session.Identity.SubjectID,
		OrganizationID: session.Identity.OrganizationID,
	}
}

func unavailable(err error) error {
	return apperrors.NewServiceUnavailable("Authentication is temporarily unavailable", storeRetryAfter, err)
}

func validateSignUp(email, password string) error {
	details := map[string]any{}
	if email == "" {
		details["email"] = "required"
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		details["email"] = "invalid format"
	}
	if len(password) < minPasswordLength {
		details["password"] = "must be at least 6 characters"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("Invalid sign-up request", details)
	}
	return nil
}

func uniqueSlug(name string) string {
	base := strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
	if base == "" {
		return "org-" + suffix
	}
	return base + "-" + suffix
}

func emailDomain(email string) string {
	_, domainPart, found := strings.Cut(auth.NormalizeEmail(email), "@")
	if !found {
		return ""
	}
	return domainPart
}
