package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/thejerf/abtime"
	"go.uber.org/zap"
)

// SessionTTL is the lifetime of every issued token and of the session cookie.
const SessionTTL = 7 * 24 * time.Hour

// fallbackSecret keeps local environments usable when no secret is configured.
// Any deployment running on it accepts tokens forged by anyone who reads this file.
const fallbackSecret = "status-page-fallback-secret-change-me"

// Identity is the claim set carried inside a session token.
type Identity struct {
	SubjectID      string
	Email          string
	OrganizationID string
	TokenID        string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// IsDemo reports whether the identity belongs to a synthetic demo caller.
func (i Identity) IsDemo() bool {
	return IsDemoSubject(i.SubjectID)
}

type tokenClaims struct {
	UserID         string `json:"userId"`
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes signed session tokens.
type TokenCodec struct {
	secret []byte
	clock  abtime.AbstractTime
	parser *jwt.Parser
}

// TokenOption customizes a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(clock abtime.AbstractTime) TokenOption {
	return func(tc *TokenCodec) {
		tc.clock = clock
	}
}

// NewTokenCodec builds a codec around the process-wide signing secret.
func NewTokenCodec(secret string, logger *zap.Logger, opts ...TokenOption) *TokenCodec {
	if secret == "" {
		if logger != nil {
			logger.Warn("JWT_SECRET is not set; signing session tokens with the built-in fallback secret. Set JWT_SECRET before exposing this service.")
		}
		secret = fallbackSecret
	}

	tc := &TokenCodec{secret: []byte(secret), clock: abtime.NewRealTime()}
	for _, opt := range opts {
		opt(tc)
	}
	tc.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.clock.Now),
	)
	return tc
}

// Issue signs the identity. IssuedAt, ExpiresAt and TokenID are assigned here;
// the returned Identity carries them.
func (tc *TokenCodec) Issue(identity Identity) (string, Identity, error) {
	if identity.SubjectID == "" {
		return "", Identity{}, ErrMissingSubject
	}
	issuedAt := tc.clock.Now().UTC().Truncate(time.Second)
	identity.IssuedAt = issuedAt
	identity.ExpiresAt = issuedAt.Add(SessionTTL)
	identity.TokenID = uuid.NewString()

	claims := &tokenClaims{
		UserID:         identity.SubjectID,
		Email:          identity.Email,
		OrganizationID: identity.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        identity.TokenID,
			Subject:   identity.SubjectID,
			IssuedAt:  jwt.NewNumericDate(identity.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", Identity{}, err
	}
	return signed, identity, nil
}

// Decode validates a token and returns its identity. Every failure, whether
// signature, structure or expiry, yields ok == false.
func (tc *TokenCodec) Decode(tokenStr string) (identity Identity, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			identity, ok = Identity{}, false
		}
	}()

	if tokenStr == "" {
		return Identity{}, false
	}

	parsed, err := tc.parser.ParseWithClaims(tokenStr, &tokenClaims{}, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, false
	}

	claims, isClaims := parsed.Claims.(*tokenClaims)
	if !isClaims || claims.UserID == "" || claims.ExpiresAt == nil {
		return Identity{}, false
	}

	identity = Identity{
		SubjectID:      claims.UserID,
		Email:          claims.Email,
		OrganizationID: claims.OrganizationID,
		TokenID:        claims.ID,
		ExpiresAt:      claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return identity, true
}

// Now exposes the codec clock so callers computing remaining lifetimes agree with expiry checks.
func (tc *TokenCodec) Now() time.Time {
	return tc.clock.Now()
}
