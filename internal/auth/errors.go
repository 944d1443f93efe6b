package auth

import "errors"

// Clients only ever see the generic sign-in message; these sentinels let the
// transport layer pick a status without leaking which branch failed.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrStorageUnavailable = errors.New("identity storage unavailable")
	// ErrMissingSubject is returned by Issue; such a token could never be decoded.
	ErrMissingSubject     = errors.New("token subject is required")
)
