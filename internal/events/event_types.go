package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/status-page/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedIn  EventType = "user_signed_in"
	EventUserSignedUp  EventType = "user_signed_up"
	EventUserSignedOut EventType = "user_signed_out"
	EventSignInFailed  EventType = "sign_in_failed"
	EventDemoLogin     EventType = "demo_login"
)

// AuthEventTypes lists every event the auth flows emit.
var AuthEventTypes = []EventType{
	EventUserSignedIn,
	EventUserSignedUp,
	EventUserSignedOut,
	EventSignInFailed,
	EventDemoLogin,
}

// Actor identifies who triggered an event. SubjectID is empty for failed
// sign-ins.
type Actor struct {
	Kind           domain.PrincipalKind `json:"kind,omitempty"`
	SubjectID      string               `json:"subject_id,omitempty"`
	OrganizationID string               `json:"organization_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, actor Actor, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// SignInFailedPayload describes a rejected sign-in. The attempted email is
// kept only as its domain part.
type SignInFailedPayload struct {
	EmailDomain string `json:"email_domain"`
	Reason      string `json:"reason"`
}

// SignedUpPayload describes a new account.
type SignedUpPayload struct {
	OrganizationCreated bool `json:"organization_created"`
}

// SignedOutPayload describes a sign-out.
type SignedOutPayload struct {
	Revoked bool `json:"revoked"`
}
