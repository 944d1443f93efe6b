package dto

import (
	"time"

	"github.com/spec-kit/status-page/internal/domain"
)

// SignInRequest payload for POST /api/auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest payload for POST /api/auth/signup.
type SignUpRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	OrganizationName string `json:"organizationName"`
}

// DemoLoginRequest payload for POST /api/auth/demo. Password is accepted and ignored.
type DemoLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserView is the public shape of an account. It never carries the hash.
type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// OrganizationView is the public shape of a tenant.
type OrganizationView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SessionResponse answers sign-in, sign-up and demo login.
type SessionResponse struct {
	Success      bool              `json:"success"`
	User         UserView          `json:"user"`
	Organization *OrganizationView `json:"organization"`
	IsDemo       bool              `json:"isDemo"`
	Message      string            `json:"message,omitempty"`
}

// MeUser is the caller summary returned by GET /api/auth/me.
type MeUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// MeResponse answers GET /api/auth/me.
type MeResponse struct {
	User   MeUser `json:"user"`
	IsDemo bool   `json:"isDemo"`
}

// PrincipalView is the dashboard's view of the resolved caller.
type PrincipalView struct {
	ID             string               `json:"id"`
	Email          string               `json:"email"`
	OrganizationID string               `json:"organizationId,omitempty"`
	Kind           domain.PrincipalKind `json:"kind"`
}

// DemoCheckResponse answers GET /api/auth/demo-check.
type DemoCheckResponse struct {
	DemoMode bool   `json:"demoMode"`
	Message  string `json:"message"`
}

// NewUserView maps a user, dropping zero timestamps.
func NewUserView(u domain.User) UserView {
	view := UserView{ID: u.ID, Email: u.Email, Name: u.Name}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		view.CreatedAt = &created
	}
	return view
}

// NewOrganizationView maps an optional organization.
func NewOrganizationView(org *domain.Organization) *OrganizationView {
	if org == nil {
		return nil
	}
	return &OrganizationView{ID: org.ID, Name: org.Name, Slug: org.Slug}
}

// MemberView is one row of an organization's member list.
type MemberView struct {
	ID       string            `json:"id"`
	UserID   string            `json:"userId"`
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Role     domain.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joinedAt"`
}

// NewMemberViews maps a member list, never returning nil.
func NewMemberViews(members []domain.Member) []MemberView {
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, MemberView{
			ID:       m.ID,
			UserID:   m.UserID,
			Email:    m.Email,
			Name:     m.Name,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}
	return views
}
