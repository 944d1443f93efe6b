package domain

import "time"

// MemberRole enumerates team roles inside an organization.
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Member links a user to an organization.
type Member struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           MemberRole
	Email          string
	Name           string
	CreatedAt      time.Time
}
