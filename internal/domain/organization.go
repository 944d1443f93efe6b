package domain

import "time"

// Organization is a tenant publishing a status page.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
