package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/status-page/internal/domain"
	"github.com/spec-kit/status-page/internal/persistence"
)

// OrganizationRepository persists tenants.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository returns a Postgres-backed implementation.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	q, err := persistence.QuerierFrom(ctx, r.pool)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO organizations (name, slug)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	err = q.QueryRow(ctx, query, org.Name, org.Slug).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pgx.ErrNoRows
	}
	q, err := persistence.QuerierFrom(ctx, r.pool)
	if err != nil {
		return nil, err
	}

	const query = `
        SELECT id, name, slug, created_at, updated_at
        FROM organizations WHERE id=$1`

	var org domain.Organization
	if err := q.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}
