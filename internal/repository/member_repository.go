package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/status-page/internal/domain"
	"github.com/spec-kit/status-page/internal/persistence"
)

// MemberRepository persists organization memberships.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	// PrimaryForUser returns the user's oldest membership.
	PrimaryForUser(ctx context.Context, userID string) (*domain.Member, error)
	// ListByOrganization returns members oldest first. An unknown or
	// malformed organization id yields an empty list.
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Member, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	q, err := persistence.QuerierFrom(ctx, r.pool)
	if err != nil {
		return err
	}

	role := member.Role
	if role == "" {
		role = domain.MemberRoleMember
	}

	const query = `
        INSERT INTO members (organization_id, user_id, role, email, name)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err = q.QueryRow(ctx, query,
		member.OrganizationID,
		member.UserID,
		string(role),
		member.Email,
		member.Name,
	).Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	member.Role = role
	return nil
}

func (r *memberRepository) PrimaryForUser(ctx context.Context, userID string) (*domain.Member, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, pgx.ErrNoRows
	}
	q, err := persistence.QuerierFrom(ctx, r.pool)
	if err != nil {
		return nil, err
	}

	const query = `
        SELECT id, organization_id, user_id, role, email, name, created_at
        FROM members
        WHERE user_id=$1
        ORDER BY created_at ASC, id ASC
        LIMIT 1`

	var (
		member domain.Member
		role   string
	)
	if err := q.QueryRow(ctx, query, userID).Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&role,
		&member.Email,
		&member.Name,
		&member.CreatedAt,
	); err != nil {
		return nil, err
	}
	member.Role = domain.MemberRole(role)
	return &member, nil
}

func (r *memberRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Member, error) {
	if _, err := uuid.Parse(organizationID); err != nil {
		return []domain.Member{}, nil
	}
	q, err := persistence.QuerierFrom(ctx, r.pool)
	if err != nil {
		return nil, err
	}

	const query = `
        SELECT id, organization_id, user_id, role, email, name, created_at
        FROM members
        WHERE organization_id=$1
        ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		var (
			member domain.Member
			role   string
		)
		if err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.UserID,
			&role,
			&member.Email,
			&member.Name,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}
		member.Role = domain.MemberRole(role)
		members = append(members, member)
	}
	return members, rows.Err()
}
