package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/status-page/internal/persistence"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	if !isUniqueViolation(dup) {
		t.Fatalf("expected unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert user: %w", dup)) {
		t.Fatalf("expected wrapped unique violation to be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) || isUniqueViolation(pgx.ErrNoRows) || isUniqueViolation(nil) {
		t.Fatalf("unexpected match")
	}
}

func TestRepositoriesWithoutPool(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(nil)

	if _, err := users.GetByEmail(ctx, "ops@acme.io"); !errors.Is(err, persistence.ErrDatabaseNotConfigured) {
		t.Fatalf("expected ErrDatabaseNotConfigured, got %v", err)
	}
	if _, err := users.GetByID(ctx, "not-a-uuid"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("malformed id must read as missing, got %v", err)
	}
	if _, err := NewMemberRepository(nil).PrimaryForUser(ctx, "demo-user-1"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("malformed user id must read as missing, got %v", err)
	}

	members := NewMemberRepository(nil)
	if list, err := members.ListByOrganization(ctx, "demo-admin-org"); err != nil || len(list) != 0 {
		t.Fatalf("malformed organization id must list nothing, got %v, %v", list, err)
	}
	if _, err := members.ListByOrganization(ctx, "6f1c2d3e-0000-4000-8000-000000000001"); !errors.Is(err, persistence.ErrDatabaseNotConfigured) {
		t.Fatalf("expected ErrDatabaseNotConfigured, got %v", err)
	}
}

func TestSessionDenylistWithoutClient(t *testing.T) {
	ctx := context.Background()
	denylist := NewSessionDenylist(nil)

	if err := denylist.Revoke(ctx, "tok", 0); err != nil {
		t.Fatalf("expired token revoke should be a no-op, got %v", err)
	}
	if err := denylist.Revoke(ctx, "tok", time.Minute); !errors.Is(err, persistence.ErrRedisNotConfigured) {
		t.Fatalf("expected ErrRedisNotConfigured, got %v", err)
	}
	if revoked, err := denylist.IsRevoked(ctx, ""); revoked || err != nil {
		t.Fatalf("empty token id: got %v, %v", revoked, err)
	}
}
