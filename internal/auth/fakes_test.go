package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/status-page/internal/domain"
)

const testSecret = "test-signing-secret"

var testEpoch = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	err     error
	lookups int
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

type fakeMembers struct {
	byUser map[string]*domain.Member
	err    error
}

func (f *fakeMembers) PrimaryForUser(_ context.Context, userID string) (*domain.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return m, nil
}

type fakeDenylist struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[tokenID]
	return ok, nil
}

func newTestCodec(t *testing.T) (*TokenCodec, *abtime.ManualTime) {
	t.Helper()
	clock := abtime.NewManualAtTime(testEpoch)
	return NewTokenCodec(testSecret, nil, WithClock(clock)), clock
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}
