package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/thejerf/abtime"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/config"
	"github.com/spec-kit/status-page/internal/domain"
	"github.com/spec-kit/status-page/internal/events"
	"github.com/spec-kit/status-page/internal/repository"
)

var testEpoch = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = testEpoch
	user.UpdatedAt = testEpoch
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

type fakeOrgRepo struct {
	orgs map[string]*domain.Organization
	err  error
}

func (f *fakeOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	if f.err != nil {
		return f.err
	}
	org.ID = uuid.NewString()
	copied := *org
	f.orgs[org.ID] = &copied
	return nil
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	if f.err != nil {
		return nil, f.err
	}
	org, ok := f.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *org
	return &copied, nil
}

type fakeMemberRepo struct {
	members []*domain.Member
	err     error
}

func (f *fakeMemberRepo) Create(_ context.Context, member *domain.Member) error {
	if f.err != nil {
		return f.err
	}
	member.ID = uuid.NewString()
	copied := *member
	f.members = append(f.members, &copied)
	return nil
}

func (f *fakeMemberRepo) PrimaryForUser(_ context.Context, userID string) (*domain.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.members {
		if m.UserID == userID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeMemberRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	members := []domain.Member{}
	for _, m := range f.members {
		if m.OrganizationID == organizationID {
			members = append(members, *m)
		}
	}
	return members, nil
}

// fakeTx counts units of work and passes the context through.
type fakeTx struct {
	runs int
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.runs++
	return fn(ctx)
}

type memoryDenylist struct {
	ttls map[string]time.Duration
}

func (m *memoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.ttls[tokenID] = ttl
	return nil
}

func (m *memoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := m.ttls[tokenID]
	return ok, nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	svc      *AuthService
	users    *fakeUserRepo
	orgs     *fakeOrgRepo
	members  *fakeMemberRepo
	tx       *fakeTx
	denylist *memoryDenylist
	clock    *abtime.ManualTime
	codec    *auth.TokenCodec
	recorded *recorder
}

type harnessOption func(*config.AuthConfig, *AuthDependencies)

func withDemoMode() harnessOption {
	return func(cfg *config.AuthConfig, _ *AuthDependencies) { cfg.DemoMode = true }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	clock := abtime.NewManualAtTime(testEpoch)
	codec := auth.NewTokenCodec("service-test-secret", nil, auth.WithClock(clock))

	h := &harness{
		users:    newFakeUserRepo(),
		orgs:     &fakeOrgRepo{orgs: map[string]*domain.Organization{}},
		members:  &fakeMemberRepo{},
		tx:       &fakeTx{},
		denylist: &memoryDenylist{ttls: map[string]time.Duration{}},
		clock:    clock,
		codec:    codec,
		recorded: &recorder{},
	}

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(h.recorded.handle, events.AuthEventTypes...)

	cfg := config.AuthConfig{BcryptCost: bcrypt.MinCost}
	deps := AuthDependencies{
		Codec:      codec,
		UserRepo:   h.users,
		OrgRepo:    h.orgs,
		MemberRepo: h.members,
		Tx:         h.tx,
		Denylist:   h.denylist,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	h.svc = NewAuthService(cfg, deps)
	return h
}
