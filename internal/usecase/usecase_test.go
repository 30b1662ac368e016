package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"job-portal-backend/internal/domain"
	"job-portal-backend/pkg/apperror"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) Save(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, folder string, asset *domain.Asset) (string, error) {
	args := m.Called(ctx, folder, asset)
	return args.String(0), args.Error(1)
}

// memAccounts is an in-memory directory with the same uniqueness guarantee as
// the unique index on accounts.email.
type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*domain.Account
	seq  int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Profile.Skills = append([]string{}, a.Profile.Skills...)
	return &c
}

func (r *memAccounts) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *memAccounts) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, nil
}

func (r *memAccounts) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == account.Email {
			return nil, apperror.Conflict(domain.MsgEmailTaken)
		}
	}
	r.seq++
	created := cloneAccount(account)
	created.ID = fmt.Sprintf("acc-%d", r.seq)
	r.byID[created.ID] = created
	return cloneAccount(created), nil
}

func (r *memAccounts) Save(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[account.ID]; !ok {
		return apperror.NotFound(domain.MsgAccountNotFound)
	}
	for id, a := range r.byID {
		if id != account.ID && a.Email == account.Email {
			return apperror.Conflict(domain.MsgEmailTaken)
		}
	}
	r.byID[account.ID] = cloneAccount(account)
	return nil
}

func (r *memAccounts) Ping(ctx context.Context) error { return nil }

func (r *memAccounts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// stalledAccounts never answers lookups before the caller's deadline.
type stalledAccounts struct {
	*memAccounts
}

func (r stalledAccounts) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, errors.New("stalled lookup was not canceled")
	}
}

type loginFailure struct {
	email  string
	reason string
}

type recordingEvents struct {
	mu            sync.Mutex
	registered    []string
	conflicts     []string
	loginOK       []string
	loginFailures []loginFailure
	updated       []string
}

func (e *recordingEvents) Registered(ctx context.Context, email string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registered = append(e.registered, email)
}

func (e *recordingEvents) RegisterConflict(ctx context.Context, email string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conflicts = append(e.conflicts, email)
}

func (e *recordingEvents) LoginSucceeded(ctx context.Context, email string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loginOK = append(e.loginOK, email)
}

func (e *recordingEvents) LoginFailed(ctx context.Context, email, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loginFailures = append(e.loginFailures, loginFailure{email: email, reason: reason})
}

func (e *recordingEvents) ProfileUpdated(ctx context.Context, accountID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updated = append(e.updated, accountID)
}
