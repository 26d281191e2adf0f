package applicantmock

import (
	"context"
	"sync"

	domain "loanportal/internal/domain/applicant"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies applicant.Repository.
type Repo struct {
	GetAccountFn    func(ctx context.Context, accountID uint64) (*domain.AccountRecord, error)
	GetProfileFn    func(ctx context.Context, accountID uint64) (*domain.Profile, error)
	CreateProfileFn func(ctx context.Context, p *domain.Profile) error
}

func (m *Repo) GetAccount(ctx context.Context, accountID uint64) (*domain.AccountRecord, error) {
	if m.GetAccountFn != nil {
		return m.GetAccountFn(ctx, accountID)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *Repo) GetProfile(ctx context.Context, accountID uint64) (*domain.Profile, error) {
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, accountID)
	}
	return nil, domain.ErrProfileNotFound
}

func (m *Repo) CreateProfile(ctx context.Context, p *domain.Profile) error {
	if m.CreateProfileFn != nil {
		return m.CreateProfileFn(ctx, p)
	}
	return nil
}

// Memory is an in-memory applicant.Repository with unique profiles per account.
type Memory struct {
	mu       sync.Mutex
	Accounts map[uint64]domain.AccountRecord
	Profiles map[uint64]domain.Profile
	nextID   uint64
}

func NewMemory(accounts ...domain.AccountRecord) *Memory {
	m := &Memory{Accounts: map[uint64]domain.AccountRecord{}, Profiles: map[uint64]domain.Profile{}}
	for _, a := range accounts {
		m.Accounts[a.ID] = a
	}
	return m
}

func (m *Memory) GetAccount(_ context.Context, accountID uint64) (*domain.AccountRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (m *Memory) GetProfile(_ context.Context, accountID uint64) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *Memory) CreateProfile(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Profiles[p.AccountID]; ok {
		return domain.ErrProfileExists
	}
	m.nextID++
	p.ID = m.nextID
	m.Profiles[p.AccountID] = *p
	return nil
}
