package applicationmock

import (
	"context"
	"sort"
	"sync"

	domain "loanportal/internal/domain/application"
)

var (
	_ domain.Repository         = (*Repo)(nil)
	_ domain.DocumentRepository = (*DocumentRepo)(nil)
)

// Repo is a function-backed mock that satisfies application.Repository.
// Unset functions behave like an empty table.
type Repo struct {
	CreateFn                func(ctx context.Context, a *domain.Application) error
	ExistsByApplicationIDFn func(ctx context.Context, applicationID string) (bool, error)
	GetByApplicationIDFn    func(ctx context.Context, applicationID string) (*domain.Application, error)
	DeleteFn                func(ctx context.Context, id uint64) error
	CountFn                 func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) ExistsByApplicationID(ctx context.Context, applicationID string) (bool, error) {
	if m.ExistsByApplicationIDFn != nil {
		return m.ExistsByApplicationIDFn(ctx, applicationID)
	}
	return false, nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

// DocumentRepo is a function-backed mock that satisfies application.DocumentRepository.
type DocumentRepo struct {
	CreateFn              func(ctx context.Context, d *domain.Document) error
	ListByApplicationFn   func(ctx context.Context, applicationPK uint64) ([]domain.Document, error)
	DeleteByApplicationFn func(ctx context.Context, applicationPK uint64) error
}

func (m *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *DocumentRepo) ListByApplication(ctx context.Context, applicationPK uint64) ([]domain.Document, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, applicationPK)
	}
	return nil, nil
}

func (m *DocumentRepo) DeleteByApplication(ctx context.Context, applicationPK uint64) error {
	if m.DeleteByApplicationFn != nil {
		return m.DeleteByApplicationFn(ctx, applicationPK)
	}
	return nil
}

// Memory is an in-memory store backing both repositories, with a unique
// application_id constraint.
type Memory struct {
	mu      sync.Mutex
	apps    map[uint64]domain.Application
	docs    map[uint64]domain.Document
	nextApp uint64
	nextDoc uint64
}

func NewMemory() *Memory {
	return &Memory{apps: map[uint64]domain.Application{}, docs: map[uint64]domain.Document{}}
}

// Applications returns the application.Repository view of m.
func (m *Memory) Applications() *Repo {
	return &Repo{
		CreateFn: func(_ context.Context, a *domain.Application) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, existing := range m.apps {
				if existing.ApplicationID == a.ApplicationID {
					return domain.ErrDuplicateID
				}
			}
			m.nextApp++
			a.ID = m.nextApp
			m.apps[a.ID] = *a
			return nil
		},
		ExistsByApplicationIDFn: func(_ context.Context, applicationID string) (bool, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, a := range m.apps {
				if a.ApplicationID == applicationID {
					return true, nil
				}
			}
			return false, nil
		},
		GetByApplicationIDFn: func(_ context.Context, applicationID string) (*domain.Application, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, a := range m.apps {
				if a.ApplicationID == applicationID {
					return &a, nil
				}
			}
			return nil, domain.ErrNotFound
		},
		DeleteFn: func(_ context.Context, id uint64) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.apps, id)
			return nil
		},
		CountFn: func(context.Context) (int64, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return int64(len(m.apps)), nil
		},
	}
}

// Documents returns the application.DocumentRepository view of m.
func (m *Memory) Documents() *DocumentRepo {
	return &DocumentRepo{
		CreateFn: func(_ context.Context, d *domain.Document) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.nextDoc++
			d.ID = m.nextDoc
			m.docs[d.ID] = *d
			return nil
		},
		ListByApplicationFn: func(_ context.Context, applicationPK uint64) ([]domain.Document, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []domain.Document
			for _, d := range m.docs {
				if d.ApplicationPK == applicationPK {
					out = append(out, d)
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
			return out, nil
		},
		DeleteByApplicationFn: func(_ context.Context, applicationPK uint64) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			for id, d := range m.docs {
				if d.ApplicationPK == applicationPK {
					delete(m.docs, id)
				}
			}
			return nil
		},
	}
}

// DocumentCount is the number of stored document rows across all applications.
func (m *Memory) DocumentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}
