package productmock

import (
	"context"

	"loanportal/internal/domain/product"
)

var _ product.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies product.Repository.
type Repo struct {
	GetActiveByIDFn func(ctx context.Context, id uint64) (*product.Product, error)
	ListActiveFn    func(ctx context.Context) ([]product.Product, error)
	CreateFn        func(ctx context.Context, p *product.Product) error
	CountFn         func(ctx context.Context) (int64, error)
}

func (m *Repo) GetActiveByID(ctx context.Context, id uint64) (*product.Product, error) {
	if m.GetActiveByIDFn != nil {
		return m.GetActiveByIDFn(ctx, id)
	}
	return nil, product.ErrNotFound
}

func (m *Repo) ListActive(ctx context.Context) ([]product.Product, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Create(ctx context.Context, p *product.Product) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

// Fixed returns a Repo serving the given products by id, honouring IsActive.
func Fixed(products ...*product.Product) *Repo {
	return &Repo{
		GetActiveByIDFn: func(_ context.Context, id uint64) (*product.Product, error) {
			for _, p := range products {
				if p.ID == id && p.IsActive {
					return p, nil
				}
			}
			return nil, product.ErrNotFound
		},
		ListActiveFn: func(context.Context) ([]product.Product, error) {
			var out []product.Product
			for _, p := range products {
				if p.IsActive {
					out = append(out, *p)
				}
			}
			return out, nil
		},
	}
}
