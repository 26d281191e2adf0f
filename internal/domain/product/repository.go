package product

import "context"

type Repository interface {
	// Active products only; ErrNotFound for missing or inactive ids.
	GetActiveByID(ctx context.Context, id uint64) (*Product, error)
	// Active products ordered by category, name.
	ListActive(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Count(ctx context.Context) (int64, error)
}
