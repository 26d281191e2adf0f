package catalog

import (
	"context"
	"errors"
	"fmt"

	"loanportal/internal/domain/product"
)

var ErrProductNotFound = product.ErrNotFound

type Usecase struct{ repo product.Repository }

func NewUsecase(r product.Repository) *Usecase { return &Usecase{repo: r} }

// GetActiveProduct returns the product only when it exists and is active.
func (u *Usecase) GetActiveProduct(ctx context.Context, id uint64) (*product.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	p, err := u.repo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	// repositories filter on is_active; double check so a stale cache or mock can't leak one
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (u *Usecase) ListActive(ctx context.Context) ([]ProductSummary, error) {
	products, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductSummary, 0, len(products))
	for i := range products {
		out = append(out, toSummary(&products[i]))
	}
	return out, nil
}

func (u *Usecase) GetProductDetail(ctx context.Context, id uint64) (*ProductDetail, error) {
	p, err := u.GetActiveProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{
		ProductSummary:   toSummary(p),
		Icon:             p.Icon,
		ShortDescription: p.ShortDescription,
		Features:         p.FeaturesList(),
		AmountRange:      p.AmountRangeDisplay(),
		InterestRate:     p.InterestRateDisplay(),
		TenureRange:      p.TenureRangeDisplay(),
		MinTenure:        p.MinTenure,
		MaxTenure:        p.MaxTenure,
	}, nil
}

// SeedDefaults inserts the starter catalogue when the table is empty.
func (u *Usecase) SeedDefaults(ctx context.Context) (int, error) {
	n, err := u.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	seeded := 0
	for _, p := range DefaultProducts() {
		if err := u.repo.Create(ctx, p); err != nil {
			return seeded, fmt.Errorf("seed %q: %w", p.Name, err)
		}
		seeded++
	}
	return seeded, nil
}

func toSummary(p *product.Product) ProductSummary {
	return ProductSummary{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		MinLoanAmount: p.MinLoanAmount,
		MaxLoanAmount: p.MaxLoanAmount,
	}
}
