package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"loanportal/internal/domain/product"
	"loanportal/internal/testutil/productmock"
)

func personalLoan() *product.Product {
	p := product.New("Quick Cash", "Personal Loan")
	p.ID = 1
	return p
}

func TestGetActiveProduct_Success(t *testing.T) {
	uc := NewUsecase(productmock.Fixed(personalLoan()))
	p, err := uc.GetActiveProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetActiveProduct err: %v", err)
	}
	if p.Name != "Quick Cash" {
		t.Fatalf("name = %q", p.Name)
	}
}

func TestGetActiveProduct_InactiveOrMissing(t *testing.T) {
	inactive := personalLoan()
	inactive.ID = 2
	inactive.IsActive = false
	uc := NewUsecase(productmock.Fixed(personalLoan(), inactive))

	for _, id := range []uint64{0, 2, 99} {
		if _, err := uc.GetActiveProduct(context.Background(), id); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("id %d: want ErrProductNotFound, got %v", id, err)
		}
	}
}

func TestGetActiveProduct_FiltersInactiveFromRepo(t *testing.T) {
	leaky := personalLoan()
	leaky.IsActive = false
	uc := NewUsecase(&productmock.Repo{
		GetActiveByIDFn: func(context.Context, uint64) (*product.Product, error) { return leaky, nil },
	})
	if _, err := uc.GetActiveProduct(context.Background(), 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestGetActiveProduct_RepoError(t *testing.T) {
	boom := errors.New("db down")
	uc := NewUsecase(&productmock.Repo{
		GetActiveByIDFn: func(context.Context, uint64) (*product.Product, error) { return nil, boom },
	})
	_, err := uc.GetActiveProduct(context.Background(), 1)
	if !errors.Is(err, boom) || errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want wrapped repo error, got %v", err)
	}
}

func TestListActive_ReturnsSummaries(t *testing.T) {
	business := product.New("MSME", "Business Loan")
	business.ID = 3
	business.MaxLoanAmount = decimal.NewFromInt(2_500_000)
	uc := NewUsecase(productmock.Fixed(personalLoan(), business))

	got, err := uc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].ID != 3 || got[1].Category != "Business Loan" || !got[1].MaxLoanAmount.Equal(decimal.NewFromInt(2_500_000)) {
		t.Fatalf("unexpected summary: %+v", got[1])
	}
	for _, s := range got {
		if s.MinLoanAmount.GreaterThan(s.MaxLoanAmount) {
			t.Fatalf("min > max for %+v", s)
		}
	}
}

func TestGetProductDetail(t *testing.T) {
	uc := NewUsecase(productmock.Fixed(personalLoan()))
	d, err := uc.GetProductDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProductDetail err: %v", err)
	}
	if d.AmountRange != "₹1K - ₹50K" || len(d.Features) != 3 || d.TenureRange != "1-5 years" {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestSeedDefaults(t *testing.T) {
	var created []*product.Product
	repo := &productmock.Repo{
		CountFn: func(context.Context) (int64, error) { return int64(len(created)), nil },
		CreateFn: func(_ context.Context, p *product.Product) error {
			if err := p.Validate(); err != nil {
				return err
			}
			created = append(created, p)
			return nil
		},
	}
	uc := NewUsecase(repo)

	n, err := uc.SeedDefaults(context.Background())
	if err != nil {
		t.Fatalf("SeedDefaults err: %v", err)
	}
	if n != len(DefaultProducts()) {
		t.Fatalf("seeded %d, want %d", n, len(DefaultProducts()))
	}

	// second run is a no-op
	n, err = uc.SeedDefaults(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second seed: n=%d err=%v", n, err)
	}
}
