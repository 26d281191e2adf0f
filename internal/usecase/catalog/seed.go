package catalog

import (
	"github.com/shopspring/decimal"

	"loanportal/internal/domain/product"
)

// DefaultProducts is the starter catalogue used by SEED_PRODUCTS for local setups.
func DefaultProducts() []*product.Product {
	personal := product.New("Personal Loan", "Personal Loan")
	personal.ShortDescription = "Quick unsecured funds for personal needs"

	home := product.New("Home Loan", "Home Loan")
	home.Icon = "🏠"
	home.MinLoanAmount = decimal.NewFromInt(100_000)
	home.MaxLoanAmount = decimal.NewFromInt(5_000_000)
	home.MinInterestRate = decimal.RequireFromString("8.5")
	home.MaxInterestRate = decimal.RequireFromString("11.5")
	home.MinTenure, home.MaxTenure = 60, 360

	car := product.New("Car Loan", "Car Loan")
	car.Icon = "🚗"
	car.MinLoanAmount = decimal.NewFromInt(50_000)
	car.MaxLoanAmount = decimal.NewFromInt(1_500_000)

	business := product.New("MSME Business Loan", "Business Loan")
	business.Icon = "🏢"
	business.MinLoanAmount = decimal.NewFromInt(50_000)
	business.MaxLoanAmount = decimal.NewFromInt(2_500_000)
	business.Features = "✓ Udyam registered businesses\n✓ Working capital and expansion\n✓ Flexible repayment options"

	return []*product.Product{personal, home, car, business}
}
