package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("loan product not found")
	ErrInvalidBounds  = errors.New("invalid loan product bounds")
	hundred           = decimal.NewFromInt(100)
	thousand          = decimal.NewFromInt(1_000)
	million           = decimal.NewFromInt(1_000_000)
	defaultFeatureSet = "✓ No collateral required\n✓ Quick approval\n✓ Flexible repayment options"
)

// Table: loan_products
type Product struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"id"`
	Name             string          `gorm:"size:200;not null" json:"name"`
	Category         string          `gorm:"size:100;index:idx_products_category_name" json:"category"`
	Icon             string          `gorm:"size:50;default:'💰'" json:"icon"`
	ShortDescription string          `gorm:"size:255" json:"short_description"`
	MinLoanAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"min_loan_amount"`
	MaxLoanAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"max_loan_amount"`
	MinInterestRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"min_interest_rate"`
	MaxInterestRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"max_interest_rate"`
	MinTenure        uint16          `gorm:"not null;default:12" json:"min_tenure"`
	MaxTenure        uint16          `gorm:"not null;default:60" json:"max_tenure"`
	Features         string          `gorm:"type:text" json:"features"`
	IsActive         bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "loan_products" }

// New returns a product carrying the catalogue defaults for every bound.
func New(name, category string) *Product {
	return &Product{
		Name:            name,
		Category:        category,
		Icon:            "💰",
		MinLoanAmount:   decimal.NewFromInt(1_000),
		MaxLoanAmount:   decimal.NewFromInt(50_000),
		MinInterestRate: decimal.NewFromInt(5),
		MaxInterestRate: decimal.NewFromInt(15),
		MinTenure:       12,
		MaxTenure:       60,
		Features:        defaultFeatureSet,
		IsActive:        true,
	}
}

// Validate enforces min <= max for every bounded pair, non-negative amounts
// and rates within [0, 100].
func (p *Product) Validate() error {
	switch {
	case p.MinLoanAmount.IsNegative() || p.MaxLoanAmount.IsNegative():
		return fmt.Errorf("%w: loan amounts must be non-negative", ErrInvalidBounds)
	case p.MinLoanAmount.GreaterThan(p.MaxLoanAmount):
		return fmt.Errorf("%w: min_loan_amount %s > max_loan_amount %s", ErrInvalidBounds, p.MinLoanAmount, p.MaxLoanAmount)
	case p.MinInterestRate.IsNegative() || p.MaxInterestRate.GreaterThan(hundred):
		return fmt.Errorf("%w: interest rates must be within 0-100", ErrInvalidBounds)
	case p.MinInterestRate.GreaterThan(p.MaxInterestRate):
		return fmt.Errorf("%w: min_interest_rate %s > max_interest_rate %s", ErrInvalidBounds, p.MinInterestRate, p.MaxInterestRate)
	case p.MinTenure > p.MaxTenure:
		return fmt.Errorf("%w: min_tenure %d > max_tenure %d", ErrInvalidBounds, p.MinTenure, p.MaxTenure)
	}
	return nil
}

// BeforeSave keeps invalid bounds out of the table regardless of the writer.
func (p *Product) BeforeSave(_ *gorm.DB) error { return p.Validate() }

// IsBusiness reports whether the category names a business loan.
func (p *Product) IsBusiness() bool {
	return p.Category != "" && strings.Contains(strings.ToLower(p.Category), "business")
}

// FeaturesList splits Features on new lines, dropping blanks.
func (p *Product) FeaturesList() []string {
	var out []string
	for _, f := range strings.Split(p.Features, "\n") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// TenureRangeDisplay renders the tenure bounds in whole years, e.g. "1-5 years".
func (p *Product) TenureRangeDisplay() string {
	minYears, maxYears := p.MinTenure/12, p.MaxTenure/12
	if minYears == maxYears {
		if minYears > 1 {
			return fmt.Sprintf("%d years", minYears)
		}
		return fmt.Sprintf("%d year", minYears)
	}
	return fmt.Sprintf("%d-%d years", minYears, maxYears)
}

// AmountRangeDisplay renders the amount bounds compactly, e.g. "₹1K - ₹2.5M".
func (p *Product) AmountRangeDisplay() string {
	return compactAmount(p.MinLoanAmount) + " - " + compactAmount(p.MaxLoanAmount)
}

// InterestRateDisplay renders "5.00% - 15.00%", or a single rate when both bounds match.
func (p *Product) InterestRateDisplay() string {
	if p.MinInterestRate.Equal(p.MaxInterestRate) {
		return p.MinInterestRate.StringFixed(2) + "%"
	}
	return p.MinInterestRate.StringFixed(2) + "% - " + p.MaxInterestRate.StringFixed(2) + "%"
}

func compactAmount(v decimal.Decimal) string {
	switch {
	case v.GreaterThanOrEqual(million):
		return "₹" + v.Div(million).StringFixed(1) + "M"
	case v.GreaterThanOrEqual(thousand):
		return "₹" + v.Div(thousand).StringFixed(0) + "K"
	default:
		return "₹" + v.StringFixed(0)
	}
}
