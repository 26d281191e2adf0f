package catalog

import "github.com/shopspring/decimal"

// ProductSummary is the selection-list view of an active product.
type ProductSummary struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	MinLoanAmount decimal.Decimal `json:"min_loan_amount"`
	MaxLoanAmount decimal.Decimal `json:"max_loan_amount"`
}

type ProductDetail struct {
	ProductSummary
	Icon             string   `json:"icon"`
	ShortDescription string   `json:"short_description"`
	Features         []string `json:"features"`
	AmountRange      string   `json:"amount_range"`
	InterestRate     string   `json:"interest_rate"`
	TenureRange      string   `json:"tenure_range"`
	MinTenure        uint16   `json:"min_tenure"`
	MaxTenure        uint16   `json:"max_tenure"`
}
