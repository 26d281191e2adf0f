package application

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Submission error taxonomy. Every failure except ErrNotificationFailure is
// surfaced to the caller as a declined submission.
var (
	ErrNotFound                  = errors.New("loan application not found")
	ErrDuplicateID               = errors.New("application id already taken")
	ErrInvalidProduct            = errors.New("invalid loan product selected")
	ErrMissingGuestDetails       = errors.New("all personal details are required for guest applications")
	ErrInvalidNumericInput       = errors.New("invalid numeric input")
	ErrAmountOutOfRange          = errors.New("requested amount out of range")
	ErrFileTooLarge              = errors.New("file too large")
	ErrUnsupportedFileType       = errors.New("unsupported file type")
	ErrMissingMandatoryDocuments = errors.New("missing mandatory documents")
	ErrIdentifierExhausted       = errors.New("could not allocate a unique application id")
	ErrNotificationFailure       = errors.New("notification failure")
)

type Bound string

const (
	BoundMinimum Bound = "minimum"
	BoundMaximum Bound = "maximum"
)

// AmountRangeError names the violated product bound and its value.
type AmountRangeError struct {
	Bound Bound
	Limit decimal.Decimal
}

func (e *AmountRangeError) Error() string {
	if e.Bound == BoundMinimum {
		return "Requested amount is below minimum limit of " + Rupees(e.Limit)
	}
	return "Requested amount exceeds maximum limit of " + Rupees(e.Limit)
}

// Rupees formats v as "₹50,000.00".
func Rupees(v decimal.Decimal) string {
	s := v.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	b.WriteString("₹")
	if v.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func (e *AmountRangeError) Unwrap() error { return ErrAmountOutOfRange }

// MissingDocumentsError carries the display labels of absent mandatory documents.
type MissingDocumentsError struct {
	Labels []string
}

func (e *MissingDocumentsError) Error() string {
	return "Missing mandatory documents: " + strings.Join(e.Labels, ", ")
}

func (e *MissingDocumentsError) Unwrap() error { return ErrMissingMandatoryDocuments }
