package applicant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
)

// ContactFields are the contact details supplied with a submission.
type ContactFields struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (c ContactFields) trimmed() ContactFields {
	return ContactFields{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
	}
}

func (c ContactFields) complete() bool {
	return c.FirstName != "" && c.LastName != "" && c.Email != "" && c.Phone != ""
}

// Resolved is the applicant as it will be stored on the application.
type Resolved struct {
	AccountID *uint64
	ProfileID *uint64
	ContactFields
}

func (r Resolved) IsGuest() bool { return r.AccountID == nil }

type Resolver struct{ repo domain.Repository }

func NewResolver(r domain.Repository) *Resolver { return &Resolver{repo: r} }

// Resolve fills the contact fields for the submitting identity. Account holders
// fall back to their stored values for blank fields; guests must supply all four.
func (r *Resolver) Resolve(ctx context.Context, id domain.Identity, supplied ContactFields) (*Resolved, error) {
	in := supplied.trimmed()
	if !id.Authenticated {
		if !in.complete() {
			return nil, application.ErrMissingGuestDetails
		}
		return &Resolved{ContactFields: in}, nil
	}

	acct, err := r.repo.GetAccount(ctx, id.AccountID)
	if err != nil {
		return nil, err
	}
	prof, err := r.ensureProfile(ctx, acct.ID, in.Phone)
	if err != nil {
		return nil, err
	}

	accountID, profileID := acct.ID, prof.ID
	return &Resolved{
		AccountID: &accountID,
		ProfileID: &profileID,
		ContactFields: ContactFields{
			FirstName: firstNonEmpty(in.FirstName, acct.FirstName),
			LastName:  firstNonEmpty(in.LastName, acct.LastName),
			Email:     firstNonEmpty(in.Email, acct.Email),
			Phone:     firstNonEmpty(in.Phone, prof.PhoneNumber),
		},
	}, nil
}

// ensureProfile returns the account's profile, creating it on first use.
// A concurrent creator losing the unique-index race re-reads the winner's row.
func (r *Resolver) ensureProfile(ctx context.Context, accountID uint64, phone string) (*domain.Profile, error) {
	p, err := r.repo.GetProfile(ctx, accountID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p = &domain.Profile{AccountID: accountID, PhoneNumber: phone}
	switch err := r.repo.CreateProfile(ctx, p); {
	case err == nil:
		return p, nil
	case errors.Is(err, domain.ErrProfileExists):
		return r.repo.GetProfile(ctx, accountID)
	default:
		return nil, fmt.Errorf("create profile: %w", err)
	}
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}
