package applicant

import "context"

type Repository interface {
	GetAccount(ctx context.Context, accountID uint64) (*AccountRecord, error)
	GetProfile(ctx context.Context, accountID uint64) (*Profile, error)
	// CreateProfile returns ErrProfileExists when the account already has one.
	CreateProfile(ctx context.Context, p *Profile) error
}
