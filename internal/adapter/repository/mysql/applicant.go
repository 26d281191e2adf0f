package mysql

import (
	"context"
	"errors"

	"loanportal/internal/domain/applicant"

	"gorm.io/gorm"
)

// ApplicantRepository reads accounts and owns applicant profiles.
type ApplicantRepository struct{ db *gorm.DB }

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository { return &ApplicantRepository{db: db} }

func (r *ApplicantRepository) GetAccount(ctx context.Context, accountID uint64) (*applicant.AccountRecord, error) {
	var out applicant.AccountRecord
	err := r.db.WithContext(ctx).Where("id = ?", accountID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, applicant.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicantRepository) GetProfile(ctx context.Context, accountID uint64) (*applicant.Profile, error) {
	var out applicant.Profile
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, applicant.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProfile relies on ux_profiles_account_id to keep one profile per account.
func (r *ApplicantRepository) CreateProfile(ctx context.Context, p *applicant.Profile) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isDuplicate(err) {
		return applicant.ErrProfileExists
	}
	return err
}
