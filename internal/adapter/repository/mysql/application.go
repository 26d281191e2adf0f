package mysql

import (
	"context"
	"errors"

	"loanportal/internal/domain/application"

	"gorm.io/gorm"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	err := r.db.WithContext(ctx).Omit("Documents").Create(a).Error
	if isDuplicate(err) {
		return application.ErrDuplicateID
	}
	return err
}

func (r *ApplicationRepository) ExistsByApplicationID(ctx context.Context, applicationID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&application.Application{}).
		Where("application_id = ?", applicationID).
		Count(&n).Error
	return n > 0, err
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*application.Application, error) {
	var out application.Application
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("application_id = ?", applicationID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&application.Application{}, id).Error
}

func (r *ApplicationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&application.Application{}).Count(&n).Error
	return n, err
}
