package mysql

import (
	"context"

	"loanportal/internal/domain/application"

	"gorm.io/gorm"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *application.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationPK uint64) ([]application.Document, error) {
	var out []application.Document
	err := r.db.WithContext(ctx).
		Where("application_pk = ?", applicationPK).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *DocumentRepository) DeleteByApplication(ctx context.Context, applicationPK uint64) error {
	return r.db.WithContext(ctx).
		Where("application_pk = ?", applicationPK).
		Delete(&application.Document{}).Error
}
