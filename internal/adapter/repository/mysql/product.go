package mysql

import (
	"context"
	"errors"

	"loanportal/internal/domain/product"

	"gorm.io/gorm"
)

type ProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) GetActiveByID(ctx context.Context, id uint64) (*product.Product, error) {
	var out product.Product
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category ASC, name ASC").
		Find(&out).Error
	return out, err
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&product.Product{}).Count(&n).Error
	return n, err
}
