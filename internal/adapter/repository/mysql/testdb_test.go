package mysql

import (
	"testing"

	"loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every new connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&product.Product{},
		&applicant.AccountRecord{},
		&applicant.Profile{},
		&application.Application{},
		&application.Document{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, category string, active bool) *product.Product {
	t.Helper()
	p := product.New(name, category)
	p.IsActive = active
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}
