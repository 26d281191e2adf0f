package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loanportal/internal/domain/applicant"
	"loanportal/internal/domain/application"
	"loanportal/internal/domain/product"
)

type Options struct {
	// mysql or sqlite
	Driver string
	// DSN for mysql, file path for sqlite
	DSN      string
	LogLevel string
	Logger   *slog.Logger
}

func OpenGorm(o Options) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "", "mysql":
		dial = mysql.Open(o.DSN)
	case "sqlite":
		if dir := filepath.Dir(o.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		// foreign keys are off by default in sqlite
		dial = sqlite.Open(o.DSN + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", o.Driver)
	}
	db, err := openGorm(dial, gormLogger(o.Logger, o.LogLevel))
	if err != nil {
		return nil, err
	}
	if o.Driver == "sqlite" {
		sqlDB, _ := db.DB()
		// a single writer avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	}
	if o.Logger != nil {
		o.Logger.Info("gorm: connected", "driver", o.Driver)
	}
	return db, nil
}

// OpenGormWithDialector opens dial with the default pool settings and pings it.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return openGorm(dial, logger.Default.LogMode(logger.Warn))
}

func openGorm(dial gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         l,
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the portal owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&product.Product{},
		&applicant.AccountRecord{},
		&applicant.Profile{},
		&application.Application{},
		&application.Document{},
	)
}

// Pinger adapts a gorm handle to a health check dependency.
type Pinger struct{ DB *gorm.DB }

func (p Pinger) PingContext(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func gormLogger(l *slog.Logger, level string) logger.Interface {
	if l == nil {
		l = slog.Default()
	}
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	return logger.New(slogWriter{l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

type slogWriter struct{ l *slog.Logger }

func (w slogWriter) Printf(format string, args ...any) {
	w.l.Info(fmt.Sprintf(format, args...), "component", "gorm")
}
