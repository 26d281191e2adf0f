package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"loanportal/internal/infrastructure/logger"
	"loanportal/internal/usecase/document"
	"loanportal/internal/usecase/notification"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	// mysql or sqlite
	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"loanportal.db"`
	DBLogLevel string `envconfig:"DB_LOG_LEVEL" default:"warn"`

	MySQLHost string `envconfig:"MYSQL_HOST" default:"mysql"`
	MySQLPort string `envconfig:"MYSQL_PORT" default:"3306"`
	MySQLDB   string `envconfig:"MYSQL_DB" default:"loanportal"`
	MySQLUser string `envconfig:"MYSQL_USER" default:"loanportal"`
	MySQLPass string `envconfig:"MYSQL_PASS" default:"loanportal"`

	// Idempotency is enabled only when RedisAddr is set.
	RedisAddr    string `envconfig:"REDIS_ADDR"`
	RedisDB      int    `envconfig:"REDIS_DB" default:"0"`
	IdempTTLSecs int    `envconfig:"IDEMPOTENCY_TTL_SECONDS" default:"300"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER"`

	UploadDir         string   `envconfig:"UPLOAD_DIR" default:"media"`
	MaxUploadBytes    int64    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	AllowedExtensions []string `envconfig:"ALLOWED_EXTENSIONS" default:"pdf,jpg,jpeg,png"`
	MaxIDAttempts     int      `envconfig:"MAX_ID_ATTEMPTS" default:"5"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`

	CompanyName      string `envconfig:"COMPANY_NAME" default:"QuickLoans"`
	CompanyEmail     string `envconfig:"COMPANY_EMAIL" default:"support@quickloans.com"`
	CompanyPhone     string `envconfig:"COMPANY_PHONE" default:"+1-800-LOAN-HELP"`
	CompanyAddress   string `envconfig:"COMPANY_ADDRESS" default:"123 Finance Street, Money City, MC 12345"`
	WebsiteURL       string `envconfig:"WEBSITE_URL" default:"https://quickloans.com"`
	SupportURL       string `envconfig:"SUPPORT_URL" default:"https://quickloans.com/support"`
	DefaultFromEmail string `envconfig:"DEFAULT_FROM_EMAIL" default:"noreply@quickloans.com"`

	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"loanportal.events"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	LogOutput     string `envconfig:"LOG_OUTPUT" default:"stdout"`
	LogFile       string `envconfig:"LOG_FILE" default:"logs/loanportal.log"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"10"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`

	SeedProducts bool `envconfig:"SEED_PRODUCTS" default:"false"`
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// a missing file is fine; real env always wins
		_ = godotenv.Load(f)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if c.UploadDir == "" {
		return errors.New("missing UPLOAD_DIR")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if len(c.AllowedExtensions) == 0 {
		return errors.New("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if c.MaxIDAttempts <= 0 {
		return fmt.Errorf("MAX_ID_ATTEMPTS must be positive, got %d", c.MaxIDAttempts)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) DocumentPolicy() document.Policy {
	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, e := range c.AllowedExtensions {
		if e = strings.TrimSpace(e); e != "" {
			exts = append(exts, e)
		}
	}
	return document.Policy{MaxFileBytes: c.MaxUploadBytes, AllowedExtensions: exts}
}

func (c *Config) Company() notification.Company {
	return notification.Company{
		Name:       c.CompanyName,
		Email:      c.CompanyEmail,
		Phone:      c.CompanyPhone,
		Address:    c.CompanyAddress,
		WebsiteURL: c.WebsiteURL,
		SupportURL: c.SupportURL,
		FromEmail:  c.DefaultFromEmail,
	}
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Output:     c.LogOutput,
		FilePath:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAgeDays,
		Compress:   true,
	}
}
