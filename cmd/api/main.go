package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loanportal/internal/adapter/filestore"
	httpadp "loanportal/internal/adapter/http"
	"loanportal/internal/adapter/mail"
	amw "loanportal/internal/adapter/middleware"
	"loanportal/internal/adapter/mq"
	"loanportal/internal/adapter/repository/mysql"
	"loanportal/internal/config"
	"loanportal/internal/infrastructure/cache"
	"loanportal/internal/infrastructure/db"
	"loanportal/internal/infrastructure/logger"
	"loanportal/internal/infrastructure/metrics"
	"loanportal/internal/usecase/applicant"
	"loanportal/internal/usecase/catalog"
	"loanportal/internal/usecase/document"
	"loanportal/internal/usecase/notification"
	"loanportal/internal/usecase/submission"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, logCloser, err := logger.New(cfg.Logger())
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	dsn := cfg.MySQLDSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	gdb, err := db.OpenGorm(db.Options{Driver: cfg.DBDriver, DSN: dsn, LogLevel: cfg.DBLogLevel, Logger: log})
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// repositories
	productRepo := mysql.NewProductRepository(gdb)
	appRepo := mysql.NewApplicationRepository(gdb)
	docRepo := mysql.NewDocumentRepository(gdb)
	applicantRepo := mysql.NewApplicantRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	catalogUC := catalog.NewUsecase(productRepo)
	if cfg.SeedProducts {
		n, err := catalogUC.SeedDefaults(context.Background())
		if err != nil {
			return err
		}
		log.Info("loan products seeded", "count", n)
	}

	files, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		return err
	}

	var mailer notification.Mailer = mail.NewLog(log)
	if cfg.SMTPHost != "" {
		smtp, err := mail.NewSMTP(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, log)
		if err != nil {
			return err
		}
		mailer = smtp
	}
	notifyOpts := []notification.Option{notification.WithMetrics(m)}
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		notifyOpts = append(notifyOpts, notification.WithEvents(pub))
	}
	notifier := notification.NewDispatcher(mailer, files, cfg.Company(), log, notifyOpts...)

	submitUC := submission.NewUsecase(submission.Deps{
		Products:   catalogUC,
		Applicants: applicant.NewResolver(applicantRepo),
		Classifier: document.NewClassifier(cfg.DocumentPolicy()),
		Apps:       appRepo,
		Docs:       docRepo,
		UoW:        uow,
		Files:      files,
		Notifier:   notifier,
		Logger:     log,
		Metrics:    m,
	}, submission.WithMaxIDAttempts(cfg.MaxIDAttempts))

	health := httpadp.NewHandler().WithDependency("database", db.Pinger{DB: gdb})
	var idempotency echo.MiddlewareFunc = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		health.WithDependency("redis", cache.Pinger{Client: rdb})
		idempotency = amw.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), log)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	// the whole multipart body: every file plus the form fields
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))
	e.Use(amw.Identity(cfg.JWTSecret, cfg.JWTIssuer))

	submitH := httpadp.NewSubmissionHandler(submitUC, log)
	productH := httpadp.NewProductHandler(catalogUC, log)

	// routes
	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.POST("/loan-applications", submitH.SubmitApplication, idempotency)
	e.POST("/submit-loan-application/", submitH.SubmitApplication, idempotency)
	e.GET("/api/loan-products/", productH.ListProducts)
	e.GET("/api/loan-products/:id", productH.GetProduct)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				log.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
				return nil
			}
			log.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	})
}

// bodyLimit allows a handful of maximum-size documents plus form overhead.
func bodyLimit(maxFile int64) string {
	const perRequestFiles = 6
	mb := (maxFile*perRequestFiles)>>20 + 1
	return strconv.FormatInt(mb, 10) + "M"
}
