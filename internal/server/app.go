// Package server wires the dev backend: configuration, attachment storage
// (in memory or PostgreSQL), the presign driver and the HTTP API, and runs it
// until the context is cancelled or a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/attachkeeper/internal/logging"
	"github.com/dmitrijs2005/attachkeeper/internal/server/attachments"
	"github.com/dmitrijs2005/attachkeeper/internal/server/config"
	"github.com/dmitrijs2005/attachkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/attachkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/attachkeeper/internal/server/presign"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 30 * time.Second

var (
	sqlOpen       = sql.Open
	runMigrations = migrations.Run
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: cfg, logger: logger}

	p, err := app.newPresigner(ctx)
	if err != nil {
		return nil, fmt.Errorf("presigner init error: %w", err)
	}

	repo, err := app.newRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	svc := attachments.NewService(repo, logger)
	h := httpapi.NewHandler(p, svc, logger)
	app.handler = httpapi.NewRouter(h, logger, cfg.AllowedOrigins)

	return app, nil
}

func (app *App) newPresigner(ctx context.Context) (presign.Presigner, error) {
	switch app.config.PresignDriver {
	case config.DriverS3:
		return presign.NewS3Presigner(ctx, presign.S3Options{
			AccessKey:    app.config.S3AccessKey,
			SecretKey:    app.config.S3SecretKey,
			Region:       app.config.S3Region,
			BaseEndpoint: app.config.S3BaseEndpoint,
			Bucket:       app.config.S3Bucket,
			TTL:          app.config.CredentialTTL,
		})
	case config.DriverMinio:
		p, err := presign.NewMinioPresigner(presign.MinioOptions{
			Endpoint:  app.config.S3BaseEndpoint,
			AccessKey: app.config.S3AccessKey,
			SecretKey: app.config.S3SecretKey,
			Region:    app.config.S3Region,
			Bucket:    app.config.S3Bucket,
			TTL:       app.config.CredentialTTL,
		})
		if err != nil {
			return nil, err
		}
		created, err := p.EnsureBucket(ctx)
		if err != nil {
			app.logger.Warn(ctx, "bucket bootstrap failed", "bucket", app.config.S3Bucket, "error", err)
		} else if created {
			app.logger.Info(ctx, "bucket created", "bucket", app.config.S3Bucket)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown presign driver %q", app.config.PresignDriver)
	}
}

func (app *App) newRepository(ctx context.Context) (attachments.Repository, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Info(ctx, "using in-memory attachment storage")
		return attachments.NewInMemoryRepository(), nil
	}

	db, err := sqlOpen("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app.db = db
	return attachments.NewPostgresRepository(db), nil
}

// Handler returns the HTTP API.
func (app *App) Handler() http.Handler {
	return app.handler
}

// Run serves the HTTP API until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT
// arrives, then shuts down gracefully and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.Close()

	srv := &http.Server{
		Addr:         app.config.HTTPAddr,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "server listening", "addr", app.config.HTTPAddr, "presign_driver", app.config.PresignDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	app.logger.Info(context.Background(), "server stopped")
	return nil
}

func (app *App) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "db close failed", "error", err)
		}
		app.db = nil
	}
}
