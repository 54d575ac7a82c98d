package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/todo-app/internal/config"
	"github.com/phrazzld/todo-app/internal/platform/memory"
	"github.com/phrazzld/todo-app/internal/platform/metrics"
	"github.com/phrazzld/todo-app/internal/platform/postgres"
	"github.com/phrazzld/todo-app/internal/session"
	"github.com/phrazzld/todo-app/internal/store"
	"github.com/phrazzld/todo-app/internal/web"
	"github.com/phrazzld/todo-app/internal/worker"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when the memory store is configured.
	db *sql.DB

	metrics  *metrics.Metrics
	pool     *worker.Pool
	sessions *session.Manager
	renderer *web.Renderer
}

// newApplication creates a new application instance with all dependencies
// initialized and the worker pool started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	var err error
	app.sessions, err = session.NewManager(session.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	app.renderer, err = web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize templates: %w", err)
	}

	source, err := app.setupConnSource(ctx)
	if err != nil {
		app.cleanup(ctx)
		return nil, err
	}

	app.pool = worker.NewPool(source, worker.PoolConfig{
		WorkerCount:    cfg.Worker.Count,
		RequestTimeout: time.Duration(cfg.Worker.RequestTimeoutMS) * time.Millisecond,
	}, logger)
	app.pool.SetObserver(app.metrics)

	if err := app.pool.Start(ctx); err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupConnSource builds the connection source for the configured store.
func (app *application) setupConnSource(ctx context.Context) (store.ConnSource, error) {
	switch app.config.Store.Driver {
	case "memory":
		app.logger.Warn("using in-memory task store, data is lost on exit")
		return memory.NewConnSource(memory.NewTaskStore(), 0), nil

	case "postgres":
		db, err := setupAppDatabase(ctx, app.config, app.logger)
		if err != nil {
			return nil, err
		}
		app.db = db

		if app.config.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
		return postgres.NewConnSource(db), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", app.config.Store.Driver)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains the worker pool and then closes the database. Workers must
// stop first because each one is holding a connection.
func (app *application) cleanup(ctx context.Context) {
	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if app.pool != nil {
		if err := app.pool.Stop(ctx); err != nil {
			app.logger.Error("error stopping worker pool", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
