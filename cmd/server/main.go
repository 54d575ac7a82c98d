// Package main implements the entry point for the todo server, which serves
// a server-rendered task list backed by a pool of database workers.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/todo-app/internal/config"
	"github.com/phrazzld/todo-app/internal/platform/logger"
	"github.com/phrazzld/todo-app/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a database migration command (up, down, status) and exit")
	configFile := flag.String("config", "", "Path to a configuration file")
	flag.Parse()

	if err := run(*configFile, *migrateCmd); err != nil {
		fmt.Fprintf(os.Stderr, "todo server: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, sets up logging and then either runs a migration
// command or serves HTTP until SIGINT or SIGTERM.
func run(configFile, migrateCmd string) error {
	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_driver", cfg.Store.Driver,
		"worker_count", cfg.Worker.Count)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrateCmd != "" {
		return runMigrations(ctx, cfg, log, migrateCmd)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// errMigrationsNeedPostgres is returned by -migrate when the memory store is configured.
var errMigrationsNeedPostgres = errors.New("migrations require store.driver=postgres")

// runMigrations executes one goose command against the configured database.
func runMigrations(ctx context.Context, cfg *config.Config, log *slog.Logger, command string) error {
	if cfg.Store.Driver != "postgres" {
		return errMigrationsNeedPostgres
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}(db)

	return postgres.Migrate(ctx, db, command, log)
}
