package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	action := flag.String("action", "up", "Migration action: up, down, version, force")
	version := flag.Uint("version", 0, "Target version (for force action)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)

	migrator, err := database.OpenMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	logger = logger.With(slog.String("database", migrator.Database()))

	switch *action {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		logger.Info("migrations applied")

	case "down":
		if err := migrator.Rollback(); err != nil {
			return err
		}
		logger.Info("last migration rolled back")

	case "version":
		current, err := migrator.Current()
		if err != nil {
			return err
		}
		logger.Info("schema version", slog.Uint64("version", uint64(current.Version)), slog.Bool("dirty", current.Dirty))

	case "force":
		if err := migrator.Force(*version); err != nil {
			return err
		}
		logger.Warn("schema version forced", slog.Uint64("version", uint64(*version)))

	default:
		return fmt.Errorf("invalid action %q (use: up, down, version, force)", *action)
	}

	return nil
}
