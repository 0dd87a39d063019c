// Package main provides the PostgreSQL schema migration runner.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/apprentice/internal/config"
	"github.com/cory-johannsen/apprentice/internal/observability"
	"github.com/cory-johannsen/apprentice/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up, down or version")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	force := flag.Int("force", -1, "mark the schema clean at this version and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging, "migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Storage.Driver != "postgres" {
		// The sqlite store applies its embedded schema on open.
		logger.Fatal("migrations only apply to the postgres storage driver",
			zap.String("driver", cfg.Storage.Driver),
		)
	}

	m, err := postgres.NewMigrator(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.Error(err))
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			logger.Fatal("forcing version", zap.Int("version", *force), zap.Error(err))
		}
		logger.Info("schema version forced", zap.Int("version", *force))
		return
	}

	switch *direction {
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logger.Fatal("reading schema version", zap.Error(err))
		}
		logger.Info("schema version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
			zap.Bool("empty", errors.Is(err, migrate.ErrNilVersion)),
		)
		return
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		logger.Fatal("invalid direction: must be 'up', 'down' or 'version'", zap.String("direction", *direction))
	}

	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		logger.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, _ := m.Version()
	logger.Info("migration complete",
		zap.String("direction", *direction),
		zap.Bool("changed", !noChange),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}
