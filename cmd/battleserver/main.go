// Package main runs the Apprentice battle server. It wires together
// configuration, storage, the combat engine, and the Telnet acceptor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/apprentice/internal/config"
	"github.com/cory-johannsen/apprentice/internal/frontend/handlers"
	"github.com/cory-johannsen/apprentice/internal/frontend/telnet"
	"github.com/cory-johannsen/apprentice/internal/game/combat"
	"github.com/cory-johannsen/apprentice/internal/game/dice"
	"github.com/cory-johannsen/apprentice/internal/game/progress"
	"github.com/cory-johannsen/apprentice/internal/observability"
	"github.com/cory-johannsen/apprentice/internal/server"
	"github.com/cory-johannsen/apprentice/internal/storage/postgres"
	"github.com/cory-johannsen/apprentice/internal/storage/sqlite"
)

// healthInterval is the period of the PostgreSQL health check.
const healthInterval = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Type)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting Apprentice battle server",
		zap.String("mode", cfg.Server.Mode),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger, server.WithStopTimeout(cfg.Telnet.WriteTimeout+5*time.Second))

	accounts, slots, err := openStorage(ctx, cfg, lifecycle, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}

	engine, err := buildEngine(cfg.Combat, logger)
	if err != nil {
		logger.Fatal("building combat engine", zap.Error(err))
	}

	var encounters map[string]*combat.Encounter
	if cfg.Combat.EncountersDir != "" {
		encounters, err = combat.LoadEncounters(cfg.Combat.EncountersDir)
		if err != nil {
			logger.Fatal("loading encounters", zap.Error(err))
		}
	}
	logger.Info("combat content loaded",
		zap.Int("attacks", engine.Catalog().Len()),
		zap.Int("encounters", len(encounters)),
	)

	authHandler := handlers.NewAuthHandler(handlers.Options{
		Accounts:        accounts,
		Slots:           slots,
		Engine:          engine,
		Encounter:       defaultEncounter(cfg.Combat),
		Encounters:      encounters,
		PlayerMaxHealth: cfg.Combat.PlayerMaxHealth,
		Pacing:          cfg.Combat.Pacing,
		Logger:          logger,
	})
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, authHandler, logger)

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: telnetAcceptor.ListenAndServe,
		StopFn:  telnetAcceptor.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openStorage connects the configured backend and registers its closer.
func openStorage(ctx context.Context, cfg config.Config, lc *server.Lifecycle, logger *zap.Logger) (handlers.AccountStore, progress.SaveSlotStore, error) {
	dbStart := time.Now()
	switch cfg.Storage.Driver {
	case "postgres":
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			return nil, nil, fmt.Errorf("applying migrations: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		stop := make(chan struct{})
		lc.Add("postgres", &server.FuncService{
			StartFn: func() error { return pool.Monitor(stop, healthInterval, logger) },
			StopFn:  func() { close(stop) },
		})
		lc.AddCloser("postgres", func() error {
			pool.Close()
			return nil
		})
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return postgres.NewAccountRepository(pool.DB()), postgres.NewSaveSlotRepository(pool.DB()), nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		lc.AddCloser("sqlite", store.Close)
		logger.Info("database opened",
			zap.String("path", cfg.Storage.SQLitePath),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// buildEngine assembles the attack catalog and the enemy damage policy.
func buildEngine(cfg config.CombatConfig, logger *zap.Logger) (*combat.Engine, error) {
	catalog := combat.DefaultCatalog()
	if cfg.AttacksFile != "" {
		c, err := combat.LoadCatalogFile(cfg.AttacksFile)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	var src dice.Source
	if cfg.Seed != 0 {
		src = dice.NewSeededSource(cfg.Seed)
		logger.Warn("enemy damage is seeded", zap.Uint64("seed", cfg.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	policy, err := combat.NewDicePolicy(dice.NewLoggedRoller(src, logger.Named("dice")), cfg.EnemyDamage)
	if err != nil {
		return nil, err
	}

	mode, err := combat.ParseLethalMode(cfg.LethalMode)
	if err != nil {
		return nil, err
	}
	return combat.NewEngine(combat.EngineConfig{
		Catalog:    catalog,
		Policy:     policy,
		LethalMode: mode,
		Logger:     logger,
	})
}

// defaultEncounter builds the encounter fought by a bare "fight".
func defaultEncounter(cfg config.CombatConfig) combat.SessionConfig {
	enemies := make([]combat.EnemyConfig, len(cfg.EnemyMaxHealth))
	for i, hp := range cfg.EnemyMaxHealth {
		enemies[i] = combat.EnemyConfig{MaxHealth: hp}
	}
	return combat.SessionConfig{
		PlayerName:      "Apprentice",
		PlayerMaxHealth: cfg.PlayerMaxHealth,
		Enemies:         enemies,
	}
}
