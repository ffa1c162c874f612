// Package main provides the simulation runner: it loads a ruleset and a
// scenario, then plays the configured number of turns with every
// computer-controlled civilization automated.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/simulation"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/scripting"
	"github.com/cory-johannsen/warband/internal/server"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	turns := flag.Int("turns", 0, "override simulation.turns when > 0")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *turns > 0 {
		cfg.Simulation.Turns = *turns
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var src dice.Source
	if cfg.Simulation.Seed == 0 {
		src = dice.NewCryptoSource()
	} else {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	}

	loadStart := time.Now()
	rs, err := ruleset.Load(cfg.Simulation.RulesetDir)
	if err != nil {
		logger.Fatal("loading ruleset", zap.Error(err))
	}
	state, err := world.LoadScenarioFromFile(cfg.Simulation.ScenarioFile, rs)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	logger.Info("scenario loaded",
		zap.String("scenario", cfg.Simulation.ScenarioFile),
		zap.Int("civilizations", len(state.Civilizations())),
		zap.Int("units", len(state.Units())),
		zap.Int("cities", len(state.Cities())),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	opts := simulation.Options{
		Logger:   logger,
		Scenario: cfg.Simulation.ScenarioFile,
		Seed:     cfg.Simulation.Seed,
	}

	if cfg.Scripting.Dir != "" {
		scripts := scripting.NewManager(dice.NewLoggedRoller(src, logger), logger.Named("scripting"), cfg.Scripting.InstructionLimit)
		scripts.GetUnit = unitLookup(state)
		if err := scripts.LoadTree(cfg.Scripting.Dir); err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		defer scripts.Close()
		logger.Info("scripts loaded", zap.Strings("scopes", scripts.Scopes()))
		opts.Scripts = scripts
	}

	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database health check", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts.Recorder = postgres.NewBattleLogRepository(pool.DB())
	}

	sim, err := simulation.New(state, src, opts)
	if err != nil {
		logger.Fatal("creating simulation", zap.Error(err))
	}
	gameLogger := observability.ForGame(logger, sim.ID, cfg.Simulation.ScenarioFile)

	lc := server.NewLifecycle(gameLogger)
	lc.Add("simulation", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			return sim.Run(ctx, cfg.Simulation.Turns, cfg.Simulation.TurnInterval)
		},
	})

	gameLogger.Info("simulation starting",
		zap.Int("turns", cfg.Simulation.Turns),
		zap.Duration("turn_interval", cfg.Simulation.TurnInterval),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		gameLogger.Fatal("simulation failed", zap.Error(err))
	}
	alive := 0
	for _, c := range state.Civilizations() {
		if c.IsAlive() {
			alive++
		}
	}
	gameLogger.Info("simulation finished",
		zap.Int("turn", state.Turn),
		zap.Int("civilizations_alive", alive),
		zap.Int("units", len(state.Units())),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// unitLookup exposes live units to Lua scripts.
func unitLookup(state *world.State) func(id int) *scripting.UnitInfo {
	return func(id int) *scripting.UnitInfo {
		for _, u := range state.Units() {
			if u.ID != id {
				continue
			}
			return &scripting.UnitInfo{
				ID:       u.ID,
				Name:     u.Name(),
				Civ:      u.Civ.Name,
				Health:   u.Health,
				Movement: u.Movement,
				Q:        u.Tile.Pos.Q,
				R:        u.Tile.Pos.R,
			}
		}
		return nil
	}
}
