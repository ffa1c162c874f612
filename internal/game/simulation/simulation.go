// Package simulation drives whole turns: it refreshes every civilization,
// automates the computer-controlled ones in registration order, updates
// the barbarian encampments and hands the turn's battles and decisions to a
// Recorder.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/barbarian"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/movement"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// ScriptCaller is the Lua hook dispatcher shared by the resolver and the
// automation engine.
type ScriptCaller interface {
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// GameInfo describes one simulation run for the Recorder.
type GameInfo struct {
	ID        uuid.UUID
	Scenario  string
	Seed      uint64
	StartedAt time.Time
}

// Recorder persists what happened during a run.
type Recorder interface {
	StartGame(ctx context.Context, game GameInfo) error
	RecordTurn(ctx context.Context, gameID uuid.UUID, turn int, battles []combat.Result, decisions []ai.Decision) error
	FinishGame(ctx context.Context, gameID uuid.UUID, turns int) error
}

type nopRecorder struct{}

func (nopRecorder) StartGame(context.Context, GameInfo) error { return nil }
func (nopRecorder) RecordTurn(context.Context, uuid.UUID, int, []combat.Result, []ai.Decision) error {
	return nil
}
func (nopRecorder) FinishGame(context.Context, uuid.UUID, int) error { return nil }

// Options configures New. Every field is optional.
type Options struct {
	Scripts  ScriptCaller
	Recorder Recorder
	// Meter overrides the global OpenTelemetry meter.
	Meter    metric.Meter
	Logger   *zap.Logger
	Scenario string
	Seed     uint64
}

// TurnSummary reports one completed turn.
type TurnSummary struct {
	Turn        int
	Decisions   int
	Battles     int
	Bombardment int
	Destroyed   int
	Spawned     int
	Elapsed     time.Duration
}

// Simulation owns the collaborators wired around one game state.
//
// Simulation is not safe for concurrent use.
type Simulation struct {
	ID uuid.UUID

	state    *world.State
	engine   *ai.Engine
	battle   *ai.Battle
	camps    *barbarian.Manager
	recorder Recorder
	metrics  *Metrics
	logger   *zap.Logger
	info     GameInfo
	started  bool

	battles   []combat.Result
	decisions []ai.Decision

	// OnTurn, when set, receives every turn summary.
	OnTurn func(TurnSummary)
}

// New wires movement, battle resolution, automation and the encampment
// manager around state.
//
// Precondition: state and src must not be nil.
// Postcondition: Returns a ready Simulation, or an error if the ruleset's
// encampment settings or the meter are unusable.
func New(state *world.State, src dice.Source, opts Options) (*Simulation, error) {
	if state == nil {
		panic("simulation.New: state must not be nil")
	}
	if src == nil {
		panic("simulation.New: src must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	metrics, err := NewMetrics(opts.Meter)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	var (
		combatScripts combat.ScriptCaller
		aiScripts     ai.ScriptCaller
	)
	if opts.Scripts != nil {
		combatScripts = opts.Scripts
		aiScripts = opts.Scripts
	}

	camps, err := barbarian.NewManager(state, src, logger.Named("barbarian"))
	if err != nil {
		return nil, fmt.Errorf("creating encampment manager: %w", err)
	}
	mover := movement.New(state)
	resolver := combat.NewResolver(state, src, combatScripts, logger.Named("combat"))
	battle := ai.NewBattle(mover, resolver)
	upkeep := ai.NewUpkeep(state, mover, src)
	engine := ai.NewEngine(state, mover, battle, upkeep, aiScripts, logger.Named("ai"))

	s := &Simulation{
		ID:       uuid.New(),
		state:    state,
		engine:   engine,
		battle:   battle,
		camps:    camps,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
	}
	s.info = GameInfo{ID: s.ID, Scenario: opts.Scenario, Seed: opts.Seed}
	resolver.OnResolved = s.onBattle
	engine.OnDecision = func(d ai.Decision) { s.decisions = append(s.decisions, d) }
	return s, nil
}

// State returns the simulated game.
func (s *Simulation) State() *world.State { return s.state }

// Camps returns the encampment manager.
func (s *Simulation) Camps() *barbarian.Manager { return s.camps }

func (s *Simulation) onBattle(r combat.Result) {
	s.battles = append(s.battles, r)
	s.camps.CampAttacked(r.DefenderPos)
}

// Step plays one full turn.
//
// Postcondition: state.Turn is incremented and the turn has been handed to
// the Recorder. A Recorder error is returned after the turn is applied.
func (s *Simulation) Step(ctx context.Context) (TurnSummary, error) {
	if err := s.start(ctx); err != nil {
		return TurnSummary{}, err
	}
	began := time.Now()
	turn := s.state.Turn
	sum := TurnSummary{Turn: turn}

	s.camps.ShareTechs()
	for _, civ := range s.state.Civilizations() {
		s.state.StartTurn(civ)
	}
	for _, civ := range s.state.Civilizations() {
		if !civ.AIControlled || !civ.IsAlive() {
			continue
		}
		s.engine.Automate(civ)
		sum.Bombardment += s.battle.BombardFromCities(civ)
	}
	spawned := s.camps.Update()
	sum.Spawned = len(spawned)

	battles, decisions := s.battles, s.decisions
	s.battles, s.decisions = nil, nil
	sum.Battles = len(battles)
	sum.Decisions = len(decisions)
	for _, r := range battles {
		s.metrics.recordBattle(ctx, r)
		if r.AttackerDestroyed {
			sum.Destroyed++
		}
		if r.DefenderDestroyed {
			sum.Destroyed++
		}
	}
	for _, d := range decisions {
		s.metrics.recordDecision(ctx, d)
	}
	s.metrics.recordTurn(ctx, sum.Spawned)

	s.state.Turn++
	sum.Elapsed = time.Since(began)
	s.logger.Info("turn complete",
		zap.Int("turn", turn),
		zap.Int("decisions", sum.Decisions),
		zap.Int("battles", sum.Battles),
		zap.Int("destroyed", sum.Destroyed),
		zap.Int("spawned", sum.Spawned),
		zap.Duration("elapsed", sum.Elapsed),
	)
	if s.OnTurn != nil {
		s.OnTurn(sum)
	}
	if err := s.recorder.RecordTurn(ctx, s.ID, turn, battles, decisions); err != nil {
		return sum, fmt.Errorf("recording turn %d: %w", turn, err)
	}
	return sum, nil
}

func (s *Simulation) start(ctx context.Context) error {
	if s.started {
		return nil
	}
	s.info.StartedAt = time.Now().UTC()
	if err := s.recorder.StartGame(ctx, s.info); err != nil {
		return fmt.Errorf("recording game start: %w", err)
	}
	s.started = true
	return nil
}

// Run plays turns until the count is reached or ctx is cancelled. A
// positive interval paces the turns; zero plays them back to back.
//
// Precondition: turns >= 1 and interval >= 0.
// Postcondition: the run is finished with the Recorder even when ctx is
// cancelled, using a fresh context.
func (s *Simulation) Run(ctx context.Context, turns int, interval time.Duration) error {
	if turns < 1 {
		panic("simulation.Run: turns must be >= 1")
	}
	if interval < 0 {
		panic("simulation.Run: interval must be >= 0")
	}
	played := 0
	defer func() {
		if !s.started {
			return
		}
		if err := s.recorder.FinishGame(context.WithoutCancel(ctx), s.ID, played); err != nil {
			s.logger.Warn("recording game finish", zap.Error(err))
		}
	}()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for played < turns {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.Step(ctx); err != nil {
			return err
		}
		played++
	}
	return nil
}
