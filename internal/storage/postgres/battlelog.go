package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/simulation"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// ErrGameNotFound is returned when a game lookup yields no results.
var ErrGameNotFound = errors.New("game not found")

// Game is a recorded simulation run.
type Game struct {
	ID         uuid.UUID
	Scenario   string
	Seed       uint64
	Turns      int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// BattleLogRepository persists games with their battles and unit decisions.
// It satisfies simulation.Recorder.
type BattleLogRepository struct {
	db *pgxpool.Pool
}

var _ simulation.Recorder = (*BattleLogRepository)(nil)

// NewBattleLogRepository creates a BattleLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleLogRepository(db *pgxpool.Pool) *BattleLogRepository {
	if db == nil {
		panic("postgres.NewBattleLogRepository: db must not be nil")
	}
	return &BattleLogRepository{db: db}
}

// StartGame inserts the games row for a new run.
//
// Postcondition: the game exists with zero turns and no finish time.
func (r *BattleLogRepository) StartGame(ctx context.Context, g simulation.GameInfo) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO games (id, scenario, seed, started_at) VALUES ($1, $2, $3, $4)`,
		g.ID, g.Scenario, int64(g.Seed), g.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting game %s: %w", g.ID, err)
	}
	return nil
}

// RecordTurn stores one turn's battles and decisions atomically, keeping
// their order within the turn.
func (r *BattleLogRepository) RecordTurn(ctx context.Context, gameID uuid.UUID, turn int, battles []combat.Result, decisions []ai.Decision) error {
	if len(battles) == 0 && len(decisions) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if len(battles) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"battles"},
			[]string{
				"game_id", "turn", "seq",
				"attacker", "attacker_civ", "attacker_kind",
				"defender", "defender_civ", "defender_kind", "q", "r",
				"attack_strength", "defense_strength",
				"damage_to_defender", "damage_to_attacker",
				"attacker_health", "defender_health",
				"attacker_destroyed", "defender_destroyed", "city_captured", "unit_captured",
			},
			pgx.CopyFromSlice(len(battles), func(i int) ([]any, error) {
				b := battles[i]
				return []any{
					gameID, turn, i,
					b.Attacker, b.AttackerCiv, b.AttackerKind.String(),
					b.Defender, b.DefenderCiv, b.DefenderKind.String(), b.DefenderPos.Q, b.DefenderPos.R,
					b.AttackStrength, b.DefenseStrength,
					b.DamageToDefender, b.DamageToAttacker,
					b.AttackerHealth, b.DefenderHealth,
					b.AttackerDestroyed, b.DefenderDestroyed, b.CityCaptured, b.UnitCaptured,
				}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying battles for turn %d: %w", turn, err)
		}
	}

	if len(decisions) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"decisions"},
			[]string{"game_id", "turn", "seq", "civ", "unit_id", "unit", "q", "r", "branch", "actions"},
			pgx.CopyFromSlice(len(decisions), func(i int) ([]any, error) {
				d := decisions[i]
				actions := make([]string, len(d.Actions))
				for j, a := range d.Actions {
					actions[j] = string(a)
				}
				return []any{gameID, turn, i, d.Civ, d.UnitID, d.Unit, d.Pos.Q, d.Pos.R, string(d.Branch), actions}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying decisions for turn %d: %w", turn, err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE games SET turns = GREATEST(turns, $2) WHERE id = $1`, gameID, turn+1)
	if err != nil {
		return fmt.Errorf("advancing game %s: %w", gameID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing turn %d: %w", turn, err)
	}
	return nil
}

// FinishGame stamps the run as finished after the given number of turns.
//
// Postcondition: Returns ErrGameNotFound if the game was never started.
func (r *BattleLogRepository) FinishGame(ctx context.Context, gameID uuid.UUID, turns int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE games SET turns = $2, finished_at = NOW() WHERE id = $1`,
		gameID, turns,
	)
	if err != nil {
		return fmt.Errorf("finishing game %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// Game loads a recorded run.
//
// Postcondition: Returns ErrGameNotFound if no such game exists.
func (r *BattleLogRepository) Game(ctx context.Context, id uuid.UUID) (Game, error) {
	var (
		g    Game
		seed int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, scenario, seed, turns, started_at, finished_at FROM games WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Scenario, &seed, &g.Turns, &g.StartedAt, &g.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrGameNotFound
		}
		return Game{}, fmt.Errorf("querying game %s: %w", id, err)
	}
	g.Seed = uint64(seed)
	return g, nil
}

// Battles returns every battle of a game in the order it was fought.
func (r *BattleLogRepository) Battles(ctx context.Context, gameID uuid.UUID) ([]combat.Result, error) {
	rows, err := r.db.Query(ctx,
		`SELECT turn, attacker, attacker_civ, attacker_kind, defender, defender_civ, defender_kind, q, r,
		        attack_strength, defense_strength, damage_to_defender, damage_to_attacker,
		        attacker_health, defender_health,
		        attacker_destroyed, defender_destroyed, city_captured, unit_captured
		 FROM battles WHERE game_id = $1 ORDER BY turn, seq`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying battles for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []combat.Result
	for rows.Next() {
		var (
			b       combat.Result
			atkKind string
			defKind string
			q, rr   int
		)
		if err := rows.Scan(&b.Turn, &b.Attacker, &b.AttackerCiv, &atkKind, &b.Defender, &b.DefenderCiv, &defKind, &q, &rr,
			&b.AttackStrength, &b.DefenseStrength, &b.DamageToDefender, &b.DamageToAttacker,
			&b.AttackerHealth, &b.DefenderHealth,
			&b.AttackerDestroyed, &b.DefenderDestroyed, &b.CityCaptured, &b.UnitCaptured,
		); err != nil {
			return nil, fmt.Errorf("scanning battle: %w", err)
		}
		b.AttackerKind = parseKind(atkKind)
		b.DefenderKind = parseKind(defKind)
		b.DefenderPos = world.Position{Q: q, R: rr}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battles: %w", err)
	}
	return out, nil
}

// Decisions returns the decisions of one game turn in the order they were made.
func (r *BattleLogRepository) Decisions(ctx context.Context, gameID uuid.UUID, turn int) ([]ai.Decision, error) {
	rows, err := r.db.Query(ctx,
		`SELECT turn, civ, unit_id, unit, q, r, branch, actions
		 FROM decisions WHERE game_id = $1 AND turn = $2 ORDER BY seq`,
		gameID, turn,
	)
	if err != nil {
		return nil, fmt.Errorf("querying decisions for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []ai.Decision
	for rows.Next() {
		var (
			d       ai.Decision
			q, rr   int
			branch  string
			actions []string
		)
		if err := rows.Scan(&d.Turn, &d.Civ, &d.UnitID, &d.Unit, &q, &rr, &branch, &actions); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		d.Pos = world.Position{Q: q, R: rr}
		d.Branch = ai.Branch(branch)
		for _, a := range actions {
			d.Actions = append(d.Actions, ai.Action(a))
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}
	return out, nil
}

// ActionCounts tallies the final action of every decision in a game.
func (r *BattleLogRepository) ActionCounts(ctx context.Context, gameID uuid.UUID) (map[ai.Action]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT actions[array_upper(actions, 1)] AS final, COUNT(*)
		 FROM decisions WHERE game_id = $1 GROUP BY final`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting actions for game %s: %w", gameID, err)
	}
	defer rows.Close()

	out := make(map[ai.Action]int)
	for rows.Next() {
		var (
			action string
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scanning action count: %w", err)
		}
		out[ai.Action(action)] = n
	}
	return out, rows.Err()
}

func parseKind(s string) combat.Kind {
	if s == combat.KindCity.String() {
		return combat.KindCity
	}
	return combat.KindUnit
}
