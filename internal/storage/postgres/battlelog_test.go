package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/simulation"
	"github.com/cory-johannsen/warband/internal/game/world"
	pgstore "github.com/cory-johannsen/warband/internal/storage/postgres"
	"github.com/cory-johannsen/warband/internal/testutil"
)

func startGame(t *testing.T, repo *pgstore.BattleLogRepository) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, repo.StartGame(context.Background(), simulation.GameInfo{
		ID:        id,
		Scenario:  "skirmish",
		Seed:      1 << 63,
		StartedAt: time.Now().UTC(),
	}))
	return id
}

func TestBattleLog_GameLifecycle(t *testing.T) {
	repo := testutil.BattleLog(t)
	ctx := context.Background()
	id := startGame(t, repo)

	g, err := repo.Game(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "skirmish", g.Scenario)
	assert.Equal(t, uint64(1<<63), g.Seed)
	assert.Nil(t, g.FinishedAt)

	require.NoError(t, repo.FinishGame(ctx, id, 25))
	g, err = repo.Game(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25, g.Turns)
	assert.NotNil(t, g.FinishedAt)
}

func TestBattleLog_UnknownGame(t *testing.T) {
	repo := testutil.BattleLog(t)
	ctx := context.Background()

	_, err := repo.Game(ctx, uuid.New())
	assert.ErrorIs(t, err, pgstore.ErrGameNotFound)
	assert.ErrorIs(t, repo.FinishGame(ctx, uuid.New(), 1), pgstore.ErrGameNotFound)
}

func TestBattleLog_RecordTurnKeepsOrder(t *testing.T) {
	repo := testutil.BattleLog(t)
	ctx := context.Background()
	id := startGame(t, repo)

	battles := []combat.Result{
		{
			Turn: 3, Attacker: "Archer", AttackerCiv: "Barbarians", AttackerKind: combat.KindUnit,
			Defender: "Rome", DefenderCiv: "Rome", DefenderKind: combat.KindCity,
			DefenderPos: world.Position{Q: 2, R: 4}, AttackStrength: 7, DefenseStrength: 8,
			DamageToDefender: 21, DefenderHealth: 179, AttackerHealth: 100,
		},
		{
			Turn: 3, Attacker: "Warrior", AttackerCiv: "Barbarians", AttackerKind: combat.KindUnit,
			Defender: "Worker", DefenderCiv: "Rome", DefenderKind: combat.KindUnit,
			DefenderPos: world.Position{Q: 1, R: 1}, AttackStrength: 8, UnitCaptured: true,
			AttackerHealth: 100, DefenderHealth: 100,
		},
	}
	decisions := []ai.Decision{
		{Turn: 3, Civ: "Barbarians", UnitID: 7, Unit: "Archer", Pos: world.Position{Q: 2, R: 2}, Branch: ai.BranchCombat, Actions: []ai.Action{ai.ActionAttack}},
		{Turn: 3, Civ: "Barbarians", UnitID: 9, Unit: "Warrior", Pos: world.Position{Q: 0, R: 1}, Branch: ai.BranchCombat, Actions: []ai.Action{ai.ActionPillage, ai.ActionAttack}},
		{Turn: 3, Civ: "Barbarians", UnitID: 4, Unit: "Worker", Pos: world.Position{Q: 5, R: 5}, Branch: ai.BranchCivilian, Actions: []ai.Action{ai.ActionMove}},
	}
	require.NoError(t, repo.RecordTurn(ctx, id, 3, battles, decisions))

	gotBattles, err := repo.Battles(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, battles, gotBattles)

	gotDecisions, err := repo.Decisions(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, decisions, gotDecisions)

	counts, err := repo.ActionCounts(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[ai.Action]int{ai.ActionAttack: 2, ai.ActionMove: 1}, counts)

	g, err := repo.Game(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Turns)
}

func TestBattleLog_EmptyTurnIsNoop(t *testing.T) {
	repo := testutil.BattleLog(t)
	ctx := context.Background()
	id := startGame(t, repo)

	require.NoError(t, repo.RecordTurn(ctx, id, 0, nil, nil))
	got, err := repo.Battles(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBattleLog_RecordsASimulation(t *testing.T) {
	repo := testutil.BattleLog(t)
	g := testutil.NewGame(t, 6, 6)
	g.Spawn(t, "Warrior", g.Barbarians, 1, 1)
	g.Spawn(t, "Warrior", g.Rome, 2, 1)
	sim, err := simulation.New(g.State, fixedSource{}, simulation.Options{Recorder: repo, Scenario: "duel"})
	require.NoError(t, err)

	require.NoError(t, sim.Run(context.Background(), 2, 0))

	stored, err := repo.Game(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, "duel", stored.Scenario)
	assert.Equal(t, 2, stored.Turns)
	assert.NotNil(t, stored.FinishedAt)
	battles, err := repo.Battles(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, battles)
}

type fixedSource struct{}

func (fixedSource) Intn(int) int     { return 0 }
func (fixedSource) Float64() float64 { return 0.5 }
