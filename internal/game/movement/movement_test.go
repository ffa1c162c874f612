package movement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/movement"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/testutil"
)

func TestCanPass_Terrain(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)
	mountain := g.SetTerrain(t, 1, 0, "Mountain")
	ocean := g.SetTerrain(t, 0, 1, "Ocean")

	assert.False(t, mv.CanPass(w, mountain))
	assert.False(t, mv.CanPass(w, ocean))
	g.Rome.Techs["Optics"] = true
	assert.True(t, mv.CanPass(w, ocean))
}

func TestCanPass_ShipsStayAtSea(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	mv := movement.New(g.State)
	g.SetTerrain(t, 0, 0, "Ocean")
	sea := g.SetTerrain(t, 1, 0, "Coast")
	ship := g.Spawn(t, "Trireme", g.Rome, 0, 0)

	assert.True(t, mv.CanPass(ship, sea))
	assert.False(t, mv.CanPass(ship, g.Tile(t, 0, 1)))
}

func TestCanPass_ForeignOccupants(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)
	g.Spawn(t, "Worker", g.Barbarians, 1, 0)
	g.Found(t, g.Barbarians, 2, 2, "Camp", 1)
	g.Spawn(t, "Worker", g.Rome, 0, 1)

	assert.False(t, mv.CanPass(w, g.Tile(t, 1, 0)))
	assert.False(t, mv.CanPass(w, g.Tile(t, 2, 2)))
	assert.True(t, mv.CanPass(w, g.Tile(t, 0, 1)))
	assert.True(t, mv.CanMoveTo(w, g.Tile(t, 0, 1)))
}

func TestCanMoveTo_OwnUnitBlocksSameSlot(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)
	g.Spawn(t, "Spearman", g.Rome, 1, 0)

	assert.True(t, mv.CanPass(w, g.Tile(t, 1, 0)))
	assert.False(t, mv.CanMoveTo(w, g.Tile(t, 1, 0)))
	assert.True(t, mv.CanMoveTo(w, w.Tile))
}

func TestCanReach(t *testing.T) {
	g := testutil.NewGame(t, 5, 1)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)
	far := g.Tile(t, 4, 0)
	assert.True(t, mv.CanReach(w, far))

	g.SetTerrain(t, 2, 0, "Mountain")
	assert.False(t, mv.CanReach(w, far))
	assert.Equal(t, 2, w.Movement, "querying must not spend movement")
}

func TestPathTo(t *testing.T) {
	g := testutil.NewGame(t, 5, 1)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)

	path := mv.PathTo(w, g.Tile(t, 3, 0))
	require.Len(t, path, 4)
	assert.Equal(t, w.Tile, path[0])
	assert.Equal(t, world.Position{Q: 3, R: 0}, path[3].Pos)

	g.SetTerrain(t, 1, 0, "Mountain")
	assert.Nil(t, mv.PathTo(w, g.Tile(t, 3, 0)))
}

func TestHeadTowards_SpendsBudget(t *testing.T) {
	g := testutil.NewGame(t, 6, 1)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)

	require.True(t, mv.HeadTowards(w, g.Tile(t, 5, 0)))
	assert.Equal(t, world.Position{Q: 2, R: 0}, w.Tile.Pos)
	assert.Equal(t, 0, w.Movement)

	assert.False(t, mv.HeadTowards(w, g.Tile(t, 5, 0)))
	assert.Equal(t, world.Position{Q: 2, R: 0}, w.Tile.Pos)
}

func TestHeadTowards_RoughTerrainClampsAtZero(t *testing.T) {
	g := testutil.NewGame(t, 6, 1)
	mv := movement.New(g.State)
	forest, _ := g.State.Ruleset.Terrain("Forest")
	g.Tile(t, 1, 0).Features = append(g.Tile(t, 1, 0).Features, forest)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)
	w.Movement = 1

	require.True(t, mv.HeadTowards(w, g.Tile(t, 5, 0)))
	assert.Equal(t, world.Position{Q: 1, R: 0}, w.Tile.Pos)
	assert.Equal(t, 0, w.Movement)
}

func TestHeadTowards_DoesNotStopOnFriendlyUnit(t *testing.T) {
	g := testutil.NewGame(t, 6, 1)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)
	g.Spawn(t, "Spearman", g.Rome, 2, 0)

	require.True(t, mv.HeadTowards(w, g.Tile(t, 5, 0)))
	assert.Equal(t, world.Position{Q: 1, R: 0}, w.Tile.Pos)
	assert.Equal(t, 1, w.Movement)
}

func TestMoveToTile(t *testing.T) {
	g := testutil.NewGame(t, 4, 4)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 0, 0)

	assert.False(t, mv.MoveToTile(w, g.Tile(t, 2, 0)), "not adjacent")
	require.True(t, mv.MoveToTile(w, g.Tile(t, 1, 0)))
	assert.Equal(t, 1, w.Movement)
	assert.True(t, mv.HasMovement(w))
}

func TestReachable(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 2, 2)

	left := mv.Reachable(w)
	assert.Equal(t, 2, left[w.Tile])
	assert.Equal(t, 1, left[g.Tile(t, 3, 2)])
	assert.Equal(t, 0, left[g.Tile(t, 4, 2)])
	_, ok := left[g.Tile(t, 0, 0)]
	assert.False(t, ok)

	tiles := mv.ReachableTiles(w)
	require.NotEmpty(t, tiles)
	assert.Equal(t, w.Tile, tiles[0])
}

func TestMoveTo(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	mv := movement.New(g.State)
	w := g.Spawn(t, "Warrior", g.Rome, 2, 2)

	assert.False(t, mv.MoveTo(w, g.Tile(t, 0, 0)))
	assert.Equal(t, 2, w.Movement)
	require.True(t, mv.MoveTo(w, g.Tile(t, 3, 2)))
	assert.Equal(t, 1, w.Movement)
	assert.Equal(t, world.Position{Q: 3, R: 2}, w.Tile.Pos)
}

func TestProperty_HeadTowards_NeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 8, 8)
		mv := movement.New(g.State)
		forest, _ := g.State.Ruleset.Terrain("Forest")
		for _, tile := range g.State.Map.Tiles() {
			if rapid.IntRange(0, 3).Draw(rt, "forest") == 0 {
				tile.Features = append(tile.Features, forest)
			}
		}
		w := g.Spawn(rt, "Warrior", g.Rome, 0, 0)
		w.Movement = rapid.IntRange(0, 4).Draw(rt, "movement")
		dest := g.Tile(rt, rapid.IntRange(0, 7).Draw(rt, "q"), rapid.IntRange(0, 7).Draw(rt, "r"))

		before := w.Tile
		moved := mv.HeadTowards(w, dest)
		if w.Movement < 0 {
			rt.Fatalf("movement went negative: %d", w.Movement)
		}
		if !moved && w.Tile != before {
			rt.Fatalf("unit moved while reporting no move")
		}
		if moved && w.Tile.AerialDistanceTo(dest) >= before.AerialDistanceTo(dest) {
			rt.Fatalf("unit did not get closer: %v -> %v towards %v", before.Pos, w.Tile.Pos, dest.Pos)
		}
	})
}
