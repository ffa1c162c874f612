package testutil

import (
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// Ruleset returns a small self-consistent ruleset used across game tests.
//
// Eras: Ancient era (embark defense 3), Classical era (embark defense 5).
// Techs: Bronze Working, Archery (ancient); Optics (classical, enables embarkation).
// Terrains: Grassland, Plains, Desert (land); Ocean, Coast (water); Hill, Forest
// (features); Mountain (impassable).
// Units: Warrior -> Spearman, Archer, Brute (barbarian-only flavour), Worker,
// Settler, Trireme, Fighter.
//
// Postcondition: the returned ruleset validates.
func Ruleset() *ruleset.Ruleset {
	eras := []*ruleset.Era{
		{Name: "Ancient era", Number: 0, EmbarkDefense: 3},
		{Name: "Classical era", Number: 1, EmbarkDefense: 5},
	}
	techs := []*ruleset.Technology{
		{Name: "Bronze Working", Era: "Ancient era", Cost: 55},
		{Name: "Archery", Era: "Ancient era", Cost: 35},
		{Name: "Optics", Era: "Classical era", Cost: 80, Prerequisites: []string{"Bronze Working"}, EnablesEmbarkation: true},
	}
	terrains := []*ruleset.Terrain{
		{Name: "Grassland", Type: ruleset.TerrainLand, MovementCost: 1},
		{Name: "Plains", Type: ruleset.TerrainLand, MovementCost: 1},
		{Name: "Desert", Type: ruleset.TerrainLand, MovementCost: 1},
		{Name: "Ocean", Type: ruleset.TerrainWater, MovementCost: 1},
		{Name: "Coast", Type: ruleset.TerrainWater, MovementCost: 1},
		{Name: "Hill", Type: ruleset.TerrainFeature, MovementCost: 2, CityStrength: 5, DefenseBonus: 25},
		{Name: "Forest", Type: ruleset.TerrainFeature, MovementCost: 2, DefenseBonus: 25},
		{Name: "Mountain", Type: ruleset.TerrainLand, MovementCost: 1, Impassable: true},
	}
	improvements := []*ruleset.Improvement{
		{Name: "Farm", Pillageable: true},
		{Name: "Mine", Pillageable: true},
		{Name: "Barbarian encampment", Pillageable: false},
	}
	buildings := []*ruleset.Building{
		{Name: "Walls", CityStrength: 5, CityHealth: 50},
		{Name: "Castle", CityStrength: 7, CityHealth: 25},
		{Name: "Granary"},
	}
	units := []*ruleset.BaseUnit{
		{Name: "Warrior", Domain: ruleset.DomainLand, Strength: 8, Movement: 2, Cost: 40, UpgradesTo: "Spearman"},
		{Name: "Spearman", Domain: ruleset.DomainLand, Strength: 11, Movement: 2, Cost: 56, RequiredTech: "Bronze Working"},
		{Name: "Archer", Domain: ruleset.DomainLand, Strength: 5, RangedStrength: 7, Range: 2, Movement: 2, Cost: 40, RequiredTech: "Archery"},
		{Name: "Worker", Domain: ruleset.DomainLand, Movement: 2, Cost: 70},
		{Name: "Settler", Domain: ruleset.DomainLand, Movement: 2, Cost: 106, CannotBeBarbarian: true},
		{Name: "Trireme", Domain: ruleset.DomainWater, Strength: 10, Movement: 4, Cost: 40},
		{Name: "Fighter", Domain: ruleset.DomainAir, Strength: 45, RangedStrength: 45, Range: 8, Movement: 1, Cost: 375, CannotBeBarbarian: true},
	}
	nations := []*ruleset.Nation{
		{Name: "Rome"},
		{Name: "Greece"},
		{Name: "Barbarians", Barbarian: true},
		{Name: "Fortifiers", Modifiers: []ruleset.Modifier{
			{Type: ruleset.BetterDefensiveBuildings, Percent: 100},
		}},
		{Name: "Engineers", Modifiers: []ruleset.Modifier{
			{Type: ruleset.BetterDefensiveBuildings, Percent: 50},
			{Type: ruleset.BetterDefensiveBuildings, Percent: 25},
		}},
	}
	return ruleset.New(ruleset.DefaultConstants(), eras, techs, terrains, improvements, buildings, units, nations)
}

// T is the part of *testing.T the fixtures use. *rapid.T satisfies it too, so
// property tests can build fixtures without escaping rapid's shrinking.
type T interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Game is a ready-to-use state with a player civilization and barbarians.
type Game struct {
	State      *world.State
	Rome       *world.Civilization
	Barbarians *world.Civilization
}

// NewGame creates a width x height grassland map with Rome (human) and
// Barbarians (AI). The two are hostile by nature of the barbarian nation.
func NewGame(t T, width, height int) *Game {
	t.Helper()
	rs := Ruleset()
	if err := rs.Validate(); err != nil {
		t.Fatalf("fixture ruleset invalid: %v", err)
	}
	grass, _ := rs.Terrain("Grassland")
	s := world.NewState(rs, world.NewTileMap(width, height, grass))
	rome, _ := rs.Nation("Rome")
	barbs, _ := rs.Nation("Barbarians")
	return &Game{
		State:      s,
		Rome:       s.AddCivilization("Rome", rome, false),
		Barbarians: s.AddCivilization("Barbarians", barbs, true),
	}
}

// Tile returns the tile at (q, r) or fails the test.
func (g *Game) Tile(t T, q, r int) *world.Tile {
	t.Helper()
	tile, ok := g.State.Map.Tile(world.Position{Q: q, R: r})
	if !ok {
		t.Fatalf("no tile at (%d,%d)", q, r)
	}
	return tile
}

// Spawn places a unit of the named type for civ at (q, r) or fails the test.
func (g *Game) Spawn(t T, unitType string, civ *world.Civilization, q, r int) *world.Unit {
	t.Helper()
	base, ok := g.State.Ruleset.Unit(unitType)
	if !ok {
		t.Fatalf("unknown unit type %q", unitType)
	}
	u, err := g.State.SpawnUnit(base, civ, g.Tile(t, q, r))
	if err != nil {
		t.Fatalf("spawning %s: %v", unitType, err)
	}
	return u
}

// SetTerrain replaces the base terrain at (q, r).
func (g *Game) SetTerrain(t T, q, r int, terrain string) *world.Tile {
	t.Helper()
	tr, ok := g.State.Ruleset.Terrain(terrain)
	if !ok {
		t.Fatalf("unknown terrain %q", terrain)
	}
	tile := g.Tile(t, q, r)
	tile.BaseTerrain = tr
	return tile
}

// Improve places the named improvement at (q, r).
func (g *Game) Improve(t T, q, r int, improvement string) *world.Tile {
	t.Helper()
	imp, ok := g.State.Ruleset.Improvement(improvement)
	if !ok {
		t.Fatalf("unknown improvement %q", improvement)
	}
	tile := g.Tile(t, q, r)
	tile.Improvement = imp
	tile.ImprovementPillaged = false
	return tile
}

// Found places a city for civ at (q, r) or fails the test.
func (g *Game) Found(t T, civ *world.Civilization, q, r int, name string, population int) *world.City {
	t.Helper()
	c, err := g.State.FoundCity(civ, g.Tile(t, q, r), name, population)
	if err != nil {
		t.Fatalf("founding %s: %v", name, err)
	}
	return c
}
