// Package world provides the game world model: a hex tile map with the
// civilizations, cities and units that occupy it.
//
// State is an arena. Every Tile, City and Unit is owned by exactly one State
// and other packages hold borrowed pointers into it for the duration of a
// query or a decision.
package world

import (
	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// Position is an axial hex coordinate.
type Position struct {
	Q int `yaml:"q"`
	R int `yaml:"r"`
}

// neighborDirections lists the six axial offsets in a fixed order so that
// neighbor enumeration, and every search built on it, is reproducible.
var neighborDirections = [6]Position{
	{1, 0}, {1, -1}, {0, -1},
	{-1, 0}, {-1, 1}, {0, 1},
}

// Add returns the component-wise sum of p and o.
func (p Position) Add(o Position) Position {
	return Position{Q: p.Q + o.Q, R: p.R + o.R}
}

// Distance returns the hex distance between p and o.
func (p Position) Distance(o Position) int {
	dq := p.Q - o.Q
	dr := p.R - o.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Tile is one map cell. A tile holds at most one military and one civilian
// unit.
type Tile struct {
	Pos         Position
	BaseTerrain *ruleset.Terrain
	Features    []*ruleset.Terrain

	Improvement         *ruleset.Improvement
	ImprovementPillaged bool
	Road                bool
	RoadPillaged        bool

	Owner        *Civilization
	City         *City
	MilitaryUnit *Unit
	CivilianUnit *Unit

	neighbors []*Tile
}

// Neighbors returns the in-bounds adjacent tiles in direction order.
func (t *Tile) Neighbors() []*Tile {
	return t.neighbors
}

// AerialDistanceTo returns the straight-line hex distance, ignoring terrain.
func (t *Tile) AerialDistanceTo(o *Tile) int {
	return t.Pos.Distance(o.Pos)
}

// IsWater reports whether the base terrain is water.
func (t *Tile) IsWater() bool {
	return t.BaseTerrain != nil && t.BaseTerrain.Type == ruleset.TerrainWater
}

// IsLand reports whether the tile is not water.
func (t *Tile) IsLand() bool { return !t.IsWater() }

// IsImpassable reports whether the base terrain or any feature blocks movement.
func (t *Tile) IsImpassable() bool {
	if t.BaseTerrain != nil && t.BaseTerrain.Impassable {
		return true
	}
	for _, f := range t.Features {
		if f.Impassable {
			return true
		}
	}
	return false
}

// IsCityCenter reports whether a city stands on the tile.
func (t *Tile) IsCityCenter() bool { return t.City != nil }

// MovementCost is the movement spent entering the tile. The last feature
// overrides the base terrain; an intact road caps the cost at 1.
//
// Postcondition: the result is at least 1.
func (t *Tile) MovementCost() int {
	cost := 1
	if t.BaseTerrain != nil && t.BaseTerrain.MovementCost > 0 {
		cost = t.BaseTerrain.MovementCost
	}
	for _, f := range t.Features {
		if f.MovementCost > 0 {
			cost = f.MovementCost
		}
	}
	if t.Road && !t.RoadPillaged {
		cost = 1
	}
	return cost
}

// CityStrengthBonus sums the city strength granted by the base terrain and
// its features.
func (t *Tile) CityStrengthBonus() int {
	total := 0
	if t.BaseTerrain != nil {
		total += t.BaseTerrain.CityStrength
	}
	for _, f := range t.Features {
		total += f.CityStrength
	}
	return total
}

// DefenseBonus sums the defensive percentage of the base terrain and its features.
func (t *Tile) DefenseBonus() int {
	total := 0
	if t.BaseTerrain != nil {
		total += t.BaseTerrain.DefenseBonus
	}
	for _, f := range t.Features {
		total += f.DefenseBonus
	}
	return total
}

// HasImprovement reports whether an intact improvement with the given name
// stands on the tile.
func (t *Tile) HasImprovement(name string) bool {
	return t.Improvement != nil && t.Improvement.Name == name && !t.ImprovementPillaged
}

// Units returns the units on the tile, military first.
func (t *Tile) Units() []*Unit {
	var out []*Unit
	if t.MilitaryUnit != nil {
		out = append(out, t.MilitaryUnit)
	}
	if t.CivilianUnit != nil {
		out = append(out, t.CivilianUnit)
	}
	return out
}

// TileMap is a parallelogram of hex tiles with Q in [0, Width) and R in [0, Height).
//
// Invariant: every tile's neighbor list is computed once at construction.
type TileMap struct {
	Width  int
	Height int

	tiles []*Tile
	index map[Position]*Tile
}

// NewTileMap creates a width x height map covered by base.
//
// Precondition: width and height must be positive.
// Postcondition: every tile has base as its terrain and its neighbors linked.
func NewTileMap(width, height int, base *ruleset.Terrain) *TileMap {
	if width <= 0 || height <= 0 {
		panic("world.NewTileMap: width and height must be positive")
	}
	m := &TileMap{
		Width:  width,
		Height: height,
		tiles:  make([]*Tile, 0, width*height),
		index:  make(map[Position]*Tile, width*height),
	}
	for r := 0; r < height; r++ {
		for q := 0; q < width; q++ {
			t := &Tile{Pos: Position{Q: q, R: r}, BaseTerrain: base}
			m.tiles = append(m.tiles, t)
			m.index[t.Pos] = t
		}
	}
	for _, t := range m.tiles {
		for _, d := range neighborDirections {
			if n, ok := m.index[t.Pos.Add(d)]; ok {
				t.neighbors = append(t.neighbors, n)
			}
		}
	}
	return m
}

// Tile returns the tile at p.
func (m *TileMap) Tile(p Position) (*Tile, bool) {
	t, ok := m.index[p]
	return t, ok
}

// Tiles returns every tile in row-major order.
func (m *TileMap) Tiles() []*Tile {
	return m.tiles
}

// TilesInDistance returns every tile within d hexes of center, center
// included, in row-major order.
func (m *TileMap) TilesInDistance(center *Tile, d int) []*Tile {
	var out []*Tile
	for _, t := range m.tiles {
		if t.AerialDistanceTo(center) <= d {
			out = append(out, t)
		}
	}
	return out
}
