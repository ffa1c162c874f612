// Package movement answers "where can this unit go" and commits moves,
// spending the unit's movement budget.
package movement

import (
	"sort"

	"github.com/cory-johannsen/warband/internal/game/reach"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// DefaultSearchLimit caps the number of tiles a single reachability query
// may visit.
const DefaultSearchLimit = 4096

// Movement is the movement collaborator over one game state.
type Movement struct {
	state *world.State
	// SearchLimit caps reachability sessions; zero means DefaultSearchLimit.
	SearchLimit int
}

// New creates a Movement over state.
//
// Precondition: state must not be nil.
func New(state *world.State) *Movement {
	if state == nil {
		panic("movement.New: state must not be nil")
	}
	return &Movement{state: state, SearchLimit: DefaultSearchLimit}
}

// HasMovement reports whether u has budget left this turn.
func (m *Movement) HasMovement(u *world.Unit) bool {
	return u.HasMovement()
}

// CanPass reports whether u may travel through t: the domain allows it, the
// terrain is passable, and no foreign city or foreign unit stands there.
// Air units never travel over the map.
func (m *Movement) CanPass(u *world.Unit, t *world.Tile) bool {
	if t.IsImpassable() || u.Base.IsAir() {
		return false
	}
	switch {
	case u.Base.IsWater():
		if t.IsLand() && !(t.IsCityCenter() && t.City.Civ == u.Civ) {
			return false
		}
	case t.IsWater():
		if !u.Civ.CanEmbark(m.state.Ruleset) {
			return false
		}
	}
	if t.City != nil && t.City.Civ != u.Civ {
		return false
	}
	for _, other := range t.Units() {
		if other.Civ != u.Civ {
			return false
		}
	}
	return true
}

// CanMoveTo reports whether u may end its move on t.
func (m *Movement) CanMoveTo(u *world.Unit, t *world.Tile) bool {
	if t == u.Tile {
		return true
	}
	return m.CanPass(u, t) && m.state.CanPlace(u.Base, t)
}

func (m *Movement) search(u *world.Unit) *reach.BFS[*world.Tile] {
	b := reach.New(u.Tile,
		func(t *world.Tile) []*world.Tile { return t.Neighbors() },
		func(t *world.Tile) bool { return m.CanPass(u, t) },
	)
	b.MaxSize = m.SearchLimit
	if b.MaxSize <= 0 {
		b.MaxSize = DefaultSearchLimit
	}
	return b
}

// CanReach reports whether u could eventually stand on dest, ignoring its
// remaining budget. Querying has no side effects.
func (m *Movement) CanReach(u *world.Unit, dest *world.Tile) bool {
	if !m.CanMoveTo(u, dest) {
		return false
	}
	return m.search(u).StepUntilDestination(dest).HasReached(dest)
}

// PathTo returns the tiles from u's position to dest, both ends included, or
// nil when dest is unreachable.
func (m *Movement) PathTo(u *world.Unit, dest *world.Tile) []*world.Tile {
	b := m.search(u).StepUntilDestination(dest)
	back := b.PathTo(dest)
	if len(back) == 0 {
		return nil
	}
	path := make([]*world.Tile, len(back))
	for i, t := range back {
		path[len(back)-1-i] = t
	}
	return path
}

// HeadTowards moves u along the shortest path to dest for as far as its
// budget allows. Entering a tile with any budget left is always allowed.
// The unit never stops on a tile it cannot end its move on.
//
// Postcondition: u.Movement >= 0; returns false when u did not move.
func (m *Movement) HeadTowards(u *world.Unit, dest *world.Tile) bool {
	if !u.HasMovement() || u.Tile == dest {
		return false
	}
	path := m.PathTo(u, dest)
	if len(path) < 2 {
		return false
	}
	spent, stopSpent := 0, 0
	stop := u.Tile
	for _, t := range path[1:] {
		if u.Movement-spent <= 0 {
			break
		}
		spent += t.MovementCost()
		if m.CanMoveTo(u, t) {
			stop, stopSpent = t, spent
		}
	}
	if stop == u.Tile {
		return false
	}
	u.UseMovement(stopSpent)
	m.state.MoveUnit(u, stop)
	return true
}

// MoveToTile moves u onto an adjacent tile it can enter.
//
// Postcondition: on success the tile's cost has been spent, clamped at zero.
func (m *Movement) MoveToTile(u *world.Unit, t *world.Tile) bool {
	if !u.HasMovement() || u.Tile.AerialDistanceTo(t) != 1 || !m.CanMoveTo(u, t) {
		return false
	}
	u.UseMovement(t.MovementCost())
	m.state.MoveUnit(u, t)
	return true
}

// Reachable maps every tile u can stand on this turn to the budget left on
// arrival. The current tile is always included.
func (m *Movement) Reachable(u *world.Unit) map[*world.Tile]int {
	left := map[*world.Tile]int{u.Tile: u.Movement}
	frontier := []*world.Tile{u.Tile}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if left[cur] <= 0 {
			continue
		}
		for _, n := range cur.Neighbors() {
			if !m.CanPass(u, n) {
				continue
			}
			rem := left[cur] - n.MovementCost()
			if rem < 0 {
				rem = 0
			}
			if best, seen := left[n]; seen && best >= rem {
				continue
			}
			left[n] = rem
			frontier = append(frontier, n)
		}
	}
	for t := range left {
		if !m.CanMoveTo(u, t) {
			delete(left, t)
		}
	}
	return left
}

// MoveTo moves u onto a tile it can reach this turn, spending the cheapest
// route's cost.
//
// Postcondition: returns false and leaves u untouched when dest is not
// reachable this turn.
func (m *Movement) MoveTo(u *world.Unit, dest *world.Tile) bool {
	if dest == u.Tile {
		return false
	}
	left, ok := m.Reachable(u)[dest]
	if !ok {
		return false
	}
	u.UseMovement(u.Movement - left)
	m.state.MoveUnit(u, dest)
	return true
}

// ReachableTiles returns the keys of Reachable ordered by distance from u,
// then by position, so callers iterate deterministically.
func (m *Movement) ReachableTiles(u *world.Unit) []*world.Tile {
	left := m.Reachable(u)
	out := make([]*world.Tile, 0, len(left))
	for t := range left {
		out = append(out, t)
	}
	SortByDistance(out, u.Tile)
	return out
}

// SortByDistance orders tiles by aerial distance from origin, breaking ties
// by row then column.
func SortByDistance(tiles []*world.Tile, origin *world.Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		di, dj := tiles[i].AerialDistanceTo(origin), tiles[j].AerialDistanceTo(origin)
		if di != dj {
			return di < dj
		}
		if tiles[i].Pos.R != tiles[j].Pos.R {
			return tiles[i].Pos.R < tiles[j].Pos.R
		}
		return tiles[i].Pos.Q < tiles[j].Pos.Q
	})
}
