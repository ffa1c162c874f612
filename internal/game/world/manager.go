package world

import (
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// State owns every civilization, city and unit of one game.
//
// State is not safe for concurrent use; the simulation mutates it from a
// single goroutine.
type State struct {
	Ruleset *ruleset.Ruleset
	Map     *TileMap
	Turn    int

	civs   []*Civilization
	cities []*City
	units  []*Unit

	nextCivID  int
	nextCityID int
	nextUnitID int
}

// NewState creates an empty game on m.
//
// Precondition: rs and m must not be nil.
func NewState(rs *ruleset.Ruleset, m *TileMap) *State {
	if rs == nil {
		panic("world.NewState: ruleset must not be nil")
	}
	if m == nil {
		panic("world.NewState: map must not be nil")
	}
	return &State{Ruleset: rs, Map: m}
}

// AddCivilization registers a new civilization.
//
// Postcondition: the civilization is last in Civilizations().
func (s *State) AddCivilization(name string, nation *ruleset.Nation, aiControlled bool) *Civilization {
	s.nextCivID++
	c := &Civilization{
		ID:           s.nextCivID,
		Name:         name,
		Nation:       nation,
		Techs:        make(map[string]bool),
		AIControlled: aiControlled,
		atWar:        make(map[*Civilization]bool),
	}
	s.civs = append(s.civs, c)
	return c
}

// Civilizations returns every civilization in registration order.
func (s *State) Civilizations() []*Civilization {
	return s.civs
}

// Civilization returns the civilization with the given name.
func (s *State) Civilization(name string) (*Civilization, bool) {
	for _, c := range s.civs {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Barbarians returns the first barbarian civilization, or nil.
func (s *State) Barbarians() *Civilization {
	for _, c := range s.civs {
		if c.IsBarbarian() {
			return c
		}
	}
	return nil
}

// Units returns every live unit in creation order.
func (s *State) Units() []*Unit {
	return s.units
}

// Cities returns every city in founding order.
func (s *State) Cities() []*City {
	return s.cities
}

// slot returns the tile field a unit of base occupies.
func slot(t *Tile, base *ruleset.BaseUnit) **Unit {
	if base.IsCivilian() {
		return &t.CivilianUnit
	}
	return &t.MilitaryUnit
}

// CanPlace reports whether a unit of base could stand on t.
func (s *State) CanPlace(base *ruleset.BaseUnit, t *Tile) bool {
	return *slot(t, base) == nil && !t.IsImpassable()
}

// SpawnUnit creates a full-health unit of base for civ on t.
//
// Precondition: base, civ and t must not be nil.
// Postcondition: Returns the placed unit, or an error if t cannot hold it.
func (s *State) SpawnUnit(base *ruleset.BaseUnit, civ *Civilization, t *Tile) (*Unit, error) {
	if !s.CanPlace(base, t) {
		return nil, fmt.Errorf("cannot place %s at %v", base.Name, t.Pos)
	}
	s.nextUnitID++
	u := &Unit{
		ID:       s.nextUnitID,
		Base:     base,
		Civ:      civ,
		Tile:     t,
		Health:   s.Ruleset.Constants.UnitMaxHealth,
		Movement: base.Movement,
	}
	*slot(t, base) = u
	s.units = append(s.units, u)
	civ.units = append(civ.units, u)
	return u, nil
}

// MoveUnit relocates u onto to and breaks any fortification. A
// non-barbarian military unit entering an encampment clears it and collects
// the bounty.
//
// Precondition: u is live and to can hold it.
func (s *State) MoveUnit(u *Unit, to *Tile) {
	if u.Tile == to {
		return
	}
	*slot(u.Tile, u.Base) = nil
	*slot(to, u.Base) = u
	u.Tile = to
	u.Fortified = false
	if u.IsMilitary() && !u.Civ.IsBarbarian() && s.IsEncampment(to) {
		to.Improvement = nil
		to.ImprovementPillaged = false
		u.Civ.Gold += s.Ruleset.Constants.EncampmentClearGold
		u.Civ.AddAlert(Alert{Turn: s.Turn, Text: "destroyed a barbarian encampment", Pos: to.Pos})
	}
}

// RemoveUnit destroys u.
//
// Postcondition: u.Destroyed is true and no tile or civilization references u.
func (s *State) RemoveUnit(u *Unit) {
	if u.Destroyed {
		return
	}
	if p := slot(u.Tile, u.Base); *p == u {
		*p = nil
	}
	u.Destroyed = true
	u.Movement = 0
	u.Civ.removeUnit(u)
	for i, x := range s.units {
		if x == u {
			s.units = append(s.units[:i], s.units[i+1:]...)
			break
		}
	}
}

// CaptureUnit transfers u to civ and ends its turn.
func (s *State) CaptureUnit(u *Unit, civ *Civilization) {
	if u.Civ == civ {
		return
	}
	u.Civ.removeUnit(u)
	u.Civ = civ
	civ.units = append(civ.units, u)
	u.Fortified = false
	u.EndTurn()
}

// UpgradeUnit replaces u's base unit in place, keeping its health.
//
// Precondition: to shares u's slot classification.
// Postcondition: u has no movement left.
func (s *State) UpgradeUnit(u *Unit, to *ruleset.BaseUnit) {
	u.Base = to
	u.Fortified = false
	u.EndTurn()
}

// FoundCity places a new full-health city for civ on t.
func (s *State) FoundCity(civ *Civilization, t *Tile, name string, population int) (*City, error) {
	if t.City != nil {
		return nil, fmt.Errorf("tile %v already holds city %s", t.Pos, t.City.Name)
	}
	s.nextCityID++
	c := &City{
		ID:         s.nextCityID,
		Name:       name,
		Civ:        civ,
		Center:     t,
		Population: population,
		Capital:    len(civ.cities) == 0,
	}
	c.Health = c.MaxHealth(s.Ruleset)
	t.City = c
	t.Owner = civ
	s.cities = append(s.cities, c)
	civ.cities = append(civ.cities, c)
	return c, nil
}

// CaptureCity transfers city to civ.
func (s *State) CaptureCity(city *City, civ *Civilization) {
	if city.Civ == civ {
		return
	}
	city.Civ.removeCity(city)
	city.Civ = civ
	city.Capital = false
	city.Center.Owner = civ
	civ.cities = append(civ.cities, city)
}

// Encampments returns every tile holding an intact encampment improvement.
func (s *State) Encampments() []*Tile {
	name := s.Ruleset.Constants.EncampmentImprovement
	var out []*Tile
	for _, t := range s.Map.Tiles() {
		if t.HasImprovement(name) {
			out = append(out, t)
		}
	}
	return out
}

// IsEncampment reports whether t holds an intact encampment.
func (s *State) IsEncampment(t *Tile) bool {
	return t.HasImprovement(s.Ruleset.Constants.EncampmentImprovement)
}

// StartTurn refreshes the movement of civ's units and lets its cities
// bombard again.
func (s *State) StartTurn(civ *Civilization) {
	for _, u := range civ.units {
		u.RestoreMovement()
	}
	for _, c := range civ.cities {
		c.Bombarded = false
	}
}
