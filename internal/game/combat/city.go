package combat

import (
	"github.com/cory-johannsen/warband/internal/game/filter"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// CityToken matches every city combatant in a filter.
const CityToken = "City"

// CityCombatant views a city as a combatant.
type CityCombatant struct {
	city *world.City
	rs   *ruleset.Ruleset
}

// NewCityCombatant borrows city for one query or battle.
//
// Precondition: city and rs must not be nil.
func NewCityCombatant(city *world.City, rs *ruleset.Ruleset) *CityCombatant {
	if city == nil {
		panic("combat.NewCityCombatant: city must not be nil")
	}
	if rs == nil {
		panic("combat.NewCityCombatant: ruleset must not be nil")
	}
	return &CityCombatant{city: city, rs: rs}
}

// City returns the borrowed city.
func (c *CityCombatant) City() *world.City { return c.city }

func (c *CityCombatant) Kind() Kind               { return KindCity }
func (c *CityCombatant) Name() string             { return c.city.Name }
func (c *CityCombatant) Civ() *world.Civilization { return c.city.Civ }
func (c *CityCombatant) Tile() *world.Tile        { return c.city.Center }
func (c *CityCombatant) Health() int              { return c.city.Health }
func (c *CityCombatant) MaxHealth() int           { return c.city.MaxHealth(c.rs) }

// IsDefeated reports whether the city sits at its health floor and is ready
// to be captured.
func (c *CityCombatant) IsDefeated() bool { return c.city.Health == 1 }

// TakeDamage lowers the city's health.
//
// Postcondition: c.Health() >= 1.
func (c *CityCombatant) TakeDamage(amount int) {
	c.city.Health -= amount
	if c.city.Health < 1 {
		c.city.Health = 1
	}
}

// AttackingStrength is three quarters of the city's strength, truncated.
func (c *CityCombatant) AttackingStrength() int {
	return int(float64(CityStrength(c.city, c.rs)) * 0.75)
}

// DefendingStrength is the city's full strength, or 1 at the health floor.
func (c *CityCombatant) DefendingStrength(attackedByRanged bool) int {
	if c.IsDefeated() {
		return 1
	}
	return CityStrength(c.city, c.rs)
}

// MatchesFilter accepts "City", "All" and every city filter token.
func (c *CityCombatant) MatchesFilter(f string, compound bool) bool {
	single := func(s string) bool {
		return s == CityToken || s == filter.All || filter.City(c.city, nil, s, false)
	}
	if compound {
		return filter.Matches(f, single)
	}
	return single(f)
}

func (c *CityCombatant) IsRanged() bool   { return true }
func (c *CityCombatant) IsMelee() bool    { return false }
func (c *CityCombatant) IsCivilian() bool { return false }
func (c *CityCombatant) IsAir() bool      { return false }
func (c *CityCombatant) IsWater() bool    { return false }
func (c *CityCombatant) IsLand() bool     { return false }
func (c *CityCombatant) IsCity() bool     { return true }

// CanAttack reports whether the city has not bombarded yet this turn.
func (c *CityCombatant) CanAttack() bool { return !c.city.Bombarded }
