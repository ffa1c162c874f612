package combat

import (
	"github.com/cory-johannsen/warband/internal/game/filter"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// UnitCombatant views a unit as a combatant.
type UnitCombatant struct {
	unit *world.Unit
	rs   *ruleset.Ruleset
}

// NewUnitCombatant borrows u for one query or battle.
//
// Precondition: u and rs must not be nil; u must not be destroyed.
func NewUnitCombatant(u *world.Unit, rs *ruleset.Ruleset) *UnitCombatant {
	if u == nil {
		panic("combat.NewUnitCombatant: unit must not be nil")
	}
	if rs == nil {
		panic("combat.NewUnitCombatant: ruleset must not be nil")
	}
	return &UnitCombatant{unit: u, rs: rs}
}

// Unit returns the borrowed unit.
func (c *UnitCombatant) Unit() *world.Unit { return c.unit }

func (c *UnitCombatant) Kind() Kind               { return KindUnit }
func (c *UnitCombatant) Name() string             { return c.unit.Name() }
func (c *UnitCombatant) Civ() *world.Civilization { return c.unit.Civ }
func (c *UnitCombatant) Tile() *world.Tile        { return c.unit.Tile }
func (c *UnitCombatant) Health() int              { return c.unit.Health }
func (c *UnitCombatant) MaxHealth() int           { return c.rs.Constants.UnitMaxHealth }
func (c *UnitCombatant) IsDefeated() bool         { return c.unit.Health <= 0 }

// TakeDamage lowers the unit's health, possibly to or below zero. Removing
// a defeated unit is the caller's job.
func (c *UnitCombatant) TakeDamage(amount int) {
	c.unit.Health -= amount
}

func (c *UnitCombatant) AttackingStrength() int {
	return UnitAttackingStrength(c.unit)
}

func (c *UnitCombatant) DefendingStrength(attackedByRanged bool) int {
	return UnitDefendingStrength(c.unit, c.rs, attackedByRanged)
}

// MatchesFilter delegates to unit filter matching.
func (c *UnitCombatant) MatchesFilter(f string, compound bool) bool {
	return filter.Unit(c.unit, f, compound)
}

func (c *UnitCombatant) IsRanged() bool   { return c.unit.IsRanged() }
func (c *UnitCombatant) IsMelee() bool    { return c.unit.IsMelee() }
func (c *UnitCombatant) IsCivilian() bool { return c.unit.IsCivilian() }
func (c *UnitCombatant) IsAir() bool      { return c.unit.Base.IsAir() }
func (c *UnitCombatant) IsWater() bool    { return c.unit.Base.IsWater() }
func (c *UnitCombatant) IsLand() bool     { return c.unit.Base.IsLand() }
func (c *UnitCombatant) IsCity() bool     { return false }

// CanAttack reports whether the unit is military and still has movement.
func (c *UnitCombatant) CanAttack() bool {
	return c.unit.IsMilitary() && c.unit.HasMovement() && !c.unit.Destroyed
}
