package world

import (
	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// Unit is a mobile entity on the map.
//
// Invariant: a live unit occupies exactly the slot of Tile matching its
// classification (MilitaryUnit or CivilianUnit).
type Unit struct {
	ID   int
	Base *ruleset.BaseUnit
	Civ  *Civilization
	Tile *Tile

	Health int
	// Movement is the budget left this turn.
	Movement  int
	Fortified bool
	// Destroyed is set once the unit leaves the arena. Pointers held by
	// callers stay valid but the unit is no longer on any tile.
	Destroyed bool
}

// Name is the base unit's name.
func (u *Unit) Name() string { return u.Base.Name }

// IsCivilian reports whether the unit has no combat strength.
func (u *Unit) IsCivilian() bool { return u.Base.IsCivilian() }

// IsMilitary reports whether the unit can fight.
func (u *Unit) IsMilitary() bool { return u.Base.IsMilitary() }

// IsRanged reports whether the unit attacks at range.
func (u *Unit) IsRanged() bool { return u.Base.IsRanged() }

// IsMelee reports whether the unit is military and not ranged.
func (u *Unit) IsMelee() bool { return u.Base.IsMelee() }

// IsEmbarked reports whether a land unit is currently afloat.
func (u *Unit) IsEmbarked() bool {
	return u.Base.IsLand() && u.Tile != nil && u.Tile.IsWater()
}

// HasMovement reports whether any budget remains this turn.
func (u *Unit) HasMovement() bool { return u.Movement > 0 }

// UseMovement spends amount from the budget.
//
// Postcondition: u.Movement >= 0.
func (u *Unit) UseMovement(amount int) {
	u.Movement -= amount
	if u.Movement < 0 {
		u.Movement = 0
	}
}

// EndTurn spends the whole remaining budget.
func (u *Unit) EndTurn() { u.Movement = 0 }

// RestoreMovement refills the budget for a new turn.
func (u *Unit) RestoreMovement() { u.Movement = u.Base.Movement }

// Heal adds amount health, capped at max.
func (u *Unit) Heal(amount, max int) {
	u.Health += amount
	if u.Health > max {
		u.Health = max
	}
}

// CanFortify reports whether the unit may take a fortified stance.
func (u *Unit) CanFortify() bool {
	return u.IsMilitary() && u.Base.IsLand() && !u.IsEmbarked() && !u.Fortified
}

// Fortify takes a fortified stance and ends the unit's turn.
//
// Precondition: CanFortify() is true.
func (u *Unit) Fortify() {
	u.Fortified = true
	u.EndTurn()
}
