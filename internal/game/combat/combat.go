// Package combat implements the combatant model, the strength calculator and
// the battle resolver.
//
// A Combatant is a transient view over a city or a unit. It borrows the
// underlying entity for the duration of one query or one battle and must not
// be retained afterwards.
package combat

import (
	"github.com/cory-johannsen/warband/internal/game/world"
)

// Kind distinguishes city combatants from unit combatants.
type Kind int

const (
	KindCity Kind = iota
	KindUnit
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindCity:
		return "city"
	case KindUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// Combatant is the capability set shared by cities and units.
//
// Precondition for every method: the backing entity is still part of the
// game. Querying a combatant over a removed unit is a programming error.
type Combatant interface {
	Kind() Kind
	Name() string
	Civ() *world.Civilization
	Tile() *world.Tile

	Health() int
	MaxHealth() int
	// IsDefeated reports a city at its health floor or a unit at or below zero.
	IsDefeated() bool
	// TakeDamage subtracts amount from health. Cities floor at 1; units do not.
	TakeDamage(amount int)

	AttackingStrength() int
	DefendingStrength(attackedByRanged bool) int
	MatchesFilter(filter string, compound bool) bool

	IsRanged() bool
	IsMelee() bool
	IsCivilian() bool
	IsAir() bool
	IsWater() bool
	IsLand() bool
	IsCity() bool
	CanAttack() bool
}
