// Package barbarian tracks barbarian encampments and spawns their units.
package barbarian

import (
	"github.com/cory-johannsen/warband/internal/game/world"
)

// GhostTurns is how long a destroyed camp keeps haunting its site.
const GhostTurns = 15

// Encampment is the spawn bookkeeping for one camp.
//
// Invariant: Countdown >= 0.
type Encampment struct {
	Pos world.Position
	// Countdown is the number of turns before the next spawn attempt.
	Countdown int
	// Spawned counts the units this camp has produced.
	Spawned int
	// Destroyed marks a cleared camp; it is forgotten when Countdown reaches 0.
	Destroyed bool
}

// WasAttacked hurries the next spawn.
func (e *Encampment) WasAttacked() {
	if !e.Destroyed {
		e.Countdown /= 2
	}
}

// WasDestroyed turns the camp into a ghost for GhostTurns turns.
func (e *Encampment) WasDestroyed() {
	if !e.Destroyed {
		e.Countdown = GhostTurns
		e.Destroyed = true
	}
}
