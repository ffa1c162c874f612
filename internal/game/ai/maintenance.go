package ai

import (
	"math"

	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/movement"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// WanderThreatRadius is how close a hostile military unit must be to keep a
// unit from wandering off.
const WanderThreatRadius = 3

// Upkeep is the default Maintenance collaborator.
type Upkeep struct {
	state *world.State
	mover *movement.Movement
	src   dice.Source
}

// NewUpkeep creates an Upkeep.
//
// Precondition: state, mover and src must not be nil.
func NewUpkeep(state *world.State, mover *movement.Movement, src dice.Source) *Upkeep {
	if state == nil {
		panic("ai.NewUpkeep: state must not be nil")
	}
	if mover == nil {
		panic("ai.NewUpkeep: mover must not be nil")
	}
	if src == nil {
		panic("ai.NewUpkeep: src must not be nil")
	}
	return &Upkeep{state: state, mover: mover, src: src}
}

// UpgradeCost is the gold needed to turn from into to:
//
//	base + per_production * max(0, to.cost - from.cost), rounded up to round_to
func UpgradeCost(k ruleset.UpgradeCost, from, to *ruleset.BaseUnit) int {
	delta := to.Cost - from.Cost
	if delta < 0 {
		delta = 0
	}
	gold := k.Base + k.PerProduction*float64(delta)
	if k.RoundTo > 1 {
		step := float64(k.RoundTo)
		return int(math.Ceil(gold/step) * step)
	}
	return int(math.Ceil(gold))
}

// TryUpgrade upgrades u in place when its owner knows the required tech and
// can pay for it.
func (k *Upkeep) TryUpgrade(u *world.Unit) bool {
	if u.Base.UpgradesTo == "" || !u.HasMovement() || u.IsEmbarked() {
		return false
	}
	to, ok := k.state.Ruleset.Unit(u.Base.UpgradesTo)
	if !ok || !u.Civ.HasTech(to.RequiredTech) {
		return false
	}
	cost := UpgradeCost(k.state.Ruleset.Constants.UnitUpgradeCost, u.Base, to)
	if u.Civ.Gold < cost {
		return false
	}
	u.Civ.Gold -= cost
	k.state.UpgradeUnit(u, to)
	return true
}

// canPillage reports whether u could pillage t. Improvements heal; roads
// only count when healOnly is false.
func (k *Upkeep) canPillage(u *world.Unit, t *world.Tile, healOnly bool) (improvement bool, ok bool) {
	if t.Owner == nil || !u.Civ.IsAtWarWith(t.Owner) || t.City != nil {
		return false, false
	}
	if imp := t.Improvement; imp != nil && imp.Pillageable && !t.ImprovementPillaged && !k.state.IsEncampment(t) {
		return true, true
	}
	if !healOnly && t.Road && !t.RoadPillaged {
		return false, true
	}
	return false, false
}

// TryPillage pillages the nearest hostile improvement, or road when healOnly
// is false, that u can reach with movement to spare. Pillaging an
// improvement heals the unit.
//
// Postcondition: on success exactly one movement point has been spent after
// any approach move, clamped at zero.
func (k *Upkeep) TryPillage(u *world.Unit, healOnly bool) bool {
	if !u.IsMilitary() || !u.HasMovement() {
		return false
	}
	left := k.mover.Reachable(u)
	for _, t := range k.mover.ReachableTiles(u) {
		if left[t] <= 0 {
			continue
		}
		improvement, ok := k.canPillage(u, t, healOnly)
		if !ok {
			continue
		}
		if t != u.Tile && !k.mover.MoveTo(u, t) {
			continue
		}
		if improvement {
			t.ImprovementPillaged = true
			u.Heal(k.state.Ruleset.Constants.PillageHealAmount, k.state.Ruleset.Constants.UnitMaxHealth)
		} else {
			t.RoadPillaged = true
		}
		u.UseMovement(1)
		t.Owner.AddAlert(world.Alert{Turn: k.state.Turn, Text: u.Name() + " pillaged", Pos: t.Pos})
		return true
	}
	return false
}

// Wander moves u one random step, unless it flies, is badly wounded or has
// a hostile military unit nearby.
func (k *Upkeep) Wander(u *world.Unit) bool {
	if u.Base.IsAir() || u.Health < 50 || !u.HasMovement() {
		return false
	}
	for _, t := range k.state.Map.TilesInDistance(u.Tile, WanderThreatRadius) {
		if e := t.MilitaryUnit; e != nil && u.Civ.IsAtWarWith(e.Civ) {
			return false
		}
	}
	var options []*world.Tile
	for _, n := range u.Tile.Neighbors() {
		if k.mover.CanMoveTo(u, n) {
			options = append(options, n)
		}
	}
	if len(options) == 0 {
		return false
	}
	return k.mover.MoveToTile(u, options[k.src.Intn(len(options))])
}

// TryFortify digs u in when it is able to.
func (k *Upkeep) TryFortify(u *world.Unit) bool {
	if !u.CanFortify() {
		return false
	}
	u.Fortify()
	return true
}
