// Package ai automates the units of computer-controlled civilizations.
//
// Every unit runs one finite decision tree per turn and ends in a committed
// action or a wander. Ranged units act before melee units, which act before
// everything else, so a ranged unit never finds its target already killed
// by a melee unit that went first.
package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/movement"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// Action is one committed order.
type Action string

const (
	ActionNone      Action = "none"
	ActionMove      Action = "move"
	ActionUpgrade   Action = "upgrade"
	ActionAttack    Action = "attack"
	ActionDisembark Action = "disembark"
	ActionPillage   Action = "pillage"
	ActionFortify   Action = "fortify"
	ActionWander    Action = "wander"
)

// Branch names the decision tree a unit was routed into.
type Branch string

const (
	BranchCivilian   Branch = "captured_civilian"
	BranchEncampment Branch = "encampment"
	BranchCombat     Branch = "combat"
)

// Decision records what one unit did during one turn.
type Decision struct {
	Turn    int
	Civ     string
	UnitID  int
	Unit    string
	Pos     world.Position
	Branch  Branch
	Actions []Action
}

// Final returns the last committed action, or ActionNone.
func (d Decision) Final() Action {
	if len(d.Actions) == 0 {
		return ActionNone
	}
	return d.Actions[len(d.Actions)-1]
}

// Mover is the movement collaborator.
type Mover interface {
	CanReach(u *world.Unit, dest *world.Tile) bool
	HeadTowards(u *world.Unit, dest *world.Tile) bool
	HasMovement(u *world.Unit) bool
}

// BattleHelper commits attacks. Each method reports whether it acted.
type BattleHelper interface {
	TryAttackNearbyEnemy(u *world.Unit, stayInPlace bool) bool
	TryDisembarkToAttackPosition(u *world.Unit) bool
}

// Maintenance covers the non-combat orders. Each Try method reports whether
// it acted; Wander reports whether the unit moved.
type Maintenance interface {
	TryUpgrade(u *world.Unit) bool
	TryPillage(u *world.Unit, healOnly bool) bool
	Wander(u *world.Unit) bool
	TryFortify(u *world.Unit) bool
}

// ScriptCaller is the interface required by the Engine to notify Lua mods.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Engine runs the per-turn decision procedure.
//
// Invariant: state, mover, battle and upkeep are never nil.
type Engine struct {
	state   *world.State
	mover   Mover
	battle  BattleHelper
	upkeep  Maintenance
	scripts ScriptCaller
	logger  *zap.Logger

	// OnDecision, when set, receives every decision as it is made.
	OnDecision func(Decision)
}

// NewEngine constructs an Engine.
//
// Precondition: state, mover, battle and upkeep must not be nil. scripts may
// be nil; a nil logger is replaced by a no-op logger.
func NewEngine(state *world.State, mover Mover, battle BattleHelper, upkeep Maintenance, scripts ScriptCaller, logger *zap.Logger) *Engine {
	if state == nil {
		panic("ai.NewEngine: state must not be nil")
	}
	if mover == nil {
		panic("ai.NewEngine: mover must not be nil")
	}
	if battle == nil {
		panic("ai.NewEngine: battle must not be nil")
	}
	if upkeep == nil {
		panic("ai.NewEngine: upkeep must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{state: state, mover: mover, battle: battle, upkeep: upkeep, scripts: scripts, logger: logger}
}

// Partition splits units into ranged, melee and the rest, keeping their
// relative order. Destroyed units are dropped.
func Partition(units []*world.Unit) (ranged, melee, other []*world.Unit) {
	for _, u := range units {
		switch {
		case u.Destroyed:
		case u.IsRanged():
			ranged = append(ranged, u)
		case u.IsMelee():
			melee = append(melee, u)
		default:
			other = append(other, u)
		}
	}
	return ranged, melee, other
}

// Automate runs every unit of civ once, ranged first, then melee, then the
// rest, and finally clears civ's alert queue.
//
// Precondition: civ must not be nil.
// Postcondition: one Decision per unit that was still alive and owned by
// civ when its turn came.
func (e *Engine) Automate(civ *world.Civilization) []Decision {
	ranged, melee, other := Partition(civ.Units())
	var out []Decision
	for _, group := range [][]*world.Unit{ranged, melee, other} {
		for _, u := range group {
			if u.Destroyed || u.Civ != civ {
				continue
			}
			out = append(out, e.AutomateUnit(u))
		}
	}
	civ.ClearAlerts()
	return out
}

// AutomateUnit routes u into exactly one decision tree and returns what it did.
//
// Postcondition: u.Movement >= 0.
func (e *Engine) AutomateUnit(u *world.Unit) Decision {
	d := Decision{
		Turn:   e.state.Turn,
		Civ:    u.Civ.Name,
		UnitID: u.ID,
		Unit:   u.Name(),
		Pos:    u.Tile.Pos,
	}
	switch {
	case u.IsCivilian():
		d.Branch = BranchCivilian
		d.Actions = e.automateCivilian(u)
	case e.state.IsEncampment(u.Tile):
		d.Branch = BranchEncampment
		d.Actions = e.automateOnEncampment(u)
	default:
		d.Branch = BranchCombat
		d.Actions = e.automateCombatUnit(u)
	}
	if len(d.Actions) == 0 {
		d.Actions = []Action{ActionNone}
	}

	e.logger.Debug("unit automated",
		zap.String("civ", d.Civ),
		zap.Int("unit_id", d.UnitID),
		zap.String("unit", d.Unit),
		zap.String("branch", string(d.Branch)),
		zap.String("action", string(d.Final())),
	)
	e.notify(u, d)
	if e.OnDecision != nil {
		e.OnDecision(d)
	}
	return d
}

// automateCivilian walks a captured civilian to the nearest free encampment
// it can reach.
func (e *Engine) automateCivilian(u *world.Unit) []Action {
	if e.state.IsEncampment(u.Tile) {
		return nil
	}
	camps := e.state.Encampments()
	movement.SortByDistance(camps, u.Tile)
	for _, camp := range camps {
		if camp.CivilianUnit != nil || !e.mover.CanReach(u, camp) {
			continue
		}
		if e.mover.HeadTowards(u, camp) {
			return []Action{ActionMove}
		}
		return nil
	}
	if e.upkeep.Wander(u) {
		return []Action{ActionWander}
	}
	return nil
}

// automateOnEncampment holds the camp: upgrade, strike from the tile, or dig in.
func (e *Engine) automateOnEncampment(u *world.Unit) []Action {
	if e.upkeep.TryUpgrade(u) {
		return []Action{ActionUpgrade}
	}
	if e.battle.TryAttackNearbyEnemy(u, true) {
		return []Action{ActionAttack}
	}
	if e.upkeep.TryFortify(u) {
		return []Action{ActionFortify}
	}
	return nil
}

func (e *Engine) automateCombatUnit(u *world.Unit) []Action {
	var acts []Action

	if u.Health < 50 && e.upkeep.TryPillage(u, true) {
		acts = append(acts, ActionPillage)
		if !e.mover.HasMovement(u) {
			return acts
		}
	}
	if e.upkeep.TryUpgrade(u) {
		return append(acts, ActionUpgrade)
	}
	if e.battle.TryDisembarkToAttackPosition(u) {
		return append(acts, ActionDisembark)
	}
	if !u.IsCivilian() && e.battle.TryAttackNearbyEnemy(u, false) {
		return append(acts, ActionAttack)
	}
	for e.mover.HasMovement(u) {
		before := u.Movement
		if !e.upkeep.TryPillage(u, false) {
			break
		}
		acts = append(acts, ActionPillage)
		// a pillage that spent nothing would repeat forever
		if u.Movement >= before {
			break
		}
	}
	if !e.mover.HasMovement(u) {
		return acts
	}
	if e.upkeep.Wander(u) {
		acts = append(acts, ActionWander)
	}
	return acts
}

// notify lets nation scripts observe the decision via
// on_unit_automated(unit_id, unit, branch, action).
func (e *Engine) notify(u *world.Unit, d Decision) {
	if e.scripts == nil {
		return
	}
	scope := ""
	if u.Civ.Nation != nil {
		scope = u.Civ.Nation.Name
	}
	_, _ = e.scripts.CallHook(scope, "on_unit_automated",
		lua.LNumber(d.UnitID), lua.LString(d.Unit), lua.LString(string(d.Branch)), lua.LString(string(d.Final())))
}
