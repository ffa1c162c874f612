package combat

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/world"
)

// FortifyBonus is the defensive percentage a fortified unit gains.
const FortifyBonus = 20

// Source is the subset of dice.Source used by the resolver.
// Using a local interface avoids a circular import.
type Source interface {
	Float64() float64
}

// ScriptCaller dispatches a Lua hook in a nation's scope.
type ScriptCaller interface {
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Result describes one resolved battle.
type Result struct {
	Turn             int
	Attacker         string
	AttackerCiv      string
	AttackerKind     Kind
	Defender         string
	DefenderCiv      string
	DefenderKind     Kind
	DefenderPos      world.Position
	AttackStrength   int
	DefenseStrength  int
	DamageToDefender int
	DamageToAttacker int
	// AttackerHealth and DefenderHealth are the health values after damage.
	AttackerHealth    int
	DefenderHealth    int
	AttackerDestroyed bool
	DefenderDestroyed bool
	CityCaptured      bool
	UnitCaptured      bool
}

// String renders the result for logs and alerts.
func (r Result) String() string {
	return fmt.Sprintf("%s (%s) attacked %s (%s): %d/%d damage",
		r.Attacker, r.AttackerCiv, r.Defender, r.DefenderCiv, r.DamageToDefender, r.DamageToAttacker)
}

// Resolver applies the strength-ratio damage model and the consequences of
// a battle to the game state.
type Resolver struct {
	state   *world.State
	src     Source
	scripts ScriptCaller
	logger  *zap.Logger

	// OnResolved, when set, is called after every battle.
	OnResolved func(Result)
}

// NewResolver creates a Resolver.
//
// Precondition: state and src must not be nil. scripts may be nil; a nil
// logger is replaced by a no-op logger.
func NewResolver(state *world.State, src Source, scripts ScriptCaller, logger *zap.Logger) *Resolver {
	if state == nil {
		panic("combat.NewResolver: state must not be nil")
	}
	if src == nil {
		panic("combat.NewResolver: src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{state: state, src: src, scripts: scripts, logger: logger}
}

// State returns the game the resolver mutates.
func (r *Resolver) State() *world.State { return r.state }

// ForUnit returns a combatant view over u.
func (r *Resolver) ForUnit(u *world.Unit) *UnitCombatant {
	return NewUnitCombatant(u, r.state.Ruleset)
}

// ForCity returns a combatant view over c.
func (r *Resolver) ForCity(c *world.City) *CityCombatant {
	return NewCityCombatant(c, r.state.Ruleset)
}

// DefenderAt returns the combatant that defends t: its city, else its
// military unit, else its civilian unit. It returns nil for an empty tile.
func (r *Resolver) DefenderAt(t *world.Tile) Combatant {
	switch {
	case t.City != nil:
		return r.ForCity(t.City)
	case t.MilitaryUnit != nil:
		return r.ForUnit(t.MilitaryUnit)
	case t.CivilianUnit != nil:
		return r.ForUnit(t.CivilianUnit)
	}
	return nil
}

// EffectiveDefense adds terrain and fortification bonuses to a land unit
// defender's strength. Cities, embarked units and ships get none.
func EffectiveDefense(defender Combatant, attackedByRanged bool) int {
	base := defender.DefendingStrength(attackedByRanged)
	uc, ok := defender.(*UnitCombatant)
	if !ok {
		return base
	}
	u := uc.Unit()
	if !u.Base.IsLand() || u.IsEmbarked() || u.IsCivilian() {
		return base
	}
	pct := u.Tile.DefenseBonus()
	if u.Fortified {
		pct += FortifyBonus
	}
	return base * (100 + pct) / 100
}

// Attack resolves attacker against defender.
//
// A defeated unit is removed. A melee unit that beats a city at its floor
// captures it; a melee attack on a lone civilian captures the civilian. A
// melee winner advances onto the emptied tile. Attacking ends a unit's
// movement and uses up a city's bombard.
//
// Precondition: attacker.CanAttack() and the two sides are at war.
// Postcondition: no unit at or below zero health remains on the map.
func (r *Resolver) Attack(attacker, defender Combatant) Result {
	atk := attacker.AttackingStrength()
	def := EffectiveDefense(defender, attacker.IsRanged())
	res := Result{
		Turn:            r.state.Turn,
		Attacker:        attacker.Name(),
		AttackerCiv:     attacker.Civ().Name,
		AttackerKind:    attacker.Kind(),
		Defender:        defender.Name(),
		DefenderCiv:     defender.Civ().Name,
		DefenderKind:    defender.Kind(),
		DefenderPos:     defender.Tile().Pos,
		AttackStrength:  atk,
		DefenseStrength: def,
	}
	defenderCiv := defender.Civ()
	targetTile := defender.Tile()

	if attacker.IsMelee() && defender.IsCivilian() {
		r.captureCivilian(attacker, defender, &res)
	} else {
		toDef, toAtk := Damage(attacker, defender, atk, def, r.src.Float64())
		toDef = r.damageHook(attacker, defender, toDef, toAtk)
		defender.TakeDamage(toDef)
		attacker.TakeDamage(toAtk)
		res.DamageToDefender = toDef
		res.DamageToAttacker = toAtk
		r.settle(attacker, defender, targetTile, &res)
	}

	res.AttackerHealth = attacker.Health()
	res.DefenderHealth = defender.Health()
	r.spend(attacker)

	defenderCiv.AddAlert(world.Alert{Turn: r.state.Turn, Text: res.String(), Pos: targetTile.Pos})
	r.logger.Debug("battle resolved",
		zap.String("attacker", res.Attacker),
		zap.String("defender", res.Defender),
		zap.Int("attack_strength", atk),
		zap.Int("defense_strength", def),
		zap.Int("damage_to_defender", res.DamageToDefender),
		zap.Int("damage_to_attacker", res.DamageToAttacker),
		zap.Bool("defender_destroyed", res.DefenderDestroyed),
		zap.Bool("city_captured", res.CityCaptured),
	)
	if r.OnResolved != nil {
		r.OnResolved(res)
	}
	return res
}

func (r *Resolver) captureCivilian(attacker, defender Combatant, res *Result) {
	civilian := defender.(*UnitCombatant).Unit()
	target := civilian.Tile
	r.state.CaptureUnit(civilian, attacker.Civ())
	res.UnitCaptured = true
	if au, ok := attacker.(*UnitCombatant); ok && target.MilitaryUnit == nil && r.state.CanPlace(au.Unit().Base, target) {
		r.state.MoveUnit(au.Unit(), target)
	}
}

// settle removes the dead, captures cities and advances melee winners.
func (r *Resolver) settle(attacker, defender Combatant, target *world.Tile, res *Result) {
	if du, ok := defender.(*UnitCombatant); ok && defender.IsDefeated() {
		r.state.RemoveUnit(du.Unit())
		res.DefenderDestroyed = true
	}
	au, attackerIsUnit := attacker.(*UnitCombatant)
	if attackerIsUnit && attacker.IsDefeated() {
		r.state.RemoveUnit(au.Unit())
		res.AttackerDestroyed = true
		return
	}
	if !attackerIsUnit || !attacker.IsMelee() {
		return
	}
	unit := au.Unit()

	if dc, ok := defender.(*CityCombatant); ok {
		if !dc.IsDefeated() || !unit.Base.IsLand() {
			return
		}
		if g := target.MilitaryUnit; g != nil {
			r.state.RemoveUnit(g)
		}
		r.state.CaptureCity(dc.City(), attacker.Civ())
		res.CityCaptured = true
		r.advance(unit, target)
		return
	}

	if res.DefenderDestroyed && target.MilitaryUnit == nil {
		if c := target.CivilianUnit; c != nil && c.Civ.IsAtWarWith(unit.Civ) {
			r.state.CaptureUnit(c, unit.Civ)
			res.UnitCaptured = true
		}
		r.advance(unit, target)
	}
}

func (r *Resolver) advance(u *world.Unit, target *world.Tile) {
	if target.IsWater() && u.Base.IsLand() && !u.Civ.CanEmbark(r.state.Ruleset) {
		return
	}
	if r.state.CanPlace(u.Base, target) {
		r.state.MoveUnit(u, target)
	}
}

func (r *Resolver) spend(attacker Combatant) {
	switch a := attacker.(type) {
	case *UnitCombatant:
		a.Unit().EndTurn()
		a.Unit().Fortified = false
	case *CityCombatant:
		a.City().Bombarded = true
	}
}

// damageHook lets the attacker's nation scripts override the damage dealt
// to the defender via on_damage(attacker, defender, to_defender, to_attacker).
func (r *Resolver) damageHook(attacker, defender Combatant, toDef, toAtk int) int {
	if r.scripts == nil {
		return toDef
	}
	scope := ""
	if n := attacker.Civ().Nation; n != nil {
		scope = n.Name
	}
	ret, err := r.scripts.CallHook(scope, "on_damage",
		lua.LString(attacker.Name()), lua.LString(defender.Name()),
		lua.LNumber(toDef), lua.LNumber(toAtk))
	if err != nil {
		return toDef
	}
	if n, ok := ret.(lua.LNumber); ok && n >= 0 {
		return int(n)
	}
	return toDef
}
