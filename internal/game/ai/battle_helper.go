package ai

import (
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/movement"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// Battle is the default BattleHelper. It picks targets and hands the fight
// to a combat.Resolver.
type Battle struct {
	state    *world.State
	mover    *movement.Movement
	resolver *combat.Resolver
}

// NewBattle creates a Battle.
//
// Precondition: mover and resolver must not be nil.
func NewBattle(mover *movement.Movement, resolver *combat.Resolver) *Battle {
	if mover == nil {
		panic("ai.NewBattle: mover must not be nil")
	}
	if resolver == nil {
		panic("ai.NewBattle: resolver must not be nil")
	}
	return &Battle{state: resolver.State(), mover: mover, resolver: resolver}
}

type attackOption struct {
	from   *world.Tile
	target *world.Tile
	score  int
}

// TryAttackNearbyEnemy attacks the best target u can hit this turn. Unless
// stayInPlace is set, a melee unit may first move to any tile it can reach
// with movement to spare.
func (b *Battle) TryAttackNearbyEnemy(u *world.Unit, stayInPlace bool) bool {
	attacker := b.resolver.ForUnit(u)
	if !attacker.CanAttack() {
		return false
	}

	froms := []*world.Tile{u.Tile}
	if !stayInPlace && u.IsMelee() {
		left := b.mover.Reachable(u)
		froms = froms[:0]
		for _, t := range b.mover.ReachableTiles(u) {
			if left[t] > 0 {
				froms = append(froms, t)
			}
		}
	}

	var best *attackOption
	for _, from := range froms {
		for _, target := range b.targetsFrom(u, from) {
			opt := &attackOption{from: from, target: target, score: b.score(u, target)}
			if best == nil || opt.score > best.score {
				best = opt
			}
		}
	}
	if best == nil {
		return false
	}
	if best.from != u.Tile && !b.mover.MoveTo(u, best.from) {
		return false
	}
	b.resolver.Attack(b.resolver.ForUnit(u), b.resolver.DefenderAt(best.target))
	return true
}

// targetsFrom lists the hostile tiles u could strike while standing on from.
func (b *Battle) targetsFrom(u *world.Unit, from *world.Tile) []*world.Tile {
	rng := 1
	if u.IsRanged() && u.Base.Range > 1 {
		rng = u.Base.Range
	}
	var out []*world.Tile
	for _, t := range b.state.Map.TilesInDistance(from, rng) {
		if t == from || t == u.Tile {
			continue
		}
		def := b.resolver.DefenderAt(t)
		if def == nil || !u.Civ.IsAtWarWith(def.Civ()) {
			continue
		}
		if u.IsRanged() {
			if def.IsCivilian() {
				continue
			}
		} else if t.IsWater() != u.Base.IsWater() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// score ranks a target: cities ready to fall first, then lone civilians, then
// the most wounded defender.
func (b *Battle) score(u *world.Unit, target *world.Tile) int {
	def := b.resolver.DefenderAt(target)
	switch {
	case def.IsCity() && def.IsDefeated() && u.IsMelee() && u.Base.IsLand():
		return 1000
	case def.IsCivilian():
		return 500
	}
	return def.MaxHealth() - def.Health() + 100 - combat.EffectiveDefense(def, u.IsRanged())
}

// TryDisembarkToAttackPosition lands an embarked melee unit next to a
// hostile land target so it can strike from solid ground next turn.
func (b *Battle) TryDisembarkToAttackPosition(u *world.Unit) bool {
	if !u.IsMelee() || !u.IsEmbarked() || !u.HasMovement() {
		return false
	}
	for _, t := range b.mover.ReachableTiles(u) {
		if t == u.Tile || t.IsWater() {
			continue
		}
		if b.threatens(u, t) && b.mover.MoveTo(u, t) {
			return true
		}
	}
	return false
}

func (b *Battle) threatens(u *world.Unit, from *world.Tile) bool {
	for _, n := range from.Neighbors() {
		if n.IsWater() {
			continue
		}
		if def := b.resolver.DefenderAt(n); def != nil && u.Civ.IsAtWarWith(def.Civ()) {
			return true
		}
	}
	return false
}

// BombardFromCities lets every city of civ that can still attack fire at the
// most wounded hostile military unit within range 2.
//
// Postcondition: returns the number of bombardments.
func (b *Battle) BombardFromCities(civ *world.Civilization) int {
	n := 0
	for _, city := range civ.Cities() {
		cc := b.resolver.ForCity(city)
		if !cc.CanAttack() {
			continue
		}
		var target *world.Unit
		for _, t := range b.state.Map.TilesInDistance(city.Center, 2) {
			u := t.MilitaryUnit
			if u == nil || !civ.IsAtWarWith(u.Civ) {
				continue
			}
			if target == nil || u.Health < target.Health {
				target = u
			}
		}
		if target == nil {
			continue
		}
		b.resolver.Attack(cc, b.resolver.ForUnit(target))
		n++
	}
	return n
}
