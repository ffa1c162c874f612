package combat

import (
	"math"

	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

// CityStrength computes a city's strength. Attack and defense both derive
// from it:
//
//	base + pop*per_pop + terrain + (techFraction*tech_mult)^tech_exp * tech_full_mult
//	     + int(garrison.strength * garrison.health/100 * garrison_factor)
//	     + int(buildings * prod((100+better_defensive_buildings%)/100))
//
// Garrison and building contributions are truncated where they are added;
// the total is truncated once at the end.
//
// Postcondition: the result is >= 0 for non-negative constants.
func CityStrength(city *world.City, rs *ruleset.Ruleset) int {
	k := rs.Constants
	strength := k.CityStrengthBase
	strength += float64(city.Population) * k.CityStrengthPerPop
	strength += float64(city.Center.CityStrengthBonus())

	techs := city.Civ.TechFraction(rs)
	strength += math.Pow(techs*k.CityStrengthFromTechsMultiplier, k.CityStrengthFromTechsExponent) *
		k.CityStrengthFromTechsFullMultiplier

	if g := city.Garrison(); g != nil {
		strength += float64(int(float64(g.Base.Strength) * (float64(g.Health) / 100) * k.CityStrengthFromGarrison))
	}

	buildings := 0.0
	for _, b := range city.Buildings {
		buildings += float64(b.CityStrength)
	}
	buildings *= city.Civ.ModifierScale(ruleset.BetterDefensiveBuildings)
	strength += float64(int(buildings))

	if strength < 0 {
		return 0
	}
	return int(strength)
}

// UnitAttackingStrength is the ranged strength of a ranged unit and the
// melee strength of any other.
func UnitAttackingStrength(u *world.Unit) int {
	if u.IsRanged() {
		return u.Base.RangedStrength
	}
	return u.Base.Strength
}

// UnitDefendingStrength resolves, in order: an embarked combat unit uses its
// civilization's era embark defense; a ranged unit attacked by a ranged
// attacker uses its ranged strength; otherwise the melee strength.
func UnitDefendingStrength(u *world.Unit, rs *ruleset.Ruleset, attackedByRanged bool) int {
	if u.IsEmbarked() && !u.IsCivilian() {
		return u.Civ.Era(rs).EmbarkDefense
	}
	if u.IsRanged() && attackedByRanged {
		return u.Base.RangedStrength
	}
	return u.Base.Strength
}
