package combat

import "math"

// damageModifier scales the base damage by the strength ratio. The stronger
// side deals more and takes less.
func damageModifier(atk, def float64, toAttacker bool) float64 {
	ratio := atk / def
	if def > atk {
		ratio = def / atk
	}
	m := (math.Pow((ratio+3)/4, 4) + 1) / 2
	if (toAttacker && atk > def) || (!toAttacker && atk < def) {
		m = 1 / m
	}
	return m
}

// woundedFactor reduces the damage a wounded unit deals. Cities deal full damage.
func woundedFactor(c Combatant) float64 {
	if c.IsCity() {
		return 1
	}
	return 1 - float64(100-c.Health())/300
}

// Damage returns the damage dealt to the defender and to the attacker for
// the given effective strengths and a roll in [0, 1):
//
//	base = 24 + 12*roll
//	toDefender = round(base * modifier(atk/def) * wounded(attacker))
//	toAttacker = round(base * modifier(def/atk) * wounded(defender))
//
// Ranged (non-air) attackers and fights against civilians never hurt the
// attacker.
//
// Postcondition: both results are >= 0.
func Damage(attacker, defender Combatant, atk, def int, roll float64) (toDefender, toAttacker int) {
	a := math.Max(1, float64(atk))
	d := math.Max(1, float64(def))
	base := 24 + 12*roll

	toDefender = int(math.Round(base * damageModifier(a, d, false) * woundedFactor(attacker)))
	if (!attacker.IsRanged() || attacker.IsAir()) && !defender.IsCivilian() {
		toAttacker = int(math.Round(base * damageModifier(a, d, true) * woundedFactor(defender)))
	}
	if toDefender < 0 {
		toDefender = 0
	}
	if toAttacker < 0 {
		toAttacker = 0
	}
	return toDefender, toAttacker
}
