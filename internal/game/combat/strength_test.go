package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/testutil"
)

func TestCityStrength_Base(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	cc := combat.NewCityCombatant(city, g.State.Ruleset)

	// 8 + 1*0.4, no techs, no garrison, no buildings
	assert.Equal(t, 8, cc.DefendingStrength(false))
	assert.Equal(t, 6, cc.AttackingStrength())
	assert.Equal(t, combat.KindCity, cc.Kind())
	assert.True(t, cc.IsRanged())
	assert.True(t, cc.IsCity())
	assert.False(t, cc.IsMelee())
}

func TestCityStrength_BuildingsAndTerrain(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	walls, _ := g.State.Ruleset.Building("Walls")
	city.Buildings = append(city.Buildings, walls)
	assert.Equal(t, 13, combat.CityStrength(city, g.State.Ruleset))

	hill, _ := g.State.Ruleset.Terrain("Hill")
	city.Center.Features = append(city.Center.Features, hill)
	assert.Equal(t, 18, combat.CityStrength(city, g.State.Ruleset))
}

func TestCityStrength_DefensiveBuildingModifierAppliesToBothSides(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	nation, _ := g.State.Ruleset.Nation("Fortifiers")
	civ := g.State.AddCivilization("Fortifiers", nation, true)
	city := g.Found(t, civ, 2, 2, "Bastion", 1)
	walls, _ := g.State.Ruleset.Building("Walls")
	city.Buildings = append(city.Buildings, walls)

	// 8.4 + int(5*2)
	cc := combat.NewCityCombatant(city, g.State.Ruleset)
	assert.Equal(t, 18, cc.DefendingStrength(false))
	assert.Equal(t, 13, cc.AttackingStrength())
}

func TestCityStrength_DefensiveBuildingModifiersCompound(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	nation, _ := g.State.Ruleset.Nation("Engineers")
	civ := g.State.AddCivilization("Engineers", nation, true)
	city := g.Found(t, civ, 2, 2, "Workshop", 1)
	walls, _ := g.State.Ruleset.Building("Walls")
	city.Buildings = append(city.Buildings, walls)

	// 8.4 + int(5*1.5*1.25); summing the percentages would give int(5*1.75)
	assert.Equal(t, 1.875, civ.ModifierScale(ruleset.BetterDefensiveBuildings))
	assert.Equal(t, 17, combat.CityStrength(city, g.State.Ruleset))
}

func TestCityStrength_Garrison(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	w := g.Spawn(t, "Warrior", g.Rome, 2, 2)
	assert.Equal(t, 9, combat.CityStrength(city, g.State.Ruleset))

	w.Health = 40
	assert.Equal(t, 8, combat.CityStrength(city, g.State.Ruleset))
}

func TestCityStrength_ForeignUnitIsNotAGarrison(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	g.Spawn(t, "Warrior", g.Barbarians, 2, 2)
	assert.Equal(t, 8, combat.CityStrength(city, g.State.Ruleset))
}

func TestCityCombatant_HealthFloor(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	cc := combat.NewCityCombatant(city, g.State.Ruleset)
	require.Equal(t, 200, cc.MaxHealth())

	cc.TakeDamage(150)
	assert.Equal(t, 50, cc.Health())
	assert.False(t, cc.IsDefeated())

	cc.TakeDamage(500)
	assert.Equal(t, 1, cc.Health())
	assert.True(t, cc.IsDefeated())
	assert.Equal(t, 1, cc.DefendingStrength(false))
	assert.Equal(t, 1, cc.DefendingStrength(true))
}

func TestCityCombatant_MatchesFilter(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	cc := combat.NewCityCombatant(city, g.State.Ruleset)
	assert.True(t, cc.MatchesFilter("City", false))
	assert.True(t, cc.MatchesFilter("All", false))
	assert.True(t, cc.MatchesFilter("Capital", false))
	assert.True(t, cc.MatchesFilter("{City} {Capital}", true))
	assert.False(t, cc.MatchesFilter("Walls", false))
	assert.False(t, cc.MatchesFilter("Melee", false))
}

func TestCityCombatant_CanAttackOncePerTurn(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	city := g.Found(t, g.Rome, 2, 2, "Roma", 1)
	cc := combat.NewCityCombatant(city, g.State.Ruleset)
	assert.True(t, cc.CanAttack())
	city.Bombarded = true
	assert.False(t, cc.CanAttack())
	g.State.StartTurn(g.Rome)
	assert.True(t, cc.CanAttack())
}

func TestUnitStrength(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	warrior := g.Spawn(t, "Warrior", g.Rome, 1, 1)
	archer := g.Spawn(t, "Archer", g.Rome, 2, 2)
	rs := g.State.Ruleset

	assert.Equal(t, 8, combat.UnitAttackingStrength(warrior))
	assert.Equal(t, 7, combat.UnitAttackingStrength(archer))
	assert.Equal(t, 8, combat.UnitDefendingStrength(warrior, rs, true))
	assert.Equal(t, 7, combat.UnitDefendingStrength(archer, rs, true))
	assert.Equal(t, 5, combat.UnitDefendingStrength(archer, rs, false))
}

func TestUnitStrength_EmbarkedUsesEraDefense(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	g.SetTerrain(t, 3, 3, "Ocean")
	archer := g.Spawn(t, "Archer", g.Rome, 3, 3)
	rs := g.State.Ruleset

	require.True(t, archer.IsEmbarked())
	assert.Equal(t, 3, combat.UnitDefendingStrength(archer, rs, true))
	assert.Equal(t, 3, combat.UnitDefendingStrength(archer, rs, false))

	g.Rome.Techs["Optics"] = true
	assert.Equal(t, 5, combat.UnitDefendingStrength(archer, rs, true))
}

func TestUnitStrength_EmbarkedCivilianKeepsZero(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	g.SetTerrain(t, 3, 3, "Ocean")
	worker := g.Spawn(t, "Worker", g.Rome, 3, 3)
	assert.Equal(t, 0, combat.UnitDefendingStrength(worker, g.State.Ruleset, false))
}

func TestUnitCombatant_NoHealthClamp(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	uc := combat.NewUnitCombatant(g.Spawn(t, "Warrior", g.Rome, 1, 1), g.State.Ruleset)
	uc.TakeDamage(130)
	assert.Equal(t, -30, uc.Health())
	assert.True(t, uc.IsDefeated())
}

func TestUnitCombatant_Classification(t *testing.T) {
	g := testutil.NewGame(t, 5, 5)
	rs := g.State.Ruleset
	warrior := combat.NewUnitCombatant(g.Spawn(t, "Warrior", g.Rome, 0, 0), rs)
	archer := combat.NewUnitCombatant(g.Spawn(t, "Archer", g.Rome, 1, 0), rs)
	worker := combat.NewUnitCombatant(g.Spawn(t, "Worker", g.Rome, 2, 0), rs)

	assert.True(t, warrior.IsMelee())
	assert.True(t, warrior.IsLand())
	assert.True(t, warrior.CanAttack())
	assert.True(t, archer.IsRanged())
	assert.True(t, worker.IsCivilian())
	assert.False(t, worker.CanAttack())
	assert.True(t, warrior.MatchesFilter("{Melee} {Land}", true))
	assert.False(t, archer.MatchesFilter("Melee", false))
}

func TestProperty_CityStrength_MonotoneInPopulation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 5, 5)
		city := g.Found(rt, g.Rome, 2, 2, "Roma", 1)
		a := rapid.IntRange(0, 60).Draw(rt, "a")
		b := rapid.IntRange(a, 80).Draw(rt, "b")

		city.Population = a
		sa := combat.CityStrength(city, g.State.Ruleset)
		city.Population = b
		sb := combat.CityStrength(city, g.State.Ruleset)
		if sa > sb {
			rt.Fatalf("population %d -> %d lowered strength %d -> %d", a, b, sa, sb)
		}
	})
}

func TestProperty_CityStrength_MonotoneInTechs(t *testing.T) {
	techs := []string{"Bronze Working", "Archery", "Optics"}
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 5, 5)
		city := g.Found(rt, g.Rome, 2, 2, "Roma", rapid.IntRange(0, 20).Draw(rt, "pop"))
		n := rapid.IntRange(0, len(techs)-1).Draw(rt, "n")
		for _, tech := range techs[:n] {
			g.Rome.Techs[tech] = true
		}
		before := combat.CityStrength(city, g.State.Ruleset)
		g.Rome.Techs[techs[n]] = true
		after := combat.CityStrength(city, g.State.Ruleset)
		if before > after {
			rt.Fatalf("researching %s lowered strength %d -> %d", techs[n], before, after)
		}
	})
}

func TestProperty_CityStrength_MonotoneInGarrisonHealth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 5, 5)
		city := g.Found(rt, g.Rome, 2, 2, "Roma", 3)
		w := g.Spawn(rt, "Spearman", g.Rome, 2, 2)
		a := rapid.IntRange(1, 100).Draw(rt, "a")
		b := rapid.IntRange(a, 100).Draw(rt, "b")

		w.Health = a
		sa := combat.CityStrength(city, g.State.Ruleset)
		w.Health = b
		sb := combat.CityStrength(city, g.State.Ruleset)
		if sa > sb {
			rt.Fatalf("garrison health %d -> %d lowered strength %d -> %d", a, b, sa, sb)
		}
	})
}

func TestProperty_CityAttackIsThreeQuartersOfDefense(t *testing.T) {
	nations := []string{"Rome", "Fortifiers", "Engineers"}
	buildings := []string{"Walls", "Castle", "Granary"}
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 5, 5)
		rs := g.State.Ruleset
		name := rapid.SampledFrom(nations).Draw(rt, "nation")
		nation, _ := rs.Nation(name)
		civ := g.State.AddCivilization("Keepers", nation, true)
		city := g.Found(rt, civ, 2, 2, "Keep", rapid.IntRange(0, 40).Draw(rt, "pop"))
		for _, b := range buildings {
			if rapid.Bool().Draw(rt, b) {
				building, _ := rs.Building(b)
				city.Buildings = append(city.Buildings, building)
			}
		}
		if rapid.Bool().Draw(rt, "garrison") {
			w := g.Spawn(rt, "Warrior", civ, 2, 2)
			w.Health = rapid.IntRange(1, 100).Draw(rt, "garrisonHealth")
		}
		city.Health = rapid.IntRange(2, city.MaxHealth(rs)).Draw(rt, "health")

		cc := combat.NewCityCombatant(city, rs)
		want := int(float64(cc.DefendingStrength(false)) * 0.75)
		if got := cc.AttackingStrength(); got != want {
			rt.Fatalf("%s: attack %d, want floor(%d*0.75)=%d", name, got, cc.DefendingStrength(false), want)
		}
	})
}

func TestProperty_EmbarkedDefenseIgnoresUnitStats(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 5, 5)
		rs := g.State.Ruleset
		var combatants []string
		for _, u := range rs.Units {
			if !u.IsCivilian() && u.IsLand() {
				combatants = append(combatants, u.Name)
			}
		}
		g.SetTerrain(rt, 2, 2, "Ocean")
		u := g.Spawn(rt, rapid.SampledFrom(combatants).Draw(rt, "unit"), g.Rome, 2, 2)
		base := *u.Base
		base.Strength = rapid.IntRange(1, 200).Draw(rt, "strength")
		if base.RangedStrength > 0 {
			base.RangedStrength = rapid.IntRange(1, 200).Draw(rt, "ranged")
		}
		u.Base = &base
		if rapid.Bool().Draw(rt, "classical") {
			g.Rome.Techs["Optics"] = true
		}
		if !u.IsEmbarked() {
			rt.Fatalf("%s on ocean is not embarked", u.Name())
		}

		want := g.Rome.Era(rs).EmbarkDefense
		if got := combat.UnitDefendingStrength(u, rs, rapid.Bool().Draw(rt, "byRanged")); got != want {
			rt.Fatalf("%s (strength %d, ranged %d) defends at %d, want era defense %d",
				u.Name(), base.Strength, base.RangedStrength, got, want)
		}
	})
}

func TestProperty_CityHealthNeverBelowOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := testutil.NewGame(rt, 5, 5)
		cc := combat.NewCityCombatant(g.Found(rt, g.Rome, 2, 2, "Roma", 1), g.State.Ruleset)
		hits := rapid.SliceOfN(rapid.IntRange(0, 300), 1, 10).Draw(rt, "hits")
		for _, h := range hits {
			cc.TakeDamage(h)
			if cc.Health() < 1 {
				rt.Fatalf("city health fell to %d", cc.Health())
			}
		}
	})
}
