package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ParsesEveryKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "constants.yaml"), `
city_strength_base: 10
pillage_heal_amount: 30
`)
	writeFile(t, filepath.Join(dir, "eras", "eras.yaml"), `
- name: Classical era
  number: 1
  embark_defense: 5
- name: Ancient era
  number: 0
  embark_defense: 3
`)
	writeFile(t, filepath.Join(dir, "techs", "bronze.yaml"), `
name: Bronze Working
era: Ancient era
cost: 55
`)
	writeFile(t, filepath.Join(dir, "techs", "optics.yaml"), `
name: Optics
era: Classical era
prerequisites: [Bronze Working]
enables_embarkation: true
`)
	writeFile(t, filepath.Join(dir, "terrains", "terrains.yaml"), `
- {name: Grassland, type: land, movement_cost: 1}
- {name: Hill, type: feature, movement_cost: 2, city_strength: 5, defense_bonus: 25}
- {name: Ocean, type: water, movement_cost: 1}
`)
	writeFile(t, filepath.Join(dir, "units", "warrior.yaml"), `
name: Warrior
domain: land
strength: 8
movement: 2
upgrades_to: Spearman
`)
	writeFile(t, filepath.Join(dir, "units", "spearman.yaml"), `
name: Spearman
domain: land
strength: 11
movement: 2
required_tech: Bronze Working
`)
	writeFile(t, filepath.Join(dir, "nations", "barbarians.yaml"), `
name: Barbarians
barbarian: true
modifiers:
  - {type: better_defensive_buildings, percent: 50}
`)

	rs, err := ruleset.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 10.0, rs.Constants.CityStrengthBase)
	assert.Equal(t, 30, rs.Constants.PillageHealAmount)
	// unspecified keys keep their defaults
	assert.Equal(t, 0.4, rs.Constants.CityStrengthPerPop)
	assert.Equal(t, "Barbarian encampment", rs.Constants.EncampmentImprovement)

	require.Len(t, rs.Eras, 2)
	assert.Equal(t, "Ancient era", rs.Eras[0].Name, "eras sorted by number")
	assert.Equal(t, "Ancient era", rs.FirstEra().Name)

	optics, ok := rs.Technology("Optics")
	require.True(t, ok)
	assert.True(t, optics.EnablesEmbarkation)

	hill, ok := rs.Terrain("Hill")
	require.True(t, ok)
	assert.Equal(t, 5, hill.CityStrength)

	warrior, ok := rs.Unit("Warrior")
	require.True(t, ok)
	assert.True(t, warrior.IsMelee())
	assert.False(t, warrior.IsRanged())
	assert.True(t, warrior.IsLand())

	barbs, ok := rs.Nation("Barbarians")
	require.True(t, ok)
	assert.True(t, barbs.Barbarian)
	require.Len(t, barbs.Modifiers, 1)
	assert.Equal(t, ruleset.BetterDefensiveBuildings, barbs.Modifiers[0].Type)
}

func TestLoad_EmptyDirectoryUsesDefaults(t *testing.T) {
	rs, err := ruleset.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ruleset.DefaultConstants(), rs.Constants)
	assert.Empty(t, rs.Technologies)
	assert.Equal(t, 3, rs.FirstEra().EmbarkDefense)
}

func TestLoad_MissingRootFails(t *testing.T) {
	_, err := ruleset.Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoad_DanglingReferencesFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "units", "u.yaml"), `
name: Swordsman
domain: land
strength: 14
required_tech: Iron Working
upgrades_to: Longswordsman
`)
	_, err := ruleset.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Iron Working")
	assert.Contains(t, err.Error(), "Longswordsman")
}

func TestValidate_RejectsUnknownDomain(t *testing.T) {
	rs := ruleset.New(ruleset.DefaultConstants(), nil, nil, nil, nil, nil,
		[]*ruleset.BaseUnit{{Name: "Zeppelin", Domain: "sky", Strength: 5}}, nil)
	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain")
}

func TestBaseUnit_Classification(t *testing.T) {
	tests := []struct {
		unit                      ruleset.BaseUnit
		civilian, ranged, melee bool
	}{
		{ruleset.BaseUnit{Name: "Worker"}, true, false, false},
		{ruleset.BaseUnit{Name: "Archer", Strength: 5, RangedStrength: 7}, false, true, false},
		{ruleset.BaseUnit{Name: "Brute", Strength: 8}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.unit.Name, func(t *testing.T) {
			assert.Equal(t, tt.civilian, tt.unit.IsCivilian())
			assert.Equal(t, tt.ranged, tt.unit.IsRanged())
			assert.Equal(t, tt.melee, tt.unit.IsMelee())
		})
	}
}
