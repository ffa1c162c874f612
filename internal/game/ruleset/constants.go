package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UpgradeCost holds the factors of the unit upgrade gold cost formula.
type UpgradeCost struct {
	Base          float64 `yaml:"base"`
	PerProduction float64 `yaml:"per_production"`
	RoundTo       int     `yaml:"round_to"`
}

// Constants holds the moddable factors used by combat and automation formulae.
//
// City strength:
//
//	base + pop*per_pop + terrain + ((%techs * tech_mult) ^ tech_exp) * tech_full_mult
//	     + garrison_strength * garrison_health/100 * garrison + buildings
//
// where %techs is the fraction of the tech tree researched (0.5 when the
// ruleset defines no technologies).
type Constants struct {
	CityStrengthBase                    float64 `yaml:"city_strength_base"`
	CityStrengthPerPop                  float64 `yaml:"city_strength_per_pop"`
	CityStrengthFromTechsMultiplier     float64 `yaml:"city_strength_from_techs_multiplier"`
	CityStrengthFromTechsExponent       float64 `yaml:"city_strength_from_techs_exponent"`
	CityStrengthFromTechsFullMultiplier float64 `yaml:"city_strength_from_techs_full_multiplier"`
	CityStrengthFromGarrison            float64 `yaml:"city_strength_from_garrison"`

	// CityMaxHealth is the base maximum health of a city before building bonuses.
	CityMaxHealth int `yaml:"city_max_health"`
	// UnitMaxHealth is the maximum health of every unit.
	UnitMaxHealth int `yaml:"unit_max_health"`
	// PillageHealAmount is the health a unit regains from one pillage.
	PillageHealAmount int `yaml:"pillage_heal_amount"`
	// EncampmentImprovement names the improvement that marks a barbarian camp.
	EncampmentImprovement string `yaml:"encampment_improvement"`
	// EncampmentClearGold is paid to a civilization whose unit clears a camp.
	EncampmentClearGold int `yaml:"encampment_clear_gold"`
	// EncampmentSpawnDelay is the dice expression for turns between spawns.
	EncampmentSpawnDelay string `yaml:"encampment_spawn_delay"`

	UnitUpgradeCost UpgradeCost `yaml:"unit_upgrade_cost"`
}

// DefaultConstants returns the stock values.
//
// Postcondition: every field is set to a usable non-zero value.
func DefaultConstants() Constants {
	return Constants{
		CityStrengthBase:                    8.0,
		CityStrengthPerPop:                  0.4,
		CityStrengthFromTechsMultiplier:     5.5,
		CityStrengthFromTechsExponent:       2.8,
		CityStrengthFromTechsFullMultiplier: 1.0,
		CityStrengthFromGarrison:            0.2,
		CityMaxHealth:                       200,
		UnitMaxHealth:                       100,
		PillageHealAmount:                   25,
		EncampmentImprovement:               "Barbarian encampment",
		EncampmentClearGold:                 25,
		EncampmentSpawnDelay:                "1d5+7",
		UnitUpgradeCost: UpgradeCost{
			Base:          10,
			PerProduction: 2,
			RoundTo:       5,
		},
	}
}

// LoadConstants reads path over DefaultConstants; keys absent from the file
// keep their default value.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns the merged Constants or a non-nil error.
func LoadConstants(path string) (Constants, error) {
	c := DefaultConstants()
	data, err := os.ReadFile(path)
	if err != nil {
		return Constants{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Constants{}, fmt.Errorf("parsing constants file %s: %w", path, err)
	}
	return c, nil
}
