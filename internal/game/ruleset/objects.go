package ruleset

// Era is an age of technology. The civilization's current era decides the
// defence of its embarked units.
type Era struct {
	Name          string `yaml:"name"`
	Number        int    `yaml:"number"`
	EmbarkDefense int    `yaml:"embark_defense"`
}

// Technology is one node of the tech tree.
type Technology struct {
	Name          string   `yaml:"name"`
	Era           string   `yaml:"era"`
	Cost          int      `yaml:"cost"`
	Prerequisites []string `yaml:"prerequisites"`
	// EnablesEmbarkation lets land units of a civilization that knows this
	// tech enter water tiles.
	EnablesEmbarkation bool `yaml:"enables_embarkation"`
}

// TerrainType classifies a terrain.
type TerrainType string

const (
	TerrainLand    TerrainType = "land"
	TerrainWater   TerrainType = "water"
	TerrainFeature TerrainType = "feature"
)

// Terrain is a base terrain or a terrain feature layered on top of one.
type Terrain struct {
	Name         string      `yaml:"name"`
	Type         TerrainType `yaml:"type"`
	MovementCost int         `yaml:"movement_cost"`
	Impassable   bool        `yaml:"impassable"`
	// CityStrength is granted to a city whose center tile has this terrain.
	CityStrength int `yaml:"city_strength"`
	// DefenseBonus is a percentage; pillagers prefer tiles with a high one.
	DefenseBonus int `yaml:"defense_bonus"`
}

// Improvement is something built on a tile: farms, mines, camps.
type Improvement struct {
	Name string `yaml:"name"`
	// Pillageable is false for improvements that cannot be pillaged at all,
	// such as the barbarian encampment itself.
	Pillageable bool `yaml:"pillageable"`
}

// Building is a city structure. Only its defensive properties matter here.
type Building struct {
	Name         string `yaml:"name"`
	CityStrength int    `yaml:"city_strength"`
	CityHealth   int    `yaml:"city_health"`
}

// Domain is where a unit moves.
type Domain string

const (
	DomainLand  Domain = "land"
	DomainWater Domain = "water"
	DomainAir   Domain = "air"
)

// BaseUnit is a unit template.
//
// A unit with zero Strength is a civilian; a unit with non-zero
// RangedStrength is ranged; every other unit is melee.
type BaseUnit struct {
	Name           string `yaml:"name"`
	Domain         Domain `yaml:"domain"`
	Strength       int    `yaml:"strength"`
	RangedStrength int    `yaml:"ranged_strength"`
	Range          int    `yaml:"range"`
	Movement       int    `yaml:"movement"`
	Cost           int    `yaml:"cost"`
	RequiredTech   string `yaml:"required_tech"`
	UpgradesTo     string `yaml:"upgrades_to"`
	// CannotBeBarbarian keeps the unit out of encampment spawns and barbarian upgrades.
	CannotBeBarbarian bool `yaml:"cannot_be_barbarian"`
}

// IsCivilian reports whether the unit has no combat strength.
func (u *BaseUnit) IsCivilian() bool { return u.Strength == 0 }

// IsMilitary reports whether the unit can fight.
func (u *BaseUnit) IsMilitary() bool { return !u.IsCivilian() }

// IsRanged reports whether the unit attacks at range.
func (u *BaseUnit) IsRanged() bool { return u.RangedStrength > 0 }

// IsMelee reports whether the unit is military and not ranged.
func (u *BaseUnit) IsMelee() bool { return u.IsMilitary() && !u.IsRanged() }

// IsLand reports whether the unit moves over land.
func (u *BaseUnit) IsLand() bool { return u.Domain == DomainLand }

// IsWater reports whether the unit is a ship.
func (u *BaseUnit) IsWater() bool { return u.Domain == DomainWater }

// IsAir reports whether the unit is an aircraft.
func (u *BaseUnit) IsAir() bool { return u.Domain == DomainAir }

// ModifierType names a civilization-wide effect.
type ModifierType string

const (
	// BetterDefensiveBuildings scales the strength a city draws from its
	// buildings by (100+Percent)/100. Several modifiers compound.
	BetterDefensiveBuildings ModifierType = "better_defensive_buildings"
)

// Modifier is a civilization-wide effect granted by a nation.
type Modifier struct {
	Type    ModifierType `yaml:"type"`
	Percent int          `yaml:"percent"`
}

// Nation is a playable (or barbarian) faction template.
type Nation struct {
	Name      string     `yaml:"name"`
	Barbarian bool       `yaml:"barbarian"`
	Modifiers []Modifier `yaml:"modifiers"`
}
