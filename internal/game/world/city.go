package world

import (
	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// City is a settlement standing on its center tile.
type City struct {
	ID         int
	Name       string
	Civ        *Civilization
	Center     *Tile
	Population int
	Health     int
	Buildings  []*ruleset.Building
	Capital    bool
	// Bombarded is set once the city has attacked this turn.
	Bombarded bool
}

// MaxHealth is the ruleset base plus the health granted by buildings.
func (c *City) MaxHealth(rs *ruleset.Ruleset) int {
	total := rs.Constants.CityMaxHealth
	for _, b := range c.Buildings {
		total += b.CityHealth
	}
	return total
}

// Garrison returns the owner's military unit on the center tile, or nil.
func (c *City) Garrison() *Unit {
	u := c.Center.MilitaryUnit
	if u == nil || u.Civ != c.Civ {
		return nil
	}
	return u
}

// HasBuilding reports whether the named building is constructed.
func (c *City) HasBuilding(name string) bool {
	for _, b := range c.Buildings {
		if b.Name == name {
			return true
		}
	}
	return false
}
