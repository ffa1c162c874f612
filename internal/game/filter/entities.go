package filter

import (
	"strings"

	"github.com/cory-johannsen/warband/internal/game/world"
)

// Unit reports whether u matches filter. When compound is false the filter
// is treated as a single token and braces or non-[...] are matched literally.
func Unit(u *world.Unit, filter string, compound bool) bool {
	single := func(f string) bool { return unitSingle(u, f) }
	if compound {
		return Matches(filter, single)
	}
	return single(filter)
}

func unitSingle(u *world.Unit, f string) bool {
	switch f {
	case All, "all":
		return true
	case "Melee":
		return u.IsMelee()
	case "Ranged":
		return u.IsRanged()
	case "Civilian":
		return u.IsCivilian()
	case "Military":
		return u.IsMilitary()
	case "Land":
		return u.Base.IsLand()
	case "Water":
		return u.Base.IsWater()
	case "Air":
		return u.Base.IsAir()
	case "non-air":
		return !u.Base.IsAir()
	case "Embarked":
		return u.IsEmbarked()
	case "Wounded":
		return u.Health < 100
	case "Fortified":
		return u.Fortified
	case "Barbarian":
		return u.Civ != nil && u.Civ.IsBarbarian()
	}
	if f == u.Base.Name {
		return true
	}
	if f == u.Base.RequiredTech && f != "" {
		return true
	}
	// "Melee units" reads the same as "Melee"
	if base, ok := strings.CutSuffix(f, " units"); ok && base != "" {
		return unitSingle(u, strings.ToUpper(base[:1])+base[1:])
	}
	return false
}

// City reports whether c matches filter as seen by viewer, which may be nil.
func City(c *world.City, viewer *world.Civilization, filter string, compound bool) bool {
	single := func(f string) bool { return citySingle(c, viewer, f) }
	if compound {
		return Matches(filter, single)
	}
	return single(filter)
}

func citySingle(c *world.City, viewer *world.Civilization, f string) bool {
	switch f {
	case All, "all", "in this city", "in all cities":
		return true
	case "Your", "in your cities":
		return viewer != nil && viewer == c.Civ
	case "Capital", "in capital":
		return c.Capital
	case "Garrisoned", "in all cities with a garrison":
		return c.Garrison() != nil
	case "Coastal", "in all coastal cities":
		for _, n := range c.Center.Neighbors() {
			if n.IsWater() {
				return true
			}
		}
		return false
	case "Enemy", "in enemy cities":
		return viewer != nil && viewer.IsAtWarWith(c.Civ)
	}
	if f == c.Name {
		return true
	}
	return c.HasBuilding(f)
}
