package world

import (
	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// Alert is a pending notification for a civilization's player.
type Alert struct {
	Turn int
	Text string
	Pos  Position
}

// Civilization is a faction that owns cities and units.
//
// Invariant: units and cities hold only live entities, in creation order.
type Civilization struct {
	ID     int
	Name   string
	Nation *ruleset.Nation
	// Techs is the set of researched technology names.
	Techs        map[string]bool
	Gold         int
	AIControlled bool
	// Alerts queues notifications until the owner reads them. Automation
	// clears it at the end of its pass.
	Alerts []Alert

	atWar  map[*Civilization]bool
	units  []*Unit
	cities []*City
}

// IsBarbarian reports whether the civilization plays the barbarian nation.
func (c *Civilization) IsBarbarian() bool {
	return c.Nation != nil && c.Nation.Barbarian
}

// IsAtWarWith reports whether c and o are hostile. Barbarians are at war
// with everyone.
func (c *Civilization) IsAtWarWith(o *Civilization) bool {
	if o == nil || o == c {
		return false
	}
	if c.IsBarbarian() || o.IsBarbarian() {
		return true
	}
	return c.atWar[o]
}

// DeclareWar puts c and o at war with each other.
func (c *Civilization) DeclareWar(o *Civilization) {
	if o == nil || o == c {
		return
	}
	c.atWar[o] = true
	o.atWar[c] = true
}

// MakePeace ends a war between c and o.
func (c *Civilization) MakePeace(o *Civilization) {
	delete(c.atWar, o)
	delete(o.atWar, c)
}

// HasTech reports whether the named technology is researched.
func (c *Civilization) HasTech(name string) bool {
	return name == "" || c.Techs[name]
}

// TechFraction is the share of the ruleset's tech tree this civilization has
// researched. A ruleset without technologies yields 0.5.
//
// Postcondition: the result is in [0, 1].
func (c *Civilization) TechFraction(rs *ruleset.Ruleset) float64 {
	total := len(rs.Technologies)
	if total == 0 {
		return 0.5
	}
	known := 0
	for _, t := range rs.Technologies {
		if c.Techs[t.Name] {
			known++
		}
	}
	return float64(known) / float64(total)
}

// Era returns the latest era among the researched technologies, falling
// back to the ruleset's first era.
//
// Postcondition: never returns nil.
func (c *Civilization) Era(rs *ruleset.Ruleset) *ruleset.Era {
	era := rs.FirstEra()
	for name := range c.Techs {
		t, ok := rs.Technology(name)
		if !ok {
			continue
		}
		e, ok := rs.Era(t.Era)
		if ok && e.Number > era.Number {
			era = e
		}
	}
	return era
}

// CanEmbark reports whether a researched technology lets land units enter water.
func (c *Civilization) CanEmbark(rs *ruleset.Ruleset) bool {
	for name := range c.Techs {
		if t, ok := rs.Technology(name); ok && t.EnablesEmbarkation {
			return true
		}
	}
	return false
}

// ModifierScale is the product of (100+Percent)/100 over the nation's
// modifiers of type mt, applied one after another. It is 1 when none match.
func (c *Civilization) ModifierScale(mt ruleset.ModifierType) float64 {
	scale := 1.0
	if c.Nation == nil {
		return scale
	}
	for _, m := range c.Nation.Modifiers {
		if m.Type == mt {
			scale *= float64(100+m.Percent) / 100
		}
	}
	return scale
}

// Units returns the civilization's live units in creation order.
//
// Postcondition: the returned slice is a copy; mutating it does not affect c.
func (c *Civilization) Units() []*Unit {
	return append([]*Unit(nil), c.units...)
}

// Cities returns the civilization's cities in founding order.
func (c *Civilization) Cities() []*City {
	return append([]*City(nil), c.cities...)
}

// IsAlive reports whether the civilization still has a city or a unit.
func (c *Civilization) IsAlive() bool {
	return len(c.units) > 0 || len(c.cities) > 0
}

// AddAlert queues a notification.
func (c *Civilization) AddAlert(a Alert) {
	c.Alerts = append(c.Alerts, a)
}

// ClearAlerts drops every pending notification.
//
// Postcondition: len(c.Alerts) == 0.
func (c *Civilization) ClearAlerts() {
	c.Alerts = nil
}

func (c *Civilization) removeUnit(u *Unit) {
	for i, x := range c.units {
		if x == u {
			c.units = append(c.units[:i], c.units[i+1:]...)
			return
		}
	}
}

func (c *Civilization) removeCity(city *City) {
	for i, x := range c.cities {
		if x == city {
			c.cities = append(c.cities[:i], c.cities[i+1:]...)
			return
		}
	}
}
