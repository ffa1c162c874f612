package barbarian

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

const (
	// EarliestRaidTurn is the first turn a camp may send out raiders.
	EarliestRaidTurn = 10
	// EarliestNavalTurn is the first turn after which a camp may spawn ships.
	EarliestNavalTurn = 30
	// CrowdRadius and CrowdLimit stop spawning once more than CrowdLimit
	// barbarian military units stand within CrowdRadius of a camp.
	CrowdRadius = 4
	CrowdLimit  = 2
)

// Manager owns every encampment of one game.
//
// Manager is not safe for concurrent use; it runs inside the turn loop.
type Manager struct {
	state  *world.State
	src    dice.Source
	delay  dice.Expression
	logger *zap.Logger
	camps  map[world.Position]*Encampment

	// OnSpawn, when set, is called for every unit a camp produces.
	OnSpawn func(*world.Unit)
}

// NewManager creates a Manager and registers the camps already on the map.
//
// Precondition: state and src must not be nil.
// Postcondition: Returns an error if the ruleset's spawn delay is not a
// valid dice expression.
func NewManager(state *world.State, src dice.Source, logger *zap.Logger) (*Manager, error) {
	if state == nil {
		panic("barbarian.NewManager: state must not be nil")
	}
	if src == nil {
		panic("barbarian.NewManager: src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	delay, err := dice.Parse(state.Ruleset.Constants.EncampmentSpawnDelay)
	if err != nil {
		return nil, fmt.Errorf("parsing encampment spawn delay: %w", err)
	}
	m := &Manager{
		state:  state,
		src:    src,
		delay:  delay,
		logger: logger,
		camps:  make(map[world.Position]*Encampment),
	}
	m.sync()
	return m, nil
}

// Camps returns every tracked camp ordered by row, then column.
func (m *Manager) Camps() []*Encampment {
	out := make([]*Encampment, 0, len(m.camps))
	for _, c := range m.camps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.R != out[j].Pos.R {
			return out[i].Pos.R < out[j].Pos.R
		}
		return out[i].Pos.Q < out[j].Pos.Q
	})
	return out
}

// Camp returns the camp at pos.
func (m *Manager) Camp(pos world.Position) (*Encampment, bool) {
	c, ok := m.camps[pos]
	return c, ok
}

// CampAttacked hurries the camp at pos, if any.
func (m *Manager) CampAttacked(pos world.Position) {
	if c, ok := m.camps[pos]; ok {
		c.WasAttacked()
	}
}

// sync starts tracking encampments that appeared on the map.
func (m *Manager) sync() {
	for _, t := range m.state.Encampments() {
		if _, ok := m.camps[t.Pos]; !ok {
			m.camps[t.Pos] = &Encampment{Pos: t.Pos}
		}
	}
}

// Update runs once per turn: cleared camps become ghosts, ghosts whose
// countdown ran out are forgotten, and every remaining camp ticks.
//
// Postcondition: returns the units spawned this turn.
func (m *Manager) Update() []*world.Unit {
	m.sync()
	for _, c := range m.Camps() {
		t, _ := m.state.Map.Tile(c.Pos)
		if t == nil || !m.state.IsEncampment(t) {
			c.WasDestroyed()
		}
		if c.Destroyed && c.Countdown == 0 {
			delete(m.camps, c.Pos)
		}
	}

	var spawned []*world.Unit
	for _, c := range m.Camps() {
		if c.Countdown > 0 {
			c.Countdown--
			continue
		}
		if c.Destroyed {
			continue
		}
		if u := m.spawn(c); u != nil {
			c.Spawned++
			m.resetCountdown(c)
			spawned = append(spawned, u)
		}
	}
	return spawned
}

func (m *Manager) resetCountdown(c *Encampment) {
	n := dice.Roll(m.delay, m.src).Total()
	if quick := c.Spawned - 1; quick > 0 {
		if quick > 3 {
			quick = 3
		}
		n -= quick
	}
	if n < 0 {
		n = 0
	}
	c.Countdown = n
}

// spawn places a defender on an empty camp, or a raider on a free
// neighbouring tile once the game is far enough along.
func (m *Manager) spawn(c *Encampment) *world.Unit {
	barbs := m.state.Barbarians()
	if barbs == nil {
		return nil
	}
	camp, ok := m.state.Map.Tile(c.Pos)
	if !ok {
		return nil
	}
	if camp.MilitaryUnit == nil {
		return m.place(barbs, camp, false)
	}
	if m.state.Turn < EarliestRaidTurn {
		return nil
	}
	crowd := 0
	for _, t := range m.state.Map.TilesInDistance(camp, CrowdRadius) {
		if u := t.MilitaryUnit; u != nil && u.Civ == barbs {
			crowd++
		}
	}
	if crowd > CrowdLimit {
		return nil
	}
	naval := m.state.Turn > EarliestNavalTurn
	var free []*world.Tile
	for _, n := range camp.Neighbors() {
		if n.IsImpassable() || n.IsCityCenter() || len(n.Units()) > 0 {
			continue
		}
		if n.IsWater() && !naval {
			continue
		}
		free = append(free, n)
	}
	if len(free) == 0 {
		return nil
	}
	t := free[m.src.Intn(len(free))]
	return m.place(barbs, t, t.IsWater())
}

func (m *Manager) place(barbs *world.Civilization, t *world.Tile, naval bool) *world.Unit {
	base := m.ChooseUnit(naval)
	if base == nil {
		return nil
	}
	u, err := m.state.SpawnUnit(base, barbs, t)
	if err != nil {
		m.logger.Warn("barbarian spawn failed", zap.Error(err))
		return nil
	}
	m.logger.Info("barbarian unit spawned",
		zap.String("unit", base.Name),
		zap.Int("q", t.Pos.Q),
		zap.Int("r", t.Pos.R),
	)
	if m.OnSpawn != nil {
		m.OnSpawn(u)
	}
	return u
}

// ShareTechs sets the barbarians' known techs to those every living
// non-barbarian civilization has researched.
func (m *Manager) ShareTechs() {
	barbs := m.state.Barbarians()
	if barbs == nil {
		return
	}
	known := make(map[string]bool)
	for _, t := range m.state.Ruleset.Technologies {
		known[t.Name] = true
	}
	for _, civ := range m.state.Civilizations() {
		if civ.IsBarbarian() || !civ.IsAlive() {
			continue
		}
		for name := range known {
			if !civ.Techs[name] {
				delete(known, name)
			}
		}
	}
	barbs.Techs = known
}

// ChooseUnit picks a buildable barbarian-eligible military unit of the
// requested domain, weighted by strength. It returns nil when none qualifies.
func (m *Manager) ChooseUnit(naval bool) *ruleset.BaseUnit {
	m.ShareTechs()
	barbs := m.state.Barbarians()
	var (
		options []*ruleset.BaseUnit
		weights []int
		total   int
	)
	for _, u := range m.state.Ruleset.Units {
		if !u.IsMilitary() || u.CannotBeBarbarian || !barbs.HasTech(u.RequiredTech) {
			continue
		}
		if naval != u.IsWater() || (!naval && !u.IsLand()) {
			continue
		}
		w := u.Strength
		if u.RangedStrength > w {
			w = u.RangedStrength
		}
		if w < 1 {
			w = 1
		}
		options = append(options, u)
		weights = append(weights, w)
		total += w
	}
	if total == 0 {
		return nil
	}
	pick := m.src.Intn(total)
	for i, w := range weights {
		if pick < w {
			return options[i]
		}
		pick -= w
	}
	return options[len(options)-1]
}
