package world

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// yamlScenario is the top-level YAML structure for scenario files.
type yamlScenario struct {
	Map           yamlMap     `yaml:"map"`
	Civilizations []yamlCiv   `yaml:"civilizations"`
	Cities        []yamlCity  `yaml:"cities"`
	Units         []yamlUnit  `yaml:"units"`
	Wars          [][2]string `yaml:"wars"`
}

type yamlMap struct {
	Width   int        `yaml:"width"`
	Height  int        `yaml:"height"`
	Terrain string     `yaml:"terrain"`
	Tiles   []yamlTile `yaml:"tiles"`
}

type yamlTile struct {
	Q           int      `yaml:"q"`
	R           int      `yaml:"r"`
	Terrain     string   `yaml:"terrain"`
	Features    []string `yaml:"features"`
	Improvement string   `yaml:"improvement"`
	Road        bool     `yaml:"road"`
	Owner       string   `yaml:"owner"`
}

type yamlCiv struct {
	Name   string   `yaml:"name"`
	Nation string   `yaml:"nation"`
	AI     bool     `yaml:"ai"`
	Gold   int      `yaml:"gold"`
	Techs  []string `yaml:"techs"`
}

type yamlCity struct {
	Name       string   `yaml:"name"`
	Civ        string   `yaml:"civ"`
	Q          int      `yaml:"q"`
	R          int      `yaml:"r"`
	Population int      `yaml:"population"`
	Buildings  []string `yaml:"buildings"`
	Health     int      `yaml:"health"`
}

type yamlUnit struct {
	Type     string `yaml:"type"`
	Civ      string `yaml:"civ"`
	Q        int    `yaml:"q"`
	R        int    `yaml:"r"`
	Health   int    `yaml:"health"`
	Movement *int   `yaml:"movement"`
}

// LoadScenarioFromFile reads a scenario YAML file into a new State.
//
// Precondition: path must point to a valid YAML scenario file; rs must not be nil.
// Postcondition: Returns a populated State or a non-nil error.
func LoadScenarioFromFile(path string, rs *ruleset.Ruleset) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	s, err := LoadScenarioFromBytes(data, rs)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %s: %w", path, err)
	}
	return s, nil
}

// LoadScenarioFromBytes parses a scenario and resolves every name against rs.
//
// Postcondition: Returns a populated State, or an error listing every
// unresolved reference.
func LoadScenarioFromBytes(data []byte, rs *ruleset.Ruleset) (*State, error) {
	var ys yamlScenario
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if ys.Map.Width <= 0 || ys.Map.Height <= 0 {
		return nil, errors.New("map width and height must be positive")
	}

	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	base, ok := rs.Terrain(ys.Map.Terrain)
	if !ok {
		return nil, fmt.Errorf("unknown map terrain %q", ys.Map.Terrain)
	}
	s := NewState(rs, NewTileMap(ys.Map.Width, ys.Map.Height, base))

	for _, yc := range ys.Civilizations {
		var nation *ruleset.Nation
		if yc.Nation != "" {
			n, ok := rs.Nation(yc.Nation)
			if !ok {
				fail("civilization %q: unknown nation %q", yc.Name, yc.Nation)
				continue
			}
			nation = n
		}
		c := s.AddCivilization(yc.Name, nation, yc.AI)
		c.Gold = yc.Gold
		for _, tech := range yc.Techs {
			if _, ok := rs.Technology(tech); !ok {
				fail("civilization %q: unknown tech %q", yc.Name, tech)
				continue
			}
			c.Techs[tech] = true
		}
	}

	for _, w := range ys.Wars {
		a, okA := s.Civilization(w[0])
		b, okB := s.Civilization(w[1])
		if !okA || !okB {
			fail("war %v: unknown civilization", w)
			continue
		}
		a.DeclareWar(b)
	}

	for _, yt := range ys.Map.Tiles {
		t, ok := s.Map.Tile(Position{Q: yt.Q, R: yt.R})
		if !ok {
			fail("tile (%d,%d): out of bounds", yt.Q, yt.R)
			continue
		}
		if yt.Terrain != "" {
			terrain, ok := rs.Terrain(yt.Terrain)
			if !ok {
				fail("tile (%d,%d): unknown terrain %q", yt.Q, yt.R, yt.Terrain)
			} else {
				t.BaseTerrain = terrain
			}
		}
		for _, f := range yt.Features {
			feature, ok := rs.Terrain(f)
			if !ok {
				fail("tile (%d,%d): unknown feature %q", yt.Q, yt.R, f)
				continue
			}
			t.Features = append(t.Features, feature)
		}
		if yt.Improvement != "" {
			imp, ok := rs.Improvement(yt.Improvement)
			if !ok {
				fail("tile (%d,%d): unknown improvement %q", yt.Q, yt.R, yt.Improvement)
			} else {
				t.Improvement = imp
			}
		}
		t.Road = yt.Road
		if yt.Owner != "" {
			owner, ok := s.Civilization(yt.Owner)
			if !ok {
				fail("tile (%d,%d): unknown owner %q", yt.Q, yt.R, yt.Owner)
			} else {
				t.Owner = owner
			}
		}
	}

	for _, yc := range ys.Cities {
		civ, ok := s.Civilization(yc.Civ)
		if !ok {
			fail("city %q: unknown civilization %q", yc.Name, yc.Civ)
			continue
		}
		t, ok := s.Map.Tile(Position{Q: yc.Q, R: yc.R})
		if !ok {
			fail("city %q: out of bounds", yc.Name)
			continue
		}
		city, err := s.FoundCity(civ, t, yc.Name, yc.Population)
		if err != nil {
			fail("city %q: %v", yc.Name, err)
			continue
		}
		for _, name := range yc.Buildings {
			b, ok := rs.Building(name)
			if !ok {
				fail("city %q: unknown building %q", yc.Name, name)
				continue
			}
			city.Buildings = append(city.Buildings, b)
		}
		city.Health = city.MaxHealth(rs)
		if yc.Health > 0 && yc.Health < city.Health {
			city.Health = yc.Health
		}
	}

	for i, yu := range ys.Units {
		base, ok := rs.Unit(yu.Type)
		if !ok {
			fail("unit %d: unknown type %q", i, yu.Type)
			continue
		}
		civ, ok := s.Civilization(yu.Civ)
		if !ok {
			fail("unit %d: unknown civilization %q", i, yu.Civ)
			continue
		}
		t, ok := s.Map.Tile(Position{Q: yu.Q, R: yu.R})
		if !ok {
			fail("unit %d: out of bounds", i)
			continue
		}
		u, err := s.SpawnUnit(base, civ, t)
		if err != nil {
			fail("unit %d: %v", i, err)
			continue
		}
		if yu.Health > 0 && yu.Health < u.Health {
			u.Health = yu.Health
		}
		if yu.Movement != nil {
			u.Movement = *yu.Movement
		}
	}

	if len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "; "))
	}
	return s, nil
}
