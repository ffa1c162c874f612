// Package ruleset holds the read-only game ontology: constants, eras,
// technologies, terrains, improvements, buildings, units and nations.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ruleset is the complete ontology a game runs under.
//
// Invariant: every name-keyed map is consistent with its ordered slice.
// Invariant: after Validate succeeds, every cross reference resolves.
type Ruleset struct {
	Constants Constants

	Eras         []*Era
	Technologies []*Technology
	Terrains     []*Terrain
	Improvements []*Improvement
	Buildings    []*Building
	Units        []*BaseUnit
	Nations      []*Nation

	eras         map[string]*Era
	technologies map[string]*Technology
	terrains     map[string]*Terrain
	improvements map[string]*Improvement
	buildings    map[string]*Building
	units        map[string]*BaseUnit
	nations      map[string]*Nation
}

// New indexes the given objects into a Ruleset.
//
// Postcondition: lookups by name are available; duplicate names keep the last entry.
func New(c Constants, eras []*Era, techs []*Technology, terrains []*Terrain,
	improvements []*Improvement, buildings []*Building, units []*BaseUnit, nations []*Nation) *Ruleset {
	sort.SliceStable(eras, func(i, j int) bool { return eras[i].Number < eras[j].Number })
	r := &Ruleset{
		Constants:    c,
		Eras:         eras,
		Technologies: techs,
		Terrains:     terrains,
		Improvements: improvements,
		Buildings:    buildings,
		Units:        units,
		Nations:      nations,
	}
	r.eras = index(eras, func(e *Era) string { return e.Name })
	r.technologies = index(techs, func(t *Technology) string { return t.Name })
	r.terrains = index(terrains, func(t *Terrain) string { return t.Name })
	r.improvements = index(improvements, func(i *Improvement) string { return i.Name })
	r.buildings = index(buildings, func(b *Building) string { return b.Name })
	r.units = index(units, func(u *BaseUnit) string { return u.Name })
	r.nations = index(nations, func(n *Nation) string { return n.Name })
	return r
}

func index[T any](items []*T, key func(*T) string) map[string]*T {
	m := make(map[string]*T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

// Era returns the named era.
func (r *Ruleset) Era(name string) (*Era, bool) {
	e, ok := r.eras[name]
	return e, ok
}

// Technology returns the named technology.
func (r *Ruleset) Technology(name string) (*Technology, bool) {
	t, ok := r.technologies[name]
	return t, ok
}

// Terrain returns the named terrain.
func (r *Ruleset) Terrain(name string) (*Terrain, bool) {
	t, ok := r.terrains[name]
	return t, ok
}

// Improvement returns the named improvement.
func (r *Ruleset) Improvement(name string) (*Improvement, bool) {
	i, ok := r.improvements[name]
	return i, ok
}

// Building returns the named building.
func (r *Ruleset) Building(name string) (*Building, bool) {
	b, ok := r.buildings[name]
	return b, ok
}

// Unit returns the named base unit.
func (r *Ruleset) Unit(name string) (*BaseUnit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Nation returns the named nation.
func (r *Ruleset) Nation(name string) (*Nation, bool) {
	n, ok := r.nations[name]
	return n, ok
}

// FirstEra returns the earliest era, or a zero-defense placeholder when the
// ruleset defines none.
//
// Postcondition: never returns nil.
func (r *Ruleset) FirstEra() *Era {
	if len(r.Eras) == 0 {
		return &Era{Name: "Ancient era", EmbarkDefense: 3}
	}
	return r.Eras[0]
}

// Validate checks that every cross reference resolves.
//
// Postcondition: Returns nil, or an error listing every dangling reference.
func (r *Ruleset) Validate() error {
	var errs []string
	for _, t := range r.Technologies {
		if t.Era != "" {
			if _, ok := r.eras[t.Era]; !ok {
				errs = append(errs, fmt.Sprintf("technology %q: unknown era %q", t.Name, t.Era))
			}
		}
		for _, p := range t.Prerequisites {
			if _, ok := r.technologies[p]; !ok {
				errs = append(errs, fmt.Sprintf("technology %q: unknown prerequisite %q", t.Name, p))
			}
		}
	}
	for _, u := range r.Units {
		switch u.Domain {
		case DomainLand, DomainWater, DomainAir:
		default:
			errs = append(errs, fmt.Sprintf("unit %q: domain must be one of [land, water, air], got %q", u.Name, u.Domain))
		}
		if u.RequiredTech != "" {
			if _, ok := r.technologies[u.RequiredTech]; !ok {
				errs = append(errs, fmt.Sprintf("unit %q: unknown required tech %q", u.Name, u.RequiredTech))
			}
		}
		if u.UpgradesTo != "" {
			if _, ok := r.units[u.UpgradesTo]; !ok {
				errs = append(errs, fmt.Sprintf("unit %q: unknown upgrade %q", u.Name, u.UpgradesTo))
			}
		}
	}
	for _, t := range r.Terrains {
		switch t.Type {
		case TerrainLand, TerrainWater, TerrainFeature:
		default:
			errs = append(errs, fmt.Sprintf("terrain %q: type must be one of [land, water, feature], got %q", t.Name, t.Type))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads a ruleset directory laid out as
//
//	constants.yaml
//	eras/*.yaml  techs/*.yaml  terrains/*.yaml  improvements/*.yaml
//	buildings/*.yaml  units/*.yaml  nations/*.yaml
//
// Every part is optional; a missing constants file keeps DefaultConstants
// and a missing directory yields no objects of that kind.
//
// Precondition: root must be a readable directory.
// Postcondition: Returns a validated Ruleset or a non-nil error.
func Load(root string) (*Ruleset, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("ruleset.Load: %w", err)
	}

	constants := DefaultConstants()
	constPath := filepath.Join(root, "constants.yaml")
	if _, err := os.Stat(constPath); err == nil {
		c, err := LoadConstants(constPath)
		if err != nil {
			return nil, err
		}
		constants = c
	}

	eras, err := loadKind[Era](root, "eras")
	if err != nil {
		return nil, err
	}
	techs, err := loadKind[Technology](root, "techs")
	if err != nil {
		return nil, err
	}
	terrains, err := loadKind[Terrain](root, "terrains")
	if err != nil {
		return nil, err
	}
	improvements, err := loadKind[Improvement](root, "improvements")
	if err != nil {
		return nil, err
	}
	buildings, err := loadKind[Building](root, "buildings")
	if err != nil {
		return nil, err
	}
	units, err := loadKind[BaseUnit](root, "units")
	if err != nil {
		return nil, err
	}
	nations, err := loadKind[Nation](root, "nations")
	if err != nil {
		return nil, err
	}

	r := New(constants, eras, techs, terrains, improvements, buildings, units, nations)
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating ruleset %s: %w", root, err)
	}
	return r, nil
}

// loadKind parses every YAML file under root/sub. A file may hold a single
// object or a list of objects.
func loadKind[T any](root, sub string) ([]*T, error) {
	dir := filepath.Join(root, sub)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []*T
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("parsing %s file %s: %w", sub, path, err)
		}
		if len(node.Content) == 0 {
			continue
		}
		if node.Content[0].Kind == yaml.SequenceNode {
			var items []*T
			if err := node.Content[0].Decode(&items); err != nil {
				return nil, fmt.Errorf("parsing %s file %s: %w", sub, path, err)
			}
			out = append(out, items...)
			continue
		}
		var item T
		if err := node.Content[0].Decode(&item); err != nil {
			return nil, fmt.Errorf("parsing %s file %s: %w", sub, path, err)
		}
		out = append(out, &item)
	}
	return out, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
