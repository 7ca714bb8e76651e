package points

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed points.yaml
var catalogYAML []byte

// Point describes one data or control point on a device
type Point struct {
	ID          int    `yaml:"id"`          // Numeric identifier used on the wire
	Name        string `yaml:"name"`        // Stable symbolic name
	Unit        string `yaml:"unit"`        // Display unit, empty when unitless
	Writable    bool   `yaml:"writable"`    // Whether SetData accepts this point
	Description string `yaml:"description"` // One-line human description
}

// catalog is the embedded point catalog file layout
type catalog struct {
	Version int      `yaml:"version"`
	Points  []*Point `yaml:"points"`
}

var (
	// Loaded lazily on first lookup
	loadOnce sync.Once
	loadErr  error
	byID     map[int]*Point
	byName   map[string]*Point
	all      []*Point
)

// load parses the embedded catalog into the lookup maps
func load() {
	var cat catalog
	if err := yaml.Unmarshal(catalogYAML, &cat); err != nil {
		loadErr = fmt.Errorf("failed to parse point catalog: %w", err)
		return
	}

	if cat.Version != 1 {
		loadErr = fmt.Errorf("unsupported point catalog version: %d (expected 1)", cat.Version)
		return
	}

	byID = make(map[int]*Point, len(cat.Points))
	byName = make(map[string]*Point, len(cat.Points))
	for _, p := range cat.Points {
		byID[p.ID] = p
		byName[p.Name] = p
	}

	all = cat.Points
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
}

// Get returns the catalog entry for a numeric point ID, if known
func Get(id int) (*Point, bool) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, false
	}
	p, ok := byID[id]
	return p, ok
}

// Lookup returns the catalog entry for a symbolic point name, if known
func Lookup(name string) (*Point, bool) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, false
	}
	p, ok := byName[name]
	return p, ok
}

// Resolve turns a point reference into a numeric ID. A reference is
// either a decimal ID (passed through, known or not) or a symbolic
// name from the catalog.
func Resolve(ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}

	if p, ok := Lookup(ref); ok {
		return p.ID, nil
	}

	loadOnce.Do(load)
	if loadErr != nil {
		return 0, loadErr
	}
	return 0, fmt.Errorf("unknown point %q (use a numeric ID or a catalog name)", ref)
}

// All returns every catalog entry ordered by ID
func All() []*Point {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil
	}
	return all
}
