// Package material resolves structural material properties by family and
// name. Generators use it to pick a rendering color and to compute the
// weight and cost metadata of the solids they emit.
package material

import (
	"fmt"
	"sort"
	"strings"

	nerr "github.com/Dante-U/nervi/pkg/errors"
)

// Family is the structural material category. It decides which geometry
// strategy a generator uses (discrete treads vs. monolithic slab).
type Family int

const (
	Wood Family = iota
	Metal
	Masonry
)

var familyNames = [...]string{
	Wood:    "wood",
	Metal:   "metal",
	Masonry: "masonry",
}

// String returns the lower-case family name.
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// Valid reports whether f is one of the known families.
func (f Family) Valid() bool {
	return f >= 0 && int(f) < len(familyNames)
}

// ParseFamily parses a family name, case-insensitively.
func ParseFamily(s string) (Family, error) {
	for i, name := range familyNames {
		if strings.EqualFold(s, name) {
			return Family(i), nil
		}
	}
	return 0, nerr.Invalid(nerr.ErrCodeInvalidFamily, "material", "family",
		"unknown family %q (want wood, metal or masonry)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("material: invalid family %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so catalogs can be
// decoded from TOML.
func (f *Family) UnmarshalText(b []byte) error {
	v, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Property names a queryable material attribute.
type Property string

const (
	Density             Property = "density"              // kg/m3
	CompressiveStrength Property = "compressive_strength" // MPa
	Elasticity          Property = "elasticity"           // GPa
	StrengthClass       Property = "strength_class"
	Applications        Property = "applications"
	Description         Property = "description"
	Price               Property = "price" // per m3
	Color               Property = "color" // #rrggbb
)

// Material is one catalog entry.
type Material struct {
	Family              Family   `toml:"family" json:"family"`
	Name                string   `toml:"name" json:"name"`
	Density             float64  `toml:"density" json:"density"`
	CompressiveStrength float64  `toml:"compressive_strength" json:"compressive_strength"`
	Elasticity          float64  `toml:"elasticity" json:"elasticity"`
	StrengthClass       string   `toml:"strength_class" json:"strength_class"`
	Applications        []string `toml:"applications" json:"applications"`
	Description         string   `toml:"description" json:"description"`
	Price               float64  `toml:"price" json:"price"`
	Color               string   `toml:"color" json:"color"`
	Default             bool     `toml:"default" json:"default"`
}

// Get returns the value of a single property.
func (m Material) Get(p Property) (any, error) {
	switch p {
	case Density:
		return m.Density, nil
	case CompressiveStrength:
		return m.CompressiveStrength, nil
	case Elasticity:
		return m.Elasticity, nil
	case StrengthClass:
		return m.StrengthClass, nil
	case Applications:
		return strings.Join(m.Applications, ", "), nil
	case Description:
		return m.Description, nil
	case Price:
		return m.Price, nil
	case Color:
		return m.Color, nil
	}
	return nil, nerr.Invalid(nerr.ErrCodeInvalidInput, "material", "property",
		"unknown property %q", string(p))
}

type key struct {
	family Family
	name   string
}

// Catalog is a set of materials indexed by (family, name). A Catalog is
// populated once and then only read, so it is safe to share between
// goroutines after construction.
type Catalog struct {
	entries  map[key]Material
	defaults map[Family]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries:  make(map[key]Material),
		defaults: make(map[Family]string),
	}
}

// Add inserts or replaces a material. The first material added for a
// family, or any entry flagged Default, becomes the family default.
func (c *Catalog) Add(m Material) error {
	if !m.Family.Valid() {
		return nerr.Invalid(nerr.ErrCodeInvalidFamily, "material", "family",
			"invalid family %d for %q", int(m.Family), m.Name)
	}
	name := strings.ToLower(strings.TrimSpace(m.Name))
	if name == "" {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, "material", "name", "material name is empty")
	}
	if m.Density < 0 || m.Price < 0 {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, "material", "density",
			"%s/%s: density and price must not be negative", m.Family, name)
	}
	m.Name = name
	c.entries[key{m.Family, name}] = m
	if _, ok := c.defaults[m.Family]; !ok || m.Default {
		c.defaults[m.Family] = name
	}
	return nil
}

// Get returns the named material. An empty name resolves to the family
// default.
func (c *Catalog) Get(f Family, name string) (Material, error) {
	if !f.Valid() {
		return Material{}, nerr.Invalid(nerr.ErrCodeInvalidFamily, "material", "family",
			"invalid family %d", int(f))
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = c.defaults[f]
	}
	m, ok := c.entries[key{f, name}]
	if !ok {
		return Material{}, nerr.Invalid(nerr.ErrCodeNotFound, "material", "name",
			"no %s material named %q", f, name)
	}
	return m, nil
}

// Lookup resolves a single property of a named material.
func (c *Catalog) Lookup(f Family, name string, p Property) (any, error) {
	m, err := c.Get(f, name)
	if err != nil {
		return nil, err
	}
	return m.Get(p)
}

// DefaultName returns the default material name of a family.
func (c *Catalog) DefaultName(f Family) string {
	return c.defaults[f]
}

// List returns every material, sorted by family then name.
func (c *Catalog) List() []Material {
	out := make([]Material, 0, len(c.entries))
	for _, m := range c.entries {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Merge copies every entry of other into c, overriding same-named ones.
func (c *Catalog) Merge(other []Material) error {
	for _, m := range other {
		if err := c.Add(m); err != nil {
			return err
		}
	}
	return nil
}
