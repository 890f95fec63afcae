package stair

import (
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
)

// HandrailSettings are the handrail dimensions used when a caller does
// not override them. All values are millimeters.
type HandrailSettings struct {
	HeightMM       float64 `toml:"height_mm"`
	DiameterMM     float64 `toml:"diameter_mm"`
	WidthMM        float64 `toml:"width_mm"` // masonry parapet thickness
	PostDiameterMM float64 `toml:"post_diameter_mm"`
	PostIntervalMM float64 `toml:"post_interval_mm"`
}

// Settings are the generator defaults, overridable from configuration.
type Settings struct {
	TheoreticalRiseMM float64 `toml:"theoretical_rise_mm"`
	RunMM             float64 `toml:"run_mm"`
	ThreadThicknessMM float64 `toml:"thread_thickness_mm"`
	SlabThicknessMM   float64 `toml:"slab_thickness_mm"`

	Handrail HandrailSettings `toml:"-"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		TheoreticalRiseMM: 170,
		RunMM:             250,
		ThreadThicknessMM: 40,
		SlabThicknessMM:   150,
		Handrail: HandrailSettings{
			HeightMM:       900,
			DiameterMM:     40,
			WidthMM:        100,
			PostDiameterMM: 40,
			PostIntervalMM: 1000,
		},
	}
}

// Context is the current-stair state visible to nested renderers: the
// thread dimensions, the slope, the material and the mount. It is a value;
// the With* methods return modified copies, so a subtree never observes a
// sibling's changes.
type Context struct {
	WidthMM     float64
	RiseMM      float64
	RunMM       float64
	ThicknessMM float64
	SlabMM      float64
	AngleDeg    float64
	LandingMM   float64
	TotalRiseMM float64
	Mount       Mount
	Family      material.Family
	Material    graph.MaterialSpec
	Sides       []Side
	Rail        HandrailSettings
}

// NewContext returns a context seeded from settings. Width, total rise
// and material are left for the caller.
func NewContext(s Settings) Context {
	return Context{
		RiseMM:      s.TheoreticalRiseMM,
		RunMM:       s.RunMM,
		ThicknessMM: s.ThreadThicknessMM,
		SlabMM:      s.SlabThicknessMM,
		Rail:        s.Handrail,
	}
}

// WithWidth returns a copy with the thread width set.
func (c Context) WithWidth(mm float64) Context { c.WidthMM = mm; return c }

// WithThread returns a copy with the rise and run set.
func (c Context) WithThread(riseMM, runMM float64) Context {
	c.RiseMM, c.RunMM = riseMM, runMM
	return c
}

// WithTotalRise returns a copy with the total rise of the current run set.
func (c Context) WithTotalRise(mm float64) Context { c.TotalRiseMM = mm; return c }

// WithMount returns a copy with the mount set.
func (c Context) WithMount(m Mount) Context { c.Mount = m; return c }

// WithMaterial returns a copy carrying the resolved material.
func (c Context) WithMaterial(m graph.MaterialSpec) Context {
	c.Family, c.Material = m.Family, m
	return c
}

// WithThickness returns a copy with the tread thickness set.
func (c Context) WithThickness(mm float64) Context { c.ThicknessMM = mm; return c }

// WithSides returns a copy with the handrail sides set.
func (c Context) WithSides(s []Side) Context {
	c.Sides = append([]Side(nil), s...)
	return c
}

// WithAngle returns a copy with the flight angle set.
func (c Context) WithAngle(deg float64) Context { c.AngleDeg = deg; return c }

// WithSlab returns a copy with the masonry slab thickness set.
func (c Context) WithSlab(mm float64) Context { c.SlabMM = mm; return c }

// WithLanding returns a copy with the landing length set.
func (c Context) WithLanding(mm float64) Context { c.LandingMM = mm; return c }
