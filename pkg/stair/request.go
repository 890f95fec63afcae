package stair

import (
	"math"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/units"
)

const module = "stairs"

// Space is the room a stair is built in. Its height stands in for a
// missing total rise and its origin positions the stair.
type Space struct {
	Name    string
	HeightM float64
	Origin  graph.Vec3 // mm
}

// Request describes one stair. Building-scale dimensions are meters,
// component dimensions millimeters. Zero values select the defaults.
type Request struct {
	Name              string
	Type              Type
	WidthM            float64
	TotalRiseM        float64 // taken from Space.HeightM when zero
	StepCount         *int    // overrides the derived step count
	TheoreticalRiseMM float64
	RunMM             float64
	Family            material.Family
	Material          string // family default when empty
	SlabThicknessMM   float64
	ThreadThicknessMM float64
	Mount             Mount
	Sides             []Side
	LandingSizeMM     float64 // defaults to the width
	Handrail          HandrailOptions
	Space             *Space
}

// Option configures a build.
type Option func(*options)

type options struct {
	catalog  *material.Catalog
	settings Settings
}

// WithCatalog resolves materials from c instead of the built-in catalog.
func WithCatalog(c *material.Catalog) Option {
	return func(o *options) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithSettings replaces the built-in defaults.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

func applyOptions(opts []Option) options {
	o := options{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.catalog == nil {
		o.catalog = material.Builtin()
	}
	return o
}

// resolved is a validated request with every dimension in millimeters.
type resolved struct {
	name        string
	typ         Type
	widthMM     float64
	totalRiseMM float64
	stepCount   *int
	theoRiseMM  float64
	runMM       float64
	thicknessMM float64
	slabMM      float64
	landingMM   float64
	mount       Mount
	sides       []Side
	mat         graph.MaterialSpec
}

// toMM converts meters and drops float noise below a micrometer, so that
// 3.4 m becomes exactly 3400 mm before any ceil.
func toMM(m float64) float64 {
	return math.Round(units.MToMM(m)*1000) / 1000
}

func or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// check is a named value that must be positive.
type check struct {
	param string
	v     float64
}

func checkPositive(module string, checks []check) error {
	for _, c := range checks {
		if err := units.CheckPositive(module, c.param, c.v); err != nil {
			return err
		}
	}
	return nil
}

func resolve(req Request, o options) (resolved, error) {
	r := resolved{name: req.Name, typ: req.Type, mount: req.Mount, sides: req.Sides}
	if r.name == "" {
		r.name = "stairs"
	}

	rise := req.TotalRiseM
	if rise == 0 && req.Space != nil {
		rise = req.Space.HeightM
	}
	if rise == 0 {
		return r, nerr.Invalid(nerr.ErrCodeInvalidRise, module, "totalRise",
			"total rise is required (give it or build inside a space)")
	}
	if err := units.CheckMeters(module, "totalRise", rise); err != nil {
		if nerr.Is(err, nerr.ErrCodeInvalidInput) {
			return r, nerr.Invalid(nerr.ErrCodeInvalidRise, module, "totalRise",
				"must be a positive height in meters, got %v", rise)
		}
		return r, err
	}
	if err := units.CheckMeters(module, "width", req.WidthM); err != nil {
		return r, err
	}
	if !req.Mount.Valid() {
		return r, nerr.Invalid(nerr.ErrCodeInvalidMount, module, "mount", "invalid mount %d", int(req.Mount))
	}
	if !req.Family.Valid() {
		return r, nerr.Invalid(nerr.ErrCodeInvalidFamily, module, "family", "invalid family %d", int(req.Family))
	}
	if !req.Type.Valid() {
		return r, nerr.Invalid(nerr.ErrCodeInvalidType, module, "type", "invalid stair type %d", int(req.Type))
	}
	if err := checkSides(module, req.Sides, false); err != nil {
		return r, err
	}

	s := o.settings
	r.widthMM = toMM(req.WidthM)
	r.totalRiseMM = toMM(rise)
	r.theoRiseMM = or(req.TheoreticalRiseMM, s.TheoreticalRiseMM)
	r.runMM = or(req.RunMM, s.RunMM)
	r.thicknessMM = or(req.ThreadThicknessMM, s.ThreadThicknessMM)
	r.slabMM = or(req.SlabThicknessMM, s.SlabThicknessMM)
	r.landingMM = or(req.LandingSizeMM, r.widthMM)
	if err := checkPositive(module, []check{
		{"theoreticalRise", r.theoRiseMM},
		{"run", r.runMM},
		{"threadThickness", r.thicknessMM},
		{"slabThickness", r.slabMM},
		{"landingSize", r.landingMM},
	}); err != nil {
		return r, err
	}
	if req.StepCount != nil {
		if *req.StepCount < 1 {
			return r, nerr.Invalid(nerr.ErrCodeInvalidInput, module, "stepCount",
				"must be at least 1, got %d", *req.StepCount)
		}
		n := *req.StepCount
		r.stepCount = &n
	}

	m, err := o.catalog.Get(req.Family, req.Material)
	if err != nil {
		return r, err
	}
	r.mat = graph.SpecFrom(m)
	return r, nil
}
