// Package spiral builds spiral stairs: a central column, wedge treads
// placed around it at increasing angle and height, and either balusters
// with a helical rail or a continuous parapet wall.
package spiral

import (
	"fmt"
	"math"

	"github.com/Dante-U/nervi/pkg/bim"
	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/geom"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/stair"
	"github.com/Dante-U/nervi/pkg/units"
)

const module = "spiralStairs"

// minRadiusMM rejects radii that were most likely given in meters.
const minRadiusMM = 100

// Settings are the spiral defaults.
type Settings struct {
	TreadThicknessMM float64 `toml:"tread_thickness_mm"`
	GapDeg           float64 `toml:"gap_deg"`        // angular gap between tread wedges
	RailOffsetMM     float64 `toml:"rail_offset_mm"` // rail inset from the outer radius
	SamplesPerStep   int     `toml:"samples_per_step"`
	ArcSegments      int     `toml:"arc_segments"` // facets per tread arc

	Rail stair.HandrailSettings `toml:"-"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		TreadThicknessMM: 40,
		GapDeg:           1,
		RailOffsetMM:     50,
		SamplesPerStep:   4,
		ArcSegments:      8,
		Rail:             stair.DefaultSettings().Handrail,
	}
}

// Request describes a spiral stair. Radii are millimeters, the total rise
// meters.
type Request struct {
	Name          string
	RadiusMM      float64
	InnerRadiusMM float64 // column radius; 0 for no column
	TotalRiseM    float64
	StepsPerTurn  int
	Turns         float64
	Mount         stair.Mount
	Family        material.Family
	Material      string
	CCW           bool // negates the step angle
	Handrail      bool
}

// Plan is the numerical layout of a spiral stair.
type Plan struct {
	TotalSteps    int     `json:"total_steps"`
	StepAngleDeg  float64 `json:"step_angle_deg"` // negative when CCW
	StepRiseMM    float64 `json:"step_rise_mm"`
	TreadSweepDeg float64 `json:"tread_sweep_deg"`
	TotalRiseMM   float64 `json:"total_rise_mm"`
	RadiusMM      float64 `json:"radius_mm"`
	InnerRadiusMM float64 `json:"inner_radius_mm"`
}

// Option configures a build.
type Option func(*options)

type options struct {
	catalog  *material.Catalog
	settings Settings
}

// WithCatalog resolves materials from c.
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

// NewPlan validates req and computes its layout.
func NewPlan(req Request, opts ...Option) (Plan, error) {
	return newPlan(req, applyOptions(opts).settings)
}

func newPlan(req Request, s Settings) (Plan, error) {
	if err := units.CheckMeters(module, "totalRise", req.TotalRiseM); err != nil {
		return Plan{}, err
	}
	if err := units.CheckPositive(module, "radius", req.RadiusMM); err != nil {
		return Plan{}, err
	}
	if req.RadiusMM < minRadiusMM {
		return Plan{}, nerr.Invalid(nerr.ErrCodeUnitConfusion, module, "radius",
			"%v mm is too small for a spiral stair (meters given?)", req.RadiusMM)
	}
	if req.InnerRadiusMM < 0 || req.InnerRadiusMM >= req.RadiusMM {
		return Plan{}, nerr.Invalid(nerr.ErrCodeInvalidInput, module, "innerRadius",
			"must be within [0, radius), got %v", req.InnerRadiusMM)
	}
	if err := units.CheckPositive(module, "turns", req.Turns); err != nil {
		return Plan{}, err
	}
	if !req.Mount.Valid() {
		return Plan{}, nerr.Invalid(nerr.ErrCodeInvalidMount, module, "mount", "invalid mount %d", int(req.Mount))
	}
	if !req.Family.Valid() {
		return Plan{}, nerr.Invalid(nerr.ErrCodeInvalidFamily, module, "family", "invalid family %d", int(req.Family))
	}
	divisions := req.StepsPerTurn - req.Mount.Offset()
	if req.StepsPerTurn < 2 || divisions < 1 {
		return Plan{}, nerr.Invalid(nerr.ErrCodeInvalidInput, module, "stepsPerTurn",
			"need at least 2 steps per turn, got %d", req.StepsPerTurn)
	}

	p := Plan{
		TotalSteps:    int(math.Ceil(float64(req.StepsPerTurn)*req.Turns - units.Epsilon)),
		TotalRiseMM:   math.Round(units.MToMM(req.TotalRiseM)*1000) / 1000,
		RadiusMM:      req.RadiusMM,
		InnerRadiusMM: req.InnerRadiusMM,
	}
	p.StepAngleDeg = 360 / float64(divisions)
	if req.CCW {
		p.StepAngleDeg = -p.StepAngleDeg
	}
	p.StepRiseMM = p.TotalRiseMM / float64(p.TotalSteps)
	p.TreadSweepDeg = 360/float64(req.StepsPerTurn) - s.GapDeg
	if p.TreadSweepDeg <= 0 {
		return Plan{}, nerr.Invalid(nerr.ErrCodeDegenerate, module, "stepsPerTurn",
			"%d steps per turn leave no tread after a %v deg gap", req.StepsPerTurn, s.GapDeg)
	}
	if p.StepRiseMM <= s.TreadThicknessMM {
		return Plan{}, nerr.Invalid(nerr.ErrCodeDegenerate, module, "totalRise",
			"%.1f mm per step is thinner than a %.0f mm tread", p.StepRiseMM, s.TreadThicknessMM)
	}
	return p, nil
}

// Result is a built spiral stair.
type Result struct {
	Graph *graph.DesignGraph
	Root  graph.NodeID
	Top   graph.Anchor
	Plan  Plan
	Info  bim.Info
}

// Build validates req and emits the spiral stair.
func Build(req Request, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	p, err := newPlan(req, o.settings)
	if err != nil {
		return nil, err
	}
	m, err := o.catalog.Get(req.Family, req.Material)
	if err != nil {
		return nil, err
	}
	mat := graph.SpecFrom(m)
	strat, err := stair.StrategyFor(req.Family)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = "spiral"
	}
	g := graph.New()
	g.Defaults.Material = mat
	b := graph.NewBuilder(g, name, module)
	s := o.settings

	var parts []graph.NodeID
	if p.InnerRadiusMM > 0 {
		cb := b.Sub("column")
		shaft := cb.Part("shaft", graph.CylinderData{
			Radius:   p.InnerRadiusMM,
			Height:   p.TotalRiseMM,
			Material: mat,
		})
		parts = append(parts, cb.Group("", graph.GroupData{Role: "column", Meta: bim.Tag(bim.IfcColumn)}, shaft).ID)
	}
	parts = append(parts, treads(b.Sub("treads"), p, s, mat))
	if req.Handrail {
		rb := b.Sub("handrail")
		var rail []graph.NodeID
		if strat.Monolithic() {
			rail = parapet(rb, p, s, mat)
		} else {
			rail = balusters(rb, p, s, mat)
		}
		parts = append(parts, rb.Group("", graph.GroupData{Role: "handrail"}, rail...).ID)
	}

	last := float64(p.TotalSteps-1) * p.StepAngleDeg
	top := graph.Anchor{
		Name:     graph.AnchorTop,
		Position: graph.Vec3{X: p.RadiusMM / 2, Z: p.TotalRiseMM}.RotateZ(last + p.treadSweep()/2),
		Axis:     graph.Vec3{Y: math.Copysign(1, p.StepAngleDeg)}.RotateZ(last + p.treadSweep()/2),
		Spin:     math.Mod(last, 360),
		Meta: map[string]string{
			"step_rise_mm":   fmt.Sprintf("%g", p.StepRiseMM),
			"step_angle_deg": fmt.Sprintf("%g", p.StepAngleDeg),
			"mount":          req.Mount.String(),
			"family":         req.Family.String(),
		},
	}
	root := b.Root(name, graph.GroupData{Role: module}, parts...)
	root.Anchors = []graph.Anchor{{Name: graph.AnchorBottom, Axis: graph.Vec3{Z: -1}}, top}
	info := bim.Summarize(g, root.ID, name, bim.IfcStair)
	root.Data = graph.GroupData{
		Role:        module,
		Description: fmt.Sprintf("%d steps of %.1f mm over %.2f turns", p.TotalSteps, p.StepRiseMM, req.Turns),
		Meta:        info.Meta(),
	}
	return &Result{Graph: g, Root: root.ID, Top: top, Plan: p, Info: info}, nil
}

// treadSweep is the signed wedge sweep, turning the same way as the stair.
func (p Plan) treadSweep() float64 {
	return math.Copysign(p.TreadSweepDeg, p.StepAngleDeg)
}

// treads places one wedge per step, tread i topping out at (i+1) rises.
func treads(b *graph.Builder, p Plan, s Settings, mat graph.MaterialSpec) graph.NodeID {
	wedge := geom.AnnularSector(p.InnerRadiusMM, p.RadiusMM, 0, p.treadSweep(), s.ArcSegments)
	ids := make([]graph.NodeID, 0, p.TotalSteps)
	for i := 0; i < p.TotalSteps; i++ {
		at := graph.Vec3{Z: float64(i+1)*p.StepRiseMM - s.TreadThicknessMM}
		ids = append(ids, b.Placed(fmt.Sprintf("tread-%d", i), at, float64(i)*p.StepAngleDeg, graph.ExtrusionData{
			Profile:  wedge,
			Depth:    s.TreadThicknessMM,
			Plane:    graph.PlaneXY,
			Material: mat,
		}))
	}
	return b.Group("", graph.GroupData{Role: "treads", Description: fmt.Sprintf("%d treads", p.TotalSteps)}, ids...).ID
}

// balusters stands one post at the middle of every tread and sweeps the
// rail along the helix through their tops.
func balusters(b *graph.Builder, p Plan, s Settings, mat graph.MaterialSpec) []graph.NodeID {
	r := p.RadiusMM - s.RailOffsetMM
	mid := p.treadSweep() / 2
	var ids []graph.NodeID
	for i := 0; i < p.TotalSteps; i++ {
		a := float64(i)*p.StepAngleDeg + mid
		base := graph.Vec3{X: r}.RotateZ(a)
		base.Z = float64(i+1) * p.StepRiseMM
		ids = append(ids, b.Part(fmt.Sprintf("baluster-%d", i), graph.SegmentData{
			From:     base,
			To:       graph.Vec3{X: base.X, Y: base.Y, Z: base.Z + s.Rail.HeightMM},
			Radius:   s.Rail.PostDiameterMM / 2,
			Material: mat,
		}))
	}
	pts := geom.Helix(r, p.StepAngleDeg, p.StepRiseMM, p.StepRiseMM+s.Rail.HeightMM, p.TotalSteps-1, s.SamplesPerStep)
	for k := 1; k < len(pts); k++ {
		ids = append(ids, b.Part(fmt.Sprintf("rail-%d", k-1), graph.SegmentData{
			From:     pts[k-1].RotateZ(mid),
			To:       pts[k].RotateZ(mid),
			Radius:   s.Rail.DiameterMM / 2,
			Material: mat,
		}))
	}
	return ids
}

// parapet builds a continuous guard wall of per-step ring panels along the
// outer edge.
func parapet(b *graph.Builder, p Plan, s Settings, mat graph.MaterialSpec) []graph.NodeID {
	inner := p.RadiusMM - s.Rail.WidthMM
	if inner < p.InnerRadiusMM {
		inner = p.InnerRadiusMM
	}
	panel := geom.AnnularSector(inner, p.RadiusMM, 0, p.StepAngleDeg, s.ArcSegments)
	ids := make([]graph.NodeID, 0, p.TotalSteps)
	for i := 0; i < p.TotalSteps; i++ {
		at := graph.Vec3{Z: float64(i+1)*p.StepRiseMM - s.TreadThicknessMM}
		ids = append(ids, b.Placed(fmt.Sprintf("panel-%d", i), at, float64(i)*p.StepAngleDeg, graph.ExtrusionData{
			Profile:  panel,
			Depth:    s.Rail.HeightMM + s.TreadThicknessMM,
			Plane:    graph.PlaneXY,
			Material: mat,
		}))
	}
	return ids
}
