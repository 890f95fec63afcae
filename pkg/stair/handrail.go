package stair

import (
	"fmt"
	"math"

	"github.com/Dante-U/nervi/pkg/bim"
	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/units"
)

const handrailModule = "handrail"

// HandrailOptions are caller overrides. A nil field inherits the value of
// the enclosing context.
type HandrailOptions struct {
	LengthMM       *float64 // explicit horizontal run, for flat rails
	TotalRiseMM    *float64
	Sides          []Side
	HeightMM       *float64
	DiameterMM     *float64
	WidthMM        *float64 // masonry parapet thickness
	PostDiameterMM *float64
	PostIntervalMM *float64
}

// HandrailSpec is a fully resolved handrail.
type HandrailSpec struct {
	WidthMM         float64
	TotalRiseMM     float64
	RiseMM          float64
	RunMM           float64
	LengthMM        float64 // 0 derives the run from the rise
	Mount           Mount
	Sides           []Side
	HeightMM        float64
	DiameterMM      float64
	RailWidthMM     float64
	PostDiameterMM  float64
	PostIntervalMM  float64
	SlabThicknessMM float64
	Material        graph.MaterialSpec
}

// HandrailSpec merges o against the context.
func (c Context) HandrailSpec(o HandrailOptions) HandrailSpec {
	pick := func(p *float64, def float64) float64 {
		if p != nil {
			return *p
		}
		return def
	}
	sides := c.Sides
	if o.Sides != nil {
		sides = o.Sides
	}
	return HandrailSpec{
		WidthMM:         c.WidthMM,
		TotalRiseMM:     pick(o.TotalRiseMM, c.TotalRiseMM),
		RiseMM:          c.RiseMM,
		RunMM:           c.RunMM,
		LengthMM:        pick(o.LengthMM, 0),
		Mount:           c.Mount,
		Sides:           append([]Side(nil), sides...),
		HeightMM:        pick(o.HeightMM, c.Rail.HeightMM),
		DiameterMM:      pick(o.DiameterMM, c.Rail.DiameterMM),
		RailWidthMM:     pick(o.WidthMM, c.Rail.WidthMM),
		PostDiameterMM:  pick(o.PostDiameterMM, c.Rail.PostDiameterMM),
		PostIntervalMM:  pick(o.PostIntervalMM, c.Rail.PostIntervalMM),
		SlabThicknessMM: c.SlabMM,
		Material:        c.Material,
	}
}

// HandrailGeometry is what DeriveHandrail computes from a spec.
type HandrailGeometry struct {
	StepCount     int     `json:"step_count"`
	LengthMM      float64 `json:"length_mm"` // horizontal
	AngleDeg      float64 `json:"angle_deg"`
	HypMM         float64 `json:"hyp_mm"` // rail length along the incline
	PostCount     int     `json:"post_count"`
	PostRiseMM    float64 `json:"post_rise_mm"`
	PostSpacingMM float64 `json:"post_spacing_mm"`
}

// DeriveHandrail validates a spec and computes the rail geometry. Exactly
// one of TotalRiseMM > 0 and LengthMM > 0 must fix the horizontal run.
func DeriveHandrail(s HandrailSpec) (HandrailGeometry, error) {
	var h HandrailGeometry
	if s.TotalRiseMM < 0 || math.IsNaN(s.TotalRiseMM) {
		return h, nerr.Invalid(nerr.ErrCodeInvalidRise, handrailModule, "totalRise",
			"must not be negative, got %v", s.TotalRiseMM)
	}
	if err := units.CheckNonNegative(handrailModule, "length", s.LengthMM); err != nil {
		return h, err
	}
	hasRise, hasLength := s.TotalRiseMM > 0, s.LengthMM > 0
	if hasRise == hasLength {
		return h, nerr.Invalid(nerr.ErrCodeInvalidInput, handrailModule, "length",
			"exactly one of totalRise and length must be given (totalRise=%v, length=%v)",
			s.TotalRiseMM, s.LengthMM)
	}
	if len(s.Sides) == 0 {
		return h, nerr.Invalid(nerr.ErrCodeInvalidSides, handrailModule, "sides", "no side given")
	}
	if err := checkSides(handrailModule, s.Sides, true); err != nil {
		return h, err
	}
	if !s.Mount.Valid() {
		return h, nerr.Invalid(nerr.ErrCodeInvalidMount, handrailModule, "mount", "invalid mount %d", int(s.Mount))
	}
	checks := []check{
		{"railHeight", s.HeightMM},
		{"railDiameter", s.DiameterMM},
		{"postDiameter", s.PostDiameterMM},
		{"postInterval", s.PostIntervalMM},
	}
	if hasRise {
		checks = append(checks, check{"rise", s.RiseMM}, check{"run", s.RunMM})
	}
	if s.Material.Family == material.Masonry {
		checks = append(checks, check{"railWidth", s.RailWidthMM})
	}
	if err := checkPositive(handrailModule, checks); err != nil {
		return h, err
	}

	h.LengthMM = s.LengthMM
	if hasRise {
		h.StepCount = int(math.Ceil(s.TotalRiseMM/s.RiseMM-units.Epsilon)) - s.Mount.Offset()
		h.LengthMM = float64(h.StepCount) * s.RunMM
		if h.LengthMM <= 0 {
			return h, nerr.Invalid(nerr.ErrCodeDegenerate, handrailModule, "totalRise",
				"%v mm of rise at %v mm per step leaves no run", s.TotalRiseMM, s.RiseMM)
		}
	}
	h.AngleDeg = units.AdjOppToAng(h.LengthMM, s.TotalRiseMM)
	h.HypMM = units.Hyp(h.LengthMM, s.TotalRiseMM)
	// A rail shorter than the interval still spans post to post.
	spans := max(1, int(math.Ceil(h.LengthMM/s.PostIntervalMM-units.Epsilon)))
	h.PostCount = spans + 1
	h.PostRiseMM = s.TotalRiseMM / float64(h.PostCount-1)
	h.PostSpacingMM = h.LengthMM / float64(h.PostCount-1)
	return h, nil
}

// BuildHandrail adds a handrail group under b, one subgroup per side, and
// returns it with the derived geometry.
func BuildHandrail(b *graph.Builder, s HandrailSpec) (*graph.Node, HandrailGeometry, error) {
	h, err := DeriveHandrail(s)
	if err != nil {
		return nil, h, err
	}
	strat, err := StrategyFor(s.Material.Family)
	if err != nil {
		return nil, h, err
	}
	sides := make([]graph.NodeID, 0, len(s.Sides))
	for _, side := range s.Sides {
		sb := b.Sub(side.String())
		parts := strat.Rail(sb, s, h, side)
		sides = append(sides, sb.Group("", graph.GroupData{Role: "handrail-side", Description: side.String()}, parts...).ID)
	}
	n := b.Group("", graph.GroupData{
		Role:        "handrail",
		Description: fmt.Sprintf("%d posts, %.0f mm at %.1f deg", h.PostCount, h.HypMM, h.AngleDeg),
	}, sides...)
	n.Anchors = []graph.Anchor{
		{Name: graph.AnchorBottom, Axis: graph.Vec3{Y: -1}},
		{
			Name:     graph.AnchorTop,
			Position: graph.Vec3{Y: h.LengthMM, Z: s.TotalRiseMM},
			Axis:     graph.Vec3{Y: 1},
		},
	}
	return n, h, nil
}

// HandrailResult is a standalone handrail.
type HandrailResult struct {
	Graph    *graph.DesignGraph
	Root     graph.NodeID
	Spec     HandrailSpec
	Geometry HandrailGeometry
	Info     bim.Info
}

// Handrail builds a handrail on its own, outside any stair. When c has no
// material, the default material of c.Family is used.
func Handrail(name string, c Context, o HandrailOptions, opts ...Option) (*HandrailResult, error) {
	if name == "" {
		name = handrailModule
	}
	if c.Material.Name == "" {
		if !c.Family.Valid() {
			return nil, nerr.Invalid(nerr.ErrCodeInvalidFamily, handrailModule, "family", "invalid family %d", int(c.Family))
		}
		m, err := applyOptions(opts).catalog.Get(c.Family, "")
		if err != nil {
			return nil, err
		}
		c = c.WithMaterial(graph.SpecFrom(m))
	}
	spec := c.HandrailSpec(o)

	g := graph.New()
	g.Defaults.Material = spec.Material
	b := graph.NewBuilder(g, name, handrailModule)
	rail, h, err := BuildHandrail(b.Sub("rail"), spec)
	if err != nil {
		return nil, err
	}
	root := b.Root(name, graph.GroupData{Role: "handrail"}, rail.ID)
	root.Anchors = rail.Anchors
	info := bim.Summarize(g, root.ID, name, bim.IfcRailing)
	root.Data = graph.GroupData{Role: "handrail", Description: rail.Data.(graph.GroupData).Description, Meta: info.Meta()}
	return &HandrailResult{Graph: g, Root: root.ID, Spec: spec, Geometry: h, Info: info}, nil
}
