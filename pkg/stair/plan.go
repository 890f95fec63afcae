package stair

import (
	"math"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/units"
)

// Plan is the numerical layout of a stair, computed once per request.
type Plan struct {
	Type            Type      `json:"type"`
	StepCount       int       `json:"step_count"`
	MountOffset     int       `json:"mount_offset"`
	EffectiveRiseMM float64   `json:"effective_rise_mm"`
	RunMM           float64   `json:"run_mm"`
	Sections        []int     `json:"sections"`
	Landings        []float64 `json:"landings_mm,omitempty"`
	AngleDeg        float64   `json:"angle_deg"`
	TotalRiseMM     float64   `json:"total_rise_mm"`
	WidthMM         float64   `json:"width_mm"`
	TotalLengthMM   float64   `json:"total_length_mm"` // footprint along Y
	TotalWidthMM    float64   `json:"total_width_mm"`  // footprint along X
}

// Partition splits n steps into per-section tread counts. Every landing
// between two sections takes one step of rise, so the counts sum to
// n - (sections - 1). The first section gets the extra step on ties.
func Partition(t Type, n int) ([]int, error) {
	if !t.Valid() {
		return nil, nerr.Invalid(nerr.ErrCodeInvalidType, module, "type", "invalid stair type %d", int(t))
	}
	if n < t.Sections() {
		return nil, nerr.Invalid(nerr.ErrCodeDegenerate, module, "stepCount",
			"%d steps cannot make a %s stair (needs at least %d)", n, t, t.Sections())
	}
	var parts []int
	switch t {
	case Straight:
		parts = []int{n}
	case LShaped:
		half := ceilDiv(n, 2)
		parts = []int{half, n - half - 1}
	case UShaped:
		third := ceilDiv(n, 3)
		parts = []int{third, third - 1, n - 2*third - 1}
	}
	for i, p := range parts {
		if p < 0 {
			return nil, nerr.Invalid(nerr.ErrCodeDegenerate, module, "stepCount",
				"%d steps leave section %d of a %s stair with %d treads", n, i, t, p)
		}
	}
	return parts, nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// NewPlan validates a request and computes its plan without building
// geometry.
func NewPlan(req Request, opts ...Option) (Plan, error) {
	r, err := resolve(req, applyOptions(opts))
	if err != nil {
		return Plan{}, err
	}
	return computePlan(r)
}

func computePlan(r resolved) (Plan, error) {
	off := r.mount.Offset()
	n := int(math.Ceil(r.totalRiseMM/r.theoRiseMM)) - off
	if r.stepCount != nil {
		n = *r.stepCount
	}
	if n < 1 {
		return Plan{}, nerr.Invalid(nerr.ErrCodeDegenerate, module, "totalRise",
			"%.0f mm at %.0f mm per step leaves no treads", r.totalRiseMM, r.theoRiseMM)
	}
	sections, err := Partition(r.typ, n)
	if err != nil {
		return Plan{}, err
	}

	p := Plan{
		Type:            r.typ,
		StepCount:       n,
		MountOffset:     off,
		EffectiveRiseMM: units.Round(r.totalRiseMM / float64(n+off)),
		RunMM:           r.runMM,
		Sections:        sections,
		TotalRiseMM:     r.totalRiseMM,
		WidthMM:         r.widthMM,
	}
	p.AngleDeg = units.AdjOppToAng(float64(n)*p.RunMM, float64(n)*p.EffectiveRiseMM)
	for i := 1; i < len(sections); i++ {
		p.Landings = append(p.Landings, r.landingMM)
	}
	if r.typ == UShaped {
		p.Landings = append(p.Landings, p.closingLandingMM())
	}

	frames := fold(p.elements())
	min, max := footprint(p.elements(), frames, p.WidthMM)
	p.TotalWidthMM = max.X - min.X
	p.TotalLengthMM = max.Y - min.Y
	return p, nil
}

// closingLandingMM is the length of the final U landing that brings the
// arrival back level with the start of the first flight.
func (p Plan) closingLandingMM() float64 {
	s := p.Sections
	return float64(s[0]-s[len(s)-1]+1) * p.RunMM
}

// ---------------------------------------------------------------------------
// Layout fold
// ---------------------------------------------------------------------------

type elementKind int

const (
	kindSection elementKind = iota
	kindLanding
	kindClosing
)

// element is one placed piece of a stair in its own frame: x across the
// width from 0, y along the run from 0, z up from the previous level.
type element struct {
	kind   elementKind
	index  int     // section or landing number
	steps  int     // sections only
	length float64 // along the run
	top    graph.Anchor
}

// elements lists sections and landings in walking order.
func (p Plan) elements() []element {
	rise, run, w := p.EffectiveRiseMM, p.RunMM, p.WidthMM
	var out []element
	for i, s := range p.Sections {
		l := float64(s) * run
		out = append(out, element{
			kind: kindSection, index: i, steps: s, length: l,
			top: graph.Anchor{
				Name:     graph.AnchorTop,
				Position: graph.Vec3{Y: l, Z: float64(s) * rise},
				Axis:     graph.Vec3{Y: 1},
			},
		})
		if i < len(p.Sections)-1 {
			ll := p.Landings[i]
			// The next flight turns left from the far corner of the landing.
			out = append(out, element{
				kind: kindLanding, index: i, length: ll,
				top: graph.Anchor{
					Name:     graph.AnchorTop,
					Position: graph.Vec3{Y: ll - w, Z: rise},
					Axis:     graph.Vec3{X: -1},
					Spin:     90,
				},
			})
		}
	}
	if p.Type == UShaped {
		ll := p.Landings[len(p.Landings)-1]
		out = append(out, element{
			kind: kindClosing, index: len(p.Landings) - 1, length: ll,
			top: graph.Anchor{
				Name:     graph.AnchorTop,
				Position: graph.Vec3{Y: ll, Z: float64(p.MountOffset) * rise},
				Axis:     graph.Vec3{Y: 1},
			},
		})
	}
	return out
}

// frame is where an element sits in the stair frame.
type frame struct {
	offset graph.Vec3
	spin   float64
}

// fold accumulates element frames: each element starts at the top anchor
// of the previous one.
func fold(els []element) []frame {
	frames := make([]frame, len(els))
	var cur frame
	for i, e := range els {
		frames[i] = cur
		next := e.top.Compose(cur.offset, cur.spin)
		cur = frame{offset: next.Position, spin: next.Spin}
	}
	return frames
}

// topAnchor is the continuation frame of the whole stair, at the arrival
// floor level.
func (p Plan) topAnchor(els []element, frames []frame) graph.Anchor {
	last := len(els) - 1
	top := els[last].top.Compose(frames[last].offset, frames[last].spin)
	if els[last].kind == kindSection {
		top.Position.Z += float64(p.MountOffset) * p.EffectiveRiseMM
	}
	return top
}

func footprint(els []element, frames []frame, width float64) (min, max graph.Vec2) {
	first := true
	for i, e := range els {
		for _, c := range []graph.Vec3{{}, {X: width}, {Y: e.length}, {X: width, Y: e.length}} {
			w := c.RotateZ(frames[i].spin).Add(frames[i].offset)
			if first {
				min, max = graph.Vec2{X: w.X, Y: w.Y}, graph.Vec2{X: w.X, Y: w.Y}
				first = false
				continue
			}
			min.X, min.Y = math.Min(min.X, w.X), math.Min(min.Y, w.Y)
			max.X, max.Y = math.Max(max.X, w.X), math.Max(max.Y, w.Y)
		}
	}
	// Round away float noise from the rotations.
	round := func(v float64) float64 { return math.Round(v*1e6) / 1e6 }
	min = graph.Vec2{X: round(min.X), Y: round(min.Y)}
	max = graph.Vec2{X: round(max.X), Y: round(max.Y)}
	return min, max
}
