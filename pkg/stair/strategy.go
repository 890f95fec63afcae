package stair

import (
	"fmt"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/geom"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/units"
)

// Strategy renders the family-specific parts of a stair. Flights and
// rails are built in the flight frame: x across the width, y up the run,
// z up from the flight's base level.
type Strategy interface {
	Family() material.Family
	// Monolithic reports whether the family casts flights and guards as
	// single slabs instead of treads and posts.
	Monolithic() bool
	// Flight adds the geometry of a straight flight of steps treads.
	Flight(b *graph.Builder, c Context, steps int) []graph.NodeID
	// Rail adds the guard of one side of a handrail.
	Rail(b *graph.Builder, s HandrailSpec, h HandrailGeometry, side Side) []graph.NodeID
	// Silhouette is the side outline of a flight in the YZ plane.
	Silhouette(c Context, steps int) geom.Polygon
}

// StrategyFor returns the strategy of a family.
func StrategyFor(f material.Family) (Strategy, error) {
	switch f {
	case material.Wood:
		return woodStrategy{}, nil
	case material.Metal:
		return metalStrategy{}, nil
	case material.Masonry:
		return masonryStrategy{}, nil
	}
	return nil, nerr.Invalid(nerr.ErrCodeInvalidFamily, module, "family", "invalid family %d", int(f))
}

// ---------------------------------------------------------------------------
// Wood
// ---------------------------------------------------------------------------

type woodStrategy struct{}

func (woodStrategy) Family() material.Family { return material.Wood }
func (woodStrategy) Monolithic() bool        { return false }

func (woodStrategy) Flight(b *graph.Builder, c Context, steps int) []graph.NodeID {
	return treads(b, c, steps)
}

func (woodStrategy) Rail(b *graph.Builder, s HandrailSpec, h HandrailGeometry, side Side) []graph.NodeID {
	return postsAndRail(b, s, h, side)
}

func (woodStrategy) Silhouette(c Context, steps int) geom.Polygon {
	return steppedOutline(steps, c.RiseMM, c.RunMM)
}

// treads stacks steps boxes, tread i topping out at (i+1) rises.
func treads(b *graph.Builder, c Context, steps int) []graph.NodeID {
	ids := make([]graph.NodeID, 0, steps)
	dims := graph.Vec3{X: c.WidthMM, Y: c.RunMM, Z: c.ThicknessMM}
	for i := 0; i < steps; i++ {
		at := graph.Vec3{Y: float64(i) * c.RunMM, Z: float64(i+1)*c.RiseMM - c.ThicknessMM}
		ids = append(ids, b.Placed(fmt.Sprintf("tread-%d", i), at, 0,
			graph.BoxData{Dimensions: dims, Material: c.Material}))
	}
	return ids
}

// steppedOutline walks the nosings and closes straight down to the floor.
func steppedOutline(steps int, rise, run float64) geom.Polygon {
	if steps < 1 {
		return nil
	}
	poly := nosings(steps, rise, run)
	return append(poly, geom.Vec2{X: float64(steps) * run})
}

// nosings returns (0,0) followed by the two corners of every step.
func nosings(steps int, rise, run float64) geom.Polygon {
	poly := make(geom.Polygon, 0, 2*steps+3)
	poly = append(poly, geom.Vec2{})
	for i := 0; i < steps; i++ {
		z := float64(i+1) * rise
		poly = append(poly,
			geom.Vec2{X: float64(i) * run, Y: z},
			geom.Vec2{X: float64(i+1) * run, Y: z})
	}
	return poly
}

// railX is the axis position of a post row across the width.
func railX(s HandrailSpec, side Side) float64 {
	switch side {
	case Right:
		return s.WidthMM - s.PostDiameterMM/2
	case Center:
		return s.WidthMM / 2
	}
	return s.PostDiameterMM / 2
}

// postsAndRail places the posts on the incline and one rail spanning the
// whole run at rail height.
func postsAndRail(b *graph.Builder, s HandrailSpec, h HandrailGeometry, side Side) []graph.NodeID {
	x := railX(s, side)
	ids := make([]graph.NodeID, 0, h.PostCount+1)
	for j := 0; j < h.PostCount; j++ {
		at := graph.Vec3{X: x, Y: float64(j) * h.PostSpacingMM, Z: float64(j) * h.PostRiseMM}
		ids = append(ids, b.Placed(fmt.Sprintf("post-%d", j), at, 0, graph.CylinderData{
			Radius:   s.PostDiameterMM / 2,
			Height:   s.HeightMM,
			Material: s.Material,
		}))
	}
	ids = append(ids, b.Part("rail", graph.SegmentData{
		From:     graph.Vec3{X: x, Z: s.HeightMM},
		To:       graph.Vec3{X: x, Y: h.LengthMM, Z: s.TotalRiseMM + s.HeightMM},
		Radius:   s.DiameterMM / 2,
		Material: s.Material,
	}))
	return ids
}

// ---------------------------------------------------------------------------
// Metal
// ---------------------------------------------------------------------------

// metalStrategy builds wood-like treads carried by two tubular stringers.
type metalStrategy struct{}

func (metalStrategy) Family() material.Family { return material.Metal }
func (metalStrategy) Monolithic() bool        { return false }

func (metalStrategy) Flight(b *graph.Builder, c Context, steps int) []graph.NodeID {
	ids := treads(b, c, steps)
	if steps < 1 {
		return ids
	}
	r := c.ThicknessMM / 2
	z0 := c.RiseMM - c.ThicknessMM - r
	for i, x := range []float64{r, c.WidthMM - r} {
		ids = append(ids, b.Part(fmt.Sprintf("stringer-%d", i), graph.SegmentData{
			From:     graph.Vec3{X: x, Z: z0},
			To:       graph.Vec3{X: x, Y: float64(steps) * c.RunMM, Z: z0 + float64(steps-1)*c.RiseMM},
			Radius:   r,
			Material: c.Material,
		}))
	}
	return ids
}

func (metalStrategy) Rail(b *graph.Builder, s HandrailSpec, h HandrailGeometry, side Side) []graph.NodeID {
	return postsAndRail(b, s, h, side)
}

func (metalStrategy) Silhouette(c Context, steps int) geom.Polygon {
	return steppedOutline(steps, c.RiseMM, c.RunMM)
}

// ---------------------------------------------------------------------------
// Masonry
// ---------------------------------------------------------------------------

type masonryStrategy struct{}

func (masonryStrategy) Family() material.Family { return material.Masonry }
func (masonryStrategy) Monolithic() bool        { return true }

func (m masonryStrategy) Flight(b *graph.Builder, c Context, steps int) []graph.NodeID {
	if steps < 1 {
		return nil
	}
	return []graph.NodeID{b.Part("slab", graph.ExtrusionData{
		Profile:  m.Silhouette(c, steps),
		Depth:    c.WidthMM,
		Plane:    graph.PlaneYZ,
		Material: c.Material,
	})}
}

func (masonryStrategy) Silhouette(c Context, steps int) geom.Polygon {
	angle := c.AngleDeg
	if angle <= 0 {
		angle = units.AdjOppToAng(c.RunMM, c.RiseMM)
	}
	return MasonrySilhouette(steps, c.RiseMM, c.RunMM, c.SlabMM, angle)
}

// Rail extrudes a parapet wall outside the flight: a parallelogram whose
// underside follows the slab and whose top runs at rail height.
func (masonryStrategy) Rail(b *graph.Builder, s HandrailSpec, h HandrailGeometry, side Side) []graph.NodeID {
	under := units.AngAdjToHyp(h.AngleDeg, s.SlabThicknessMM)
	profile := []graph.Vec2{
		{X: 0, Y: -under},
		{X: h.LengthMM, Y: s.TotalRiseMM - under},
		{X: h.LengthMM, Y: s.TotalRiseMM + s.HeightMM},
		{X: 0, Y: s.HeightMM},
	}
	x := -s.RailWidthMM
	switch side {
	case Right:
		x = s.WidthMM
	case Center:
		x = (s.WidthMM - s.RailWidthMM) / 2
	}
	return []graph.NodeID{b.Placed("parapet", graph.Vec3{X: x}, 0, graph.ExtrusionData{
		Profile:  profile,
		Depth:    s.RailWidthMM,
		Plane:    graph.PlaneYZ,
		Material: s.Material,
	})}
}

// MasonrySilhouette returns the side profile (run, height) of a concrete
// flight: the nosing walk from the floor to the top step, a vertical cut
// down to the slab underside and the underside itself, parallel to the
// incline at angleDeg and slab thick, back to the floor. The cuts are
// clamped to the flight so the polygon stays simple for any steps >= 1
// and 0 < angleDeg < 90.
func MasonrySilhouette(steps int, rise, run, slab, angleDeg float64) geom.Polygon {
	if steps < 1 {
		return nil
	}
	length := float64(steps) * run
	height := float64(steps) * rise

	floorCut := units.AngOppToHyp(angleDeg, slab)        // where the underside meets the floor
	topCut := height - units.AngAdjToHyp(angleDeg, slab) // underside height under the last step

	poly := nosings(steps, rise, run)
	if topCut <= 0 || floorCut >= length {
		return append(poly, geom.Vec2{X: length})
	}
	return append(poly, geom.Vec2{X: length, Y: topCut}, geom.Vec2{X: floorCut})
}
