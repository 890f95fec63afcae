package spiral

import (
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/Dante-U/nervi/pkg/bim"
	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/stair"
)

func tower() Request {
	return Request{
		Name:          "tower",
		RadiusMM:      1000,
		InnerRadiusMM: 100,
		TotalRiseM:    3.0,
		StepsPerTurn:  12,
		Turns:         1,
		Mount:         stair.Flush,
		Family:        material.Wood,
		Handrail:      true,
	}
}

func mustBuild(t *testing.T, req Request) *Result {
	t.Helper()
	res, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if errs := graph.ValidateAll(res.Graph).Errors; len(errs) > 0 {
		for _, e := range errs {
			t.Logf("  %s", e)
		}
		t.Fatalf("built graph has %d validation errors", len(errs))
	}
	return res
}

func countKinds(g *graph.DesignGraph) map[graph.PrimitiveKind]int {
	out := map[graph.PrimitiveKind]int{}
	g.Walk(func(n *graph.Node, _ []graph.TransformData) bool {
		if p, ok := n.Data.(graph.Primitive); ok {
			out[p.Kind()]++
		}
		return true
	})
	return out
}

func node(t *testing.T, g *graph.DesignGraph, path string) *graph.Node {
	t.Helper()
	n := g.Get(graph.NewNodeID(path))
	if n == nil {
		t.Fatalf("no node at %q", path)
	}
	return n
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		edit     func(*Request)
		steps    int
		angle    float64
		rise     float64
		treadDeg float64
	}{
		{"flush", func(*Request) {}, 12, 30, 250, 29},
		{"standard", func(r *Request) { r.Mount = stair.Standard }, 12, 360.0 / 11, 250, 29},
		{"ccw", func(r *Request) { r.CCW = true }, 12, -30, 250, 29},
		{"one and a half turns", func(r *Request) { r.Turns = 1.5; r.TotalRiseM = 3.6 }, 18, 30, 200, 29},
		{"partial step rounds up", func(r *Request) { r.Turns = 0.95 }, 12, 30, 250, 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tower()
			tt.edit(&req)
			p, err := NewPlan(req)
			if err != nil {
				t.Fatalf("NewPlan: %v", err)
			}
			if p.TotalSteps != tt.steps {
				t.Errorf("TotalSteps = %d, want %d", p.TotalSteps, tt.steps)
			}
			if !near(p.StepAngleDeg, tt.angle) {
				t.Errorf("StepAngleDeg = %v, want %v", p.StepAngleDeg, tt.angle)
			}
			if !near(p.StepRiseMM, tt.rise) {
				t.Errorf("StepRiseMM = %v, want %v", p.StepRiseMM, tt.rise)
			}
			if !near(p.TreadSweepDeg, tt.treadDeg) {
				t.Errorf("TreadSweepDeg = %v, want %v", p.TreadSweepDeg, tt.treadDeg)
			}
			if !near(p.StepRiseMM*float64(p.TotalSteps), p.TotalRiseMM) {
				t.Errorf("rise not conserved: %v x %d != %v", p.StepRiseMM, p.TotalSteps, p.TotalRiseMM)
			}
		})
	}
}

func TestWoodSpiral(t *testing.T) {
	res := mustBuild(t, tower())
	kinds := countKinds(res.Graph)
	// 12 balusters and 11 steps of rail sampled 4 times each.
	if kinds[graph.PrimCylinder] != 1 || kinds[graph.PrimExtrusion] != 12 || kinds[graph.PrimSegment] != 12+44 {
		t.Errorf("kinds = %v", kinds)
	}

	col := node(t, res.Graph, "tower/column/shaft").Data.(graph.CylinderData)
	if col.Radius != 100 || col.Height != 3000 {
		t.Errorf("column = %+v", col)
	}
	if c := node(t, res.Graph, "tower/column").Data.(graph.GroupData).Meta[bim.KeyIFCClass]; c != bim.IfcColumn {
		t.Errorf("column ifc_class = %q, want %s", c, bim.IfcColumn)
	}

	for i := 0; i < 12; i++ {
		place := node(t, res.Graph, "tower/treads/tread-"+strconv.Itoa(i)+"@").Data.(graph.TransformData)
		if !near(place.Translation.Z, float64(i+1)*250-40) {
			t.Errorf("tread %d at z=%v", i, place.Translation.Z)
		}
		spin := 0.0
		if place.Rotation != nil {
			spin = place.Rotation.Z
		}
		if !near(spin, float64(i)*30) {
			t.Errorf("tread %d rotated %v", i, spin)
		}
	}

	if res.Info.IFCClass != bim.IfcStair || res.Info.Material != "wood/oak" || res.Info.VolumeM3 <= 0 {
		t.Errorf("Info = %+v", res.Info)
	}
	if !near(res.Top.Position.Z, 3000) || !near(res.Top.Spin, 330) {
		t.Errorf("Top = %+v", res.Top)
	}
}

func TestRailFollowsBalusterTops(t *testing.T) {
	res := mustBuild(t, tower())
	first := node(t, res.Graph, "tower/handrail/rail-0").Data.(graph.SegmentData)
	last := node(t, res.Graph, "tower/handrail/rail-43").Data.(graph.SegmentData)
	b0 := node(t, res.Graph, "tower/handrail/baluster-0").Data.(graph.SegmentData)
	b11 := node(t, res.Graph, "tower/handrail/baluster-11").Data.(graph.SegmentData)

	if b0.To.Z-b0.From.Z != 900 {
		t.Errorf("baluster height = %v", b0.To.Z-b0.From.Z)
	}
	if r := math.Hypot(b0.From.X, b0.From.Y); !near(r, 950) {
		t.Errorf("baluster radius = %v, want 950", r)
	}
	for _, pair := range []struct{ rail, post graph.Vec3 }{{first.From, b0.To}, {last.To, b11.To}} {
		d := pair.rail.Sub(pair.post).Len()
		if d > 1e-6 {
			t.Errorf("rail end %+v is %v mm off post top %+v", pair.rail, d, pair.post)
		}
	}
}

func TestCounterClockwise(t *testing.T) {
	req := tower()
	req.CCW = true
	res := mustBuild(t, req)
	tread := node(t, res.Graph, "tower/treads/tread-0").Data.(graph.ExtrusionData)
	for _, v := range tread.Profile {
		if v.Y > 1e-9 {
			t.Fatalf("counter-clockwise wedge reaches y=%v", v.Y)
		}
	}
	place := node(t, res.Graph, "tower/treads/tread-1@").Data.(graph.TransformData)
	if place.Rotation == nil || !near(place.Rotation.Z, -30) {
		t.Errorf("tread 1 rotation = %+v", place.Rotation)
	}
}

func TestMasonryParapet(t *testing.T) {
	req := tower()
	req.Family = material.Masonry
	res := mustBuild(t, req)
	kinds := countKinds(res.Graph)
	if kinds[graph.PrimSegment] != 0 || kinds[graph.PrimExtrusion] != 24 {
		t.Errorf("kinds = %v, want 12 treads and 12 panels", kinds)
	}
	panel := node(t, res.Graph, "tower/handrail/panel-0").Data.(graph.ExtrusionData)
	if panel.Depth != 940 {
		t.Errorf("panel depth = %v, want rail height plus tread", panel.Depth)
	}
	for _, v := range panel.Profile {
		if r := math.Hypot(v.X, v.Y); r < 900-1e-6 {
			t.Fatalf("panel vertex at radius %v inside the wall", r)
		}
	}
	if res.Info.Material != "masonry/concrete" {
		t.Errorf("Material = %q", res.Info.Material)
	}
}

func TestNoColumnNoHandrail(t *testing.T) {
	req := tower()
	req.InnerRadiusMM = 0
	req.Handrail = false
	res := mustBuild(t, req)
	kinds := countKinds(res.Graph)
	if kinds[graph.PrimCylinder] != 0 || kinds[graph.PrimSegment] != 0 || kinds[graph.PrimExtrusion] != 12 {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestSpiralErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Request)
		code  nerr.Code
		param string
	}{
		{"zero radius", func(r *Request) { r.RadiusMM = 0 }, nerr.ErrCodeInvalidInput, "radius"},
		{"radius in meters", func(r *Request) { r.RadiusMM = 1.2 }, nerr.ErrCodeUnitConfusion, "radius"},
		{"column too wide", func(r *Request) { r.InnerRadiusMM = 1000 }, nerr.ErrCodeInvalidInput, "innerRadius"},
		{"rise in millimeters", func(r *Request) { r.TotalRiseM = 3000 }, nerr.ErrCodeUnitConfusion, "totalRise"},
		{"no rise", func(r *Request) { r.TotalRiseM = 0 }, nerr.ErrCodeInvalidInput, "totalRise"},
		{"one step per turn", func(r *Request) { r.StepsPerTurn = 1 }, nerr.ErrCodeInvalidInput, "stepsPerTurn"},
		{"no turns", func(r *Request) { r.Turns = 0 }, nerr.ErrCodeInvalidInput, "turns"},
		{"bad mount", func(r *Request) { r.Mount = stair.Mount(7) }, nerr.ErrCodeInvalidMount, "mount"},
		{"bad family", func(r *Request) { r.Family = material.Family(9) }, nerr.ErrCodeInvalidFamily, "family"},
		{"no room for treads", func(r *Request) { r.StepsPerTurn = 360 }, nerr.ErrCodeDegenerate, "stepsPerTurn"},
		{"rise thinner than tread", func(r *Request) { r.TotalRiseM = 0.3 }, nerr.ErrCodeDegenerate, "totalRise"},
		{"unknown material", func(r *Request) { r.Material = "teak" }, nerr.ErrCodeNotFound, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tower()
			tt.edit(&req)
			_, err := Build(req)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !nerr.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", nerr.GetCode(err), tt.code, err)
			}
			if got := nerr.GetParam(err); got != tt.param {
				t.Errorf("param = %q, want %q", got, tt.param)
			}
		})
	}
}

func TestSpiralIdempotent(t *testing.T) {
	a := mustBuild(t, tower())
	b := mustBuild(t, tower())
	if !reflect.DeepEqual(a.Plan, b.Plan) || !reflect.DeepEqual(a.Top, b.Top) || a.Info != b.Info {
		t.Error("identical requests built different stairs")
	}
	if a.Graph.NodeCount() != b.Graph.NodeCount() {
		t.Errorf("node counts %d != %d", a.Graph.NodeCount(), b.Graph.NodeCount())
	}
}

func TestWithSettings(t *testing.T) {
	s := DefaultSettings()
	s.SamplesPerStep = 1
	s.GapDeg = 5
	res, err := Build(tower(), WithSettings(s))
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.Plan.TreadSweepDeg, 25) {
		t.Errorf("TreadSweepDeg = %v, want 25", res.Plan.TreadSweepDeg)
	}
	if got := countKinds(res.Graph)[graph.PrimSegment]; got != 12+11 {
		t.Errorf("segments = %d, want 23", got)
	}
}
