package stair

import (
	"context"
	"math"
	"reflect"
	"sort"
	"strconv"
	"testing"

	"github.com/Dante-U/nervi/pkg/bim"
	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/geom"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

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

func node(t *testing.T, g *graph.DesignGraph, path string) *graph.Node {
	t.Helper()
	n := g.Get(graph.NewNodeID(path))
	if n == nil {
		t.Fatalf("no node at %q", path)
	}
	return n
}

// countKinds counts the primitive payloads reachable from the roots.
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

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// ---------------------------------------------------------------------------
// Straight stairs
// ---------------------------------------------------------------------------

func TestStraightWoodStair(t *testing.T) {
	res := mustBuild(t, Request{WidthM: 1, TotalRiseM: 2.8, Family: material.Wood})

	if res.Plan.StepCount != 16 || res.Plan.EffectiveRiseMM != 165 {
		t.Fatalf("plan = %d x %v", res.Plan.StepCount, res.Plan.EffectiveRiseMM)
	}
	if got := countKinds(res.Graph)[graph.PrimBox]; got != 16 {
		t.Errorf("got %d treads, want 16", got)
	}
	for i := 0; i < 16; i++ {
		place := node(t, res.Graph, "stairs/section-0/tread-"+strconv.Itoa(i)+"@")
		td := place.Data.(graph.TransformData)
		wantZ := float64(i+1)*165 - 40
		if !near(td.Translation.Y, float64(i)*250) || !near(td.Translation.Z, wantZ) {
			t.Errorf("tread %d at %+v, want y=%v z=%v", i, *td.Translation, float64(i)*250, wantZ)
		}
		box := res.Graph.Get(place.Children[0]).Data.(graph.BoxData)
		if box.Dimensions != (graph.Vec3{X: 1000, Y: 250, Z: 40}) {
			t.Errorf("tread %d dims = %+v", i, box.Dimensions)
		}
		if box.Material.Name != "oak" {
			t.Errorf("tread %d material = %q, want the wood default", i, box.Material.Name)
		}
	}

	// The top floor is one rise above the last tread.
	if !near(res.Top.Position.Y, 4000) || !near(res.Top.Position.Z, 17*165) {
		t.Errorf("Top = %+v", res.Top.Position)
	}
	if res.Top.Meta["rise_mm"] != "165" || res.Top.Meta["family"] != "wood" {
		t.Errorf("Top.Meta = %v", res.Top.Meta)
	}
	root := res.Graph.Get(res.Root)
	if root.Name != "stairs" || root.Data.(graph.GroupData).Meta["ifc_class"] != "IfcStair" {
		t.Errorf("root = %+v", root)
	}
	// 16 x 1000 x 250 x 40 mm of oak.
	if !near(res.Info.VolumeM3, 0.16) {
		t.Errorf("VolumeM3 = %v, want 0.16", res.Info.VolumeM3)
	}
}

func TestFlushHasOneMoreTread(t *testing.T) {
	std := mustBuild(t, Request{WidthM: 1, TotalRiseM: 3.0})
	flush := mustBuild(t, Request{WidthM: 1, TotalRiseM: 3.0, Mount: Flush})
	if countKinds(flush.Graph)[graph.PrimBox] != countKinds(std.Graph)[graph.PrimBox]+1 {
		t.Error("flush should produce one more tread than standard")
	}
	// Flush: the last tread is the arrival level.
	if !near(flush.Top.Position.Z, float64(flush.Plan.StepCount)*flush.Plan.EffectiveRiseMM) {
		t.Errorf("flush top z = %v", flush.Top.Position.Z)
	}
}

func TestMetalStringers(t *testing.T) {
	res := mustBuild(t, Request{WidthM: 0.9, TotalRiseM: 2.8, Family: material.Metal})
	kinds := countKinds(res.Graph)
	if kinds[graph.PrimBox] != 16 || kinds[graph.PrimSegment] != 2 {
		t.Errorf("kinds = %v, want 16 boxes and 2 stringers", kinds)
	}
}

func TestMasonryStair(t *testing.T) {
	res := mustBuild(t, Request{WidthM: 1.2, TotalRiseM: 2.8, Family: material.Masonry})
	slab := node(t, res.Graph, "stairs/section-0/slab")
	ext, ok := slab.Data.(graph.ExtrusionData)
	if !ok {
		t.Fatalf("slab data = %T", slab.Data)
	}
	if ext.Plane != graph.PlaneYZ || ext.Depth != 1200 {
		t.Errorf("extrusion plane %s depth %v", ext.Plane, ext.Depth)
	}
	poly := geom.Polygon(ext.Profile)
	if !poly.IsSimple() {
		t.Fatal("silhouette is not simple")
	}
	want := poly.Area() * 1200 / 1e9
	if !near(res.Info.VolumeM3, want) {
		t.Errorf("VolumeM3 = %v, want silhouette area x width = %v", res.Info.VolumeM3, want)
	}
	if res.Info.Material != "masonry/concrete" {
		t.Errorf("Material = %q", res.Info.Material)
	}

	sec := node(t, res.Graph, "stairs/section-0")
	top, ok := sec.Anchor(graph.AnchorTop)
	if !ok || len(top.Outline) != len(ext.Profile) {
		t.Errorf("section top anchor should carry the silhouette, got %d points", len(top.Outline))
	}
}

// ---------------------------------------------------------------------------
// L and U stairs
// ---------------------------------------------------------------------------

func TestLShapedChain(t *testing.T) {
	res := mustBuild(t, Request{Type: LShaped, WidthM: 1, TotalRiseM: 2.8})

	if !reflect.DeepEqual(res.Plan.Sections, []int{8, 7}) {
		t.Fatalf("Sections = %v", res.Plan.Sections)
	}
	// Walk the world position of each tread's box origin.
	var last graph.Vec3
	var maxZ float64
	res.Graph.Walk(func(n *graph.Node, frames []graph.TransformData) bool {
		if _, ok := n.Data.(graph.BoxData); ok && n.Label == "stairs/section-1/tread-6" {
			last = graph.ToWorld(graph.Vec3{}, frames)
		}
		if _, ok := n.Data.(graph.BoxData); ok {
			top := graph.ToWorld(graph.Vec3{}, frames).Z + n.Data.(graph.BoxData).Dimensions.Z
			maxZ = math.Max(maxZ, top)
		}
		return true
	})
	// Second flight runs towards -X from the landing at y = 2000.
	// Its tread 6 box origin: local (0, 1500, 7*165-40) turned left.
	if !near(last.X, -1500) || !near(last.Y, 2000) || !near(last.Z, 8*165+165+7*165-40) {
		t.Errorf("last tread origin = %+v", last)
	}
	if !near(maxZ, 16*165) {
		t.Errorf("highest tread top = %v, want %v", maxZ, 16*165)
	}
	if !near(res.Top.Position.X, -1750) || !near(res.Top.Position.Y, 2000) ||
		!near(res.Top.Position.Z, 17*165) || res.Top.Spin != 90 {
		t.Errorf("Top = %+v spin %v", res.Top.Position, res.Top.Spin)
	}
	landing := node(t, res.Graph, "stairs/landing-0/slab").Data.(graph.BoxData)
	if landing.Dimensions != (graph.Vec3{X: 1000, Y: 1000, Z: 165}) {
		t.Errorf("landing dims = %+v", landing.Dimensions)
	}
}

func TestElementIFCClasses(t *testing.T) {
	res := mustBuild(t, Request{Type: UShaped, WidthM: 1, TotalRiseM: 3.4, StepCount: intp(20)})
	tests := []struct {
		path string
		want string
	}{
		{"stairs", bim.IfcStair},
		{"stairs/section-0", bim.IfcStairFlight},
		{"stairs/section-2", bim.IfcStairFlight},
		{"stairs/landing-0", bim.IfcSlab},
		{"stairs/landing-2", bim.IfcSlab},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			meta := node(t, res.Graph, tt.path).Data.(graph.GroupData).Meta
			if got := meta[bim.KeyIFCClass]; got != tt.want {
				t.Errorf("ifc_class = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUShapedClosingRail(t *testing.T) {
	res := mustBuild(t, Request{
		Type:       UShaped,
		WidthM:     1,
		TotalRiseM: 3.4,
		StepCount:  intp(20),
		Sides:      []Side{Left},
		Family:     material.Metal,
	})
	rail := node(t, res.Graph, "stairs/landing-2/handrail/left/rail").Data.(graph.SegmentData)
	if !near(rail.Length(), 750) || rail.From.Z != rail.To.Z {
		t.Errorf("closing rail from %+v to %+v", rail.From, rail.To)
	}
	// Rails on every flight plus the closing landing.
	for _, p := range []string{
		"stairs/section-0/handrail",
		"stairs/section-1/handrail",
		"stairs/section-2/handrail",
		"stairs/landing-2/handrail",
	} {
		node(t, res.Graph, p)
	}
	// The closing landing top is the arrival level.
	var topZ float64
	res.Graph.Walk(func(n *graph.Node, frames []graph.TransformData) bool {
		if n.Label == "stairs/landing-2/slab" {
			topZ = graph.ToWorld(graph.Vec3{Z: 162}, frames).Z
		}
		return true
	})
	if !near(topZ, 21*162) {
		t.Errorf("closing landing top z = %v, want %v", topZ, 21*162)
	}
}

func TestZeroTreadSection(t *testing.T) {
	res := mustBuild(t, Request{Type: LShaped, WidthM: 1, TotalRiseM: 0.5, StepCount: intp(2), Sides: []Side{Right}})
	if !reflect.DeepEqual(res.Plan.Sections, []int{1, 0}) {
		t.Fatalf("Sections = %v", res.Plan.Sections)
	}
	sec := node(t, res.Graph, "stairs/section-1")
	if len(sec.Children) != 0 {
		t.Errorf("empty section has %d children", len(sec.Children))
	}
}

// ---------------------------------------------------------------------------
// Handrails inside stairs
// ---------------------------------------------------------------------------

func TestStairHandrails(t *testing.T) {
	res := mustBuild(t, Request{WidthM: 1, TotalRiseM: 2.8, Sides: []Side{Left, Right}})
	kinds := countKinds(res.Graph)
	// 16 x 250 = 4000 mm of run at 1000 mm intervals: 5 posts per side.
	if kinds[graph.PrimCylinder] != 10 || kinds[graph.PrimSegment] != 2 {
		t.Errorf("kinds = %v", kinds)
	}
	rail := node(t, res.Graph, "stairs/section-0/handrail/right/rail").Data.(graph.SegmentData)
	if !near(rail.From.X, 980) || !near(rail.To.Y, 4000) || !near(rail.To.Z-rail.From.Z, 17*165) {
		t.Errorf("right rail from %+v to %+v", rail.From, rail.To)
	}
	post := node(t, res.Graph, "stairs/section-0/handrail/left/post-4@").Data.(graph.TransformData)
	if !near(post.Translation.Y, 4000) || !near(post.Translation.Z, 17*165) {
		t.Errorf("last post at %+v", *post.Translation)
	}
}

func TestStairHandrailOverrides(t *testing.T) {
	h := 1000.0
	interval := 500.0
	res := mustBuild(t, Request{
		WidthM:     1,
		TotalRiseM: 2.8,
		Sides:      []Side{Left},
		Handrail:   HandrailOptions{HeightMM: &h, PostIntervalMM: &interval},
	})
	if got := countKinds(res.Graph)[graph.PrimCylinder]; got != 9 {
		t.Errorf("got %d posts, want 9", got)
	}
	rail := node(t, res.Graph, "stairs/section-0/handrail/left/rail").Data.(graph.SegmentData)
	if rail.From.Z != 1000 {
		t.Errorf("rail starts at z=%v, want 1000", rail.From.Z)
	}
}

func TestMasonryParapets(t *testing.T) {
	res := mustBuild(t, Request{WidthM: 1, TotalRiseM: 2.8, Family: material.Masonry, Sides: []Side{Left, Right}})
	for _, side := range []string{"left", "right"} {
		p := node(t, res.Graph, "stairs/section-0/handrail/"+side+"/parapet").Data.(graph.ExtrusionData)
		if !geom.Polygon(p.Profile).IsSimple() || p.Depth != 100 {
			t.Errorf("%s parapet: depth %v profile %v", side, p.Depth, p.Profile)
		}
	}
	at := node(t, res.Graph, "stairs/section-0/handrail/left/parapet@").Data.(graph.TransformData)
	if at.Translation.X != -100 {
		t.Errorf("left parapet should sit outside the flight, x=%v", at.Translation.X)
	}
}

// ---------------------------------------------------------------------------
// Determinism, placement, concurrency
// ---------------------------------------------------------------------------

func nodeIDs(g *graph.DesignGraph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return ids
}

func TestBuildIdempotent(t *testing.T) {
	req := Request{Name: "main", Type: UShaped, WidthM: 1, TotalRiseM: 3.2, Sides: []Side{Left, Right}, Family: material.Masonry}
	a := mustBuild(t, req)
	b := mustBuild(t, req)
	if !reflect.DeepEqual(a.Plan, b.Plan) {
		t.Error("plans differ")
	}
	if !reflect.DeepEqual(nodeIDs(a.Graph), nodeIDs(b.Graph)) {
		t.Error("node IDs differ between identical builds")
	}
	if !reflect.DeepEqual(a.Top, b.Top) || a.Info != b.Info {
		t.Error("top anchor or info differ")
	}
}

func TestSpacePlacement(t *testing.T) {
	res := mustBuild(t, Request{Name: "cellar", WidthM: 1, Space: &Space{Name: "hall", HeightM: 2.8, Origin: graph.Vec3{X: 500, Y: 200}}})
	if len(res.Graph.Roots) != 1 {
		t.Fatalf("Roots = %v", res.Graph.Roots)
	}
	place := res.Graph.Get(res.Graph.Roots[0])
	if place.Kind != graph.NodeTransform || place.Children[0] != res.Root {
		t.Fatalf("root should be the placement transform, got %+v", place)
	}
	if res.Graph.Lookup("cellar") == nil {
		t.Error("stair group should be looked up by name")
	}
}

func TestBuildAll(t *testing.T) {
	reqs := []Request{
		{Name: "a", WidthM: 1, TotalRiseM: 2.8},
		{Name: "b", Type: LShaped, WidthM: 1, TotalRiseM: 3.0, Family: material.Metal},
		{Name: "c", Type: UShaped, WidthM: 1.2, TotalRiseM: 3.4, Family: material.Masonry},
	}
	res, err := BuildAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	for i, r := range res {
		want, err := Build(reqs[i])
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if !reflect.DeepEqual(r.Plan, want.Plan) || res[i].Info.Name != reqs[i].Name {
			t.Errorf("result %d differs from a sequential build", i)
		}
	}

	reqs[1].TotalRiseM = 2800
	if _, err := BuildAll(context.Background(), reqs); !nerr.Is(err, nerr.ErrCodeUnitConfusion) {
		t.Errorf("err = %v, want UNIT_CONFUSION", err)
	}
}

func TestBuildWithCatalog(t *testing.T) {
	cat := material.NewCatalog()
	if err := cat.Add(material.Material{Family: material.Wood, Name: "larch", Density: 590, Color: "#c49a6c"}); err != nil {
		t.Fatal(err)
	}
	res, err := Build(Request{WidthM: 1, TotalRiseM: 2.8}, WithCatalog(cat))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Info.Material != "wood/larch" {
		t.Errorf("Material = %q, want wood/larch", res.Info.Material)
	}
	if _, err := Build(Request{WidthM: 1, TotalRiseM: 2.8, Family: material.Metal}, WithCatalog(cat)); !nerr.Is(err, nerr.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND for a family missing from the catalog", err)
	}
}
