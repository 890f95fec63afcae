package stair

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Dante-U/nervi/pkg/bim"
	"github.com/Dante-U/nervi/pkg/graph"
)

// Result is a built stair.
type Result struct {
	Graph *graph.DesignGraph
	Root  graph.NodeID // the stair group
	Top   graph.Anchor // continuation frame at the arrival level, stair frame
	Plan  Plan
	Info  bim.Info
}

// Build validates req, computes its plan and emits its geometry. Sections
// and landings are chained through their top anchors, so each piece is
// nested under the transform placing it on the previous one. Building the
// same request twice gives identical graphs.
func Build(req Request, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	r, err := resolve(req, o)
	if err != nil {
		return nil, err
	}
	plan, err := computePlan(r)
	if err != nil {
		return nil, err
	}
	strat, err := StrategyFor(r.mat.Family)
	if err != nil {
		return nil, err
	}

	c := NewContext(o.settings).
		WithWidth(r.widthMM).
		WithThread(plan.EffectiveRiseMM, plan.RunMM).
		WithThickness(r.thicknessMM).
		WithSlab(r.slabMM).
		WithAngle(plan.AngleDeg).
		WithLanding(r.landingMM).
		WithTotalRise(r.totalRiseMM).
		WithMount(r.mount).
		WithSides(r.sides).
		WithMaterial(r.mat)

	g := graph.New()
	g.Defaults.Material = r.mat
	b := graph.NewBuilder(g, r.name, module)

	els := plan.elements()
	frames := fold(els)
	ids := make([]graph.NodeID, len(els))
	for i, e := range els {
		n, err := buildElement(b, strat, c, e, req.Handrail)
		if err != nil {
			return nil, err
		}
		ids[i] = n.ID
		if i > 0 {
			if _, err := g.Attach(ids[i-1], graph.AnchorTop, n.ID); err != nil {
				return nil, fmt.Errorf("stairs: %w", err)
			}
		}
	}

	top := plan.topAnchor(els, frames)
	top.Meta = contextMeta(c)
	root := b.Root(r.name, graph.GroupData{Role: module}, ids[0])
	root.Anchors = []graph.Anchor{
		{Name: graph.AnchorBottom, Axis: graph.Vec3{Y: -1}},
		top,
	}
	info := bim.Summarize(g, root.ID, r.name, bim.IfcStair)
	root.Data = graph.GroupData{
		Role:        module,
		Description: fmt.Sprintf("%s %s stair, %d steps of %.0f mm", r.typ, r.mat.Family, plan.StepCount, plan.EffectiveRiseMM),
		Meta:        info.Meta(),
	}

	if req.Space != nil && !req.Space.Origin.IsZero() {
		g.RemoveRoot(root.ID)
		origin := req.Space.Origin
		g.AddRoot(b.Transform("placement", graph.TransformData{Translation: &origin}, root.ID))
	}

	return &Result{Graph: g, Root: root.ID, Top: top, Plan: plan, Info: info}, nil
}

// BuildAll builds independent stairs concurrently. Results keep the order
// of reqs; the first failure cancels the rest.
func BuildAll(ctx context.Context, reqs []Request, opts ...Option) ([]*Result, error) {
	out := make([]*Result, len(reqs))
	eg, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Build(req, opts...)
			if err != nil {
				return fmt.Errorf("stair %d (%s): %w", i, req.Name, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildElement emits one section or landing in its own frame.
func buildElement(b *graph.Builder, strat Strategy, c Context, e element, ho HandrailOptions) (*graph.Node, error) {
	switch e.kind {
	case kindSection:
		sb := b.Sub(fmt.Sprintf("section-%d", e.index))
		parts := strat.Flight(sb, c, e.steps)
		if e.steps > 0 && len(c.Sides) > 0 {
			sub := c.WithTotalRise(float64(e.steps+c.Mount.Offset()) * c.RiseMM)
			rail, _, err := BuildHandrail(sb.Sub("handrail"), sub.HandrailSpec(ho))
			if err != nil {
				return nil, err
			}
			parts = append(parts, rail.ID)
		}
		n := sb.Group("", graph.GroupData{
			Role:        "section",
			Description: fmt.Sprintf("%d treads", e.steps),
			Meta:        map[string]string{"steps": strconv.Itoa(e.steps), bim.KeyIFCClass: bim.IfcStairFlight},
		}, parts...)
		top := e.top
		top.Outline = strat.Silhouette(c, e.steps)
		top.Meta = map[string]string{"steps": strconv.Itoa(e.steps)}
		n.Anchors = []graph.Anchor{{Name: graph.AnchorBottom, Axis: graph.Vec3{Y: -1}}, top}
		return n, nil

	case kindLanding:
		lb := b.Sub(fmt.Sprintf("landing-%d", e.index))
		slab := lb.Part("slab", graph.BoxData{
			Dimensions: graph.Vec3{X: c.WidthMM, Y: e.length, Z: c.RiseMM},
			Material:   c.Material,
		})
		n := lb.Group("", graph.GroupData{
			Role:        "landing",
			Description: fmt.Sprintf("%.0f mm landing", e.length),
			Meta:        bim.Tag(bim.IfcSlab),
		}, slab)
		n.Anchors = []graph.Anchor{{Name: graph.AnchorBottom, Axis: graph.Vec3{Y: -1}}, e.top}
		return n, nil

	case kindClosing:
		lb := b.Sub(fmt.Sprintf("landing-%d", e.index))
		level := float64(c.Mount.Offset()) * c.RiseMM
		parts := []graph.NodeID{lb.Placed("slab", graph.Vec3{Z: level - c.RiseMM}, 0, graph.BoxData{
			Dimensions: graph.Vec3{X: c.WidthMM, Y: e.length, Z: c.RiseMM},
			Material:   c.Material,
		})}
		if len(c.Sides) > 0 {
			flat := ho
			flat.TotalRiseMM = ptr(0.0)
			flat.LengthMM = ptr(e.length)
			rail, _, err := BuildHandrail(lb.Sub("handrail"), c.WithTotalRise(0).HandrailSpec(flat))
			if err != nil {
				return nil, err
			}
			parts = append(parts, lb.Transform("handrail@", graph.TransformData{Translation: &graph.Vec3{Z: level}}, rail.ID))
		}
		n := lb.Group("", graph.GroupData{
			Role:        "landing",
			Description: fmt.Sprintf("%.0f mm closing landing", e.length),
			Meta:        bim.Tag(bim.IfcSlab),
		}, parts...)
		n.Anchors = []graph.Anchor{{Name: graph.AnchorBottom, Axis: graph.Vec3{Y: -1}}, e.top}
		return n, nil
	}
	return nil, fmt.Errorf("stairs: unknown element kind %d", e.kind)
}

// contextMeta records the thread of a stair on its top anchor, for
// handrails or flights attached there later.
func contextMeta(c Context) map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]string{
		"width_mm":     f(c.WidthMM),
		"rise_mm":      f(c.RiseMM),
		"run_mm":       f(c.RunMM),
		"thickness_mm": f(c.ThicknessMM),
		"slab_mm":      f(c.SlabMM),
		"angle_deg":    f(c.AngleDeg),
		"mount":        c.Mount.String(),
		"family":       c.Family.String(),
		"material":     c.Material.Name,
	}
}

func ptr[T any](v T) *T { return &v }
