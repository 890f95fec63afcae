package engine

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	zygo "github.com/glycerine/zygomys/zygo"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/spiral"
	"github.com/Dante-U/nervi/pkg/stair"
	"github.com/Dante-U/nervi/pkg/units"
)

// session is the state of one evaluation: the graph being built, the
// declared spaces and the generator settings.
type session struct {
	g       *graph.DesignGraph
	spaces  map[string]stair.Space
	catalog *material.Catalog
	stairs  stair.Settings
	spiral  spiral.Settings
	log     *log.Logger
	anon    map[string]int

	// failure is the last error returned by a builtin, kept so its code
	// survives zygomys' error formatting.
	failure error
}

func (e *Engine) newSession() *session {
	return &session{
		g:       graph.New(),
		spaces:  map[string]stair.Space{},
		catalog: e.catalog,
		stairs:  e.stairs,
		spiral:  e.spiral,
		log:     e.log,
		anon:    map[string]int{},
	}
}

// anonName returns kind-N, numbered per evaluation.
func (s *session) anonName(kind string) string {
	s.anon[kind]++
	return fmt.Sprintf("%s-%d", kind, s.anon[kind])
}

// merge adds a generator's graph to the evaluation graph.
func (s *session) merge(fn string, g *graph.DesignGraph) error {
	if err := s.g.Merge(g); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return nil
}

// add registers a builtin, recording its failures.
func (s *session) add(env *zygo.Zlisp, name string, fn func(args []zygo.Sexp) (zygo.Sexp, error)) {
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := fn(args)
		if err != nil {
			s.failure = err
			return zygo.SexpNull, err
		}
		return out, nil
	})
}

// register installs all nervi DSL builtins into a zygomys environment.
// Builtins with hyphenated names are registered with underscores; the
// preprocessor rewrites calls accordingly.
func (s *session) register(env *zygo.Zlisp) {
	s.add(env, "space", s.space)
	s.add(env, "stairs", s.buildStairs)
	s.add(env, "spiral_stairs", s.buildSpiral)
	s.add(env, "handrail", s.buildHandrail)
	s.add(env, "vec3", vec3)
	s.add(env, "place", s.place)
	s.add(env, "top_of", s.topOf)
	s.add(env, "attach", s.attach)
	s.add(env, "assembly", s.assembly)
	s.add(env, "material_property", s.materialProperty)
}

// -----------------------------------------------------------------------
// (space "hall" :height 2.8 :origin (vec3 0 0 0))
// -----------------------------------------------------------------------
func (s *session) space(args []zygo.Sexp) (zygo.Sexp, error) {
	r := newArgReader("space", args)
	sp := stair.Space{Name: r.name()}
	r.float("height", &sp.HeightM)
	r.vec("origin", &sp.Origin)
	if err := r.done(); err != nil {
		return nil, err
	}
	if sp.Name == "" {
		return nil, nerr.Invalid(nerr.ErrCodeInvalidInput, "space", "name", "a space needs a name")
	}
	if err := units.CheckMeters("space", "height", sp.HeightM); err != nil {
		return nil, err
	}
	s.spaces[sp.Name] = sp
	return &sexpSpace{space: sp}, nil
}

// -----------------------------------------------------------------------
// (stairs "main" :type :l-shaped :width 1.0 :total-rise 2.8 :family :wood
//         :material "oak" :mount :standard :sides (list :left :right)
//         :rise 170 :run 250 :landing 1000 :slab 150 :thickness 40
//         :steps 16 :space "hall" :rail-height 900 :post-interval 1000)
// -----------------------------------------------------------------------
func (s *session) buildStairs(args []zygo.Sexp) (zygo.Sexp, error) {
	r := newArgReader("stairs", args)
	req := stair.Request{Name: r.name()}
	var typ, family, mount, space string
	r.keyword("type", &typ)
	r.float("width", &req.WidthM)
	r.float("total-rise", &req.TotalRiseM)
	r.intPtr("steps", &req.StepCount)
	r.float("rise", &req.TheoreticalRiseMM)
	r.float("run", &req.RunMM)
	r.float("landing", &req.LandingSizeMM)
	r.float("slab", &req.SlabThicknessMM)
	r.float("thickness", &req.ThreadThicknessMM)
	r.keyword("family", &family)
	r.str("material", &req.Material)
	r.keyword("mount", &mount)
	r.sides("sides", &req.Sides)
	r.str("space", &space)
	r.rail(&req.Handrail)
	if err := r.done(); err != nil {
		return nil, err
	}

	var err error
	if typ != "" {
		if req.Type, err = stair.ParseType(typ); err != nil {
			return nil, err
		}
	}
	if family != "" {
		if req.Family, err = material.ParseFamily(family); err != nil {
			return nil, err
		}
	}
	if mount != "" {
		if req.Mount, err = stair.ParseMount(mount); err != nil {
			return nil, err
		}
	}
	if space != "" {
		sp, ok := s.spaces[space]
		if !ok {
			return nil, nerr.Invalid(nerr.ErrCodeNotFound, "stairs", "space", "no space named %q", space)
		}
		req.Space = &sp
	}
	if req.Name == "" {
		req.Name = s.anonName("stairs")
	}

	res, err := stair.Build(req, stair.WithCatalog(s.catalog), stair.WithSettings(s.stairs))
	if err != nil {
		return nil, err
	}
	p := res.Plan
	s.log.Debug("stairs", "name", req.Name, "type", p.Type, "steps", p.StepCount,
		"rise_mm", p.EffectiveRiseMM, "sections", p.Sections, "landings", p.Landings,
		"footprint", fmt.Sprintf("%.0fx%.0f", p.TotalWidthMM, p.TotalLengthMM))
	if err := s.merge("stairs", res.Graph); err != nil {
		return nil, err
	}
	return &sexpNodeRef{id: res.Graph.Roots[0], anchors: res.Root, name: req.Name}, nil
}

// -----------------------------------------------------------------------
// (spiral-stairs "tower" :radius 1000 :inner-radius 100 :total-rise 3.0
//                :steps-per-turn 12 :turns 1.0 :mount :flush :family :metal
//                :ccw true :handrail true)
// -----------------------------------------------------------------------
func (s *session) buildSpiral(args []zygo.Sexp) (zygo.Sexp, error) {
	r := newArgReader("spiral-stairs", args)
	req := spiral.Request{Name: r.name(), Turns: 1}
	var family, mount string
	r.float("radius", &req.RadiusMM)
	r.float("inner-radius", &req.InnerRadiusMM)
	r.float("total-rise", &req.TotalRiseM)
	r.int("steps-per-turn", &req.StepsPerTurn)
	r.float("turns", &req.Turns)
	r.keyword("mount", &mount)
	r.keyword("family", &family)
	r.str("material", &req.Material)
	r.bool("ccw", &req.CCW)
	r.bool("handrail", &req.Handrail)
	if err := r.done(); err != nil {
		return nil, err
	}

	var err error
	if family != "" {
		if req.Family, err = material.ParseFamily(family); err != nil {
			return nil, err
		}
	}
	if mount != "" {
		if req.Mount, err = stair.ParseMount(mount); err != nil {
			return nil, err
		}
	}
	if req.Name == "" {
		req.Name = s.anonName("spiral")
	}

	res, err := spiral.Build(req, spiral.WithCatalog(s.catalog), spiral.WithSettings(s.spiral))
	if err != nil {
		return nil, err
	}
	s.log.Debug("spiral-stairs", "name", req.Name, "steps", res.Plan.TotalSteps,
		"step_angle", res.Plan.StepAngleDeg, "step_rise_mm", res.Plan.StepRiseMM)
	if err := s.merge("spiral-stairs", res.Graph); err != nil {
		return nil, err
	}
	return &sexpNodeRef{id: res.Root, name: req.Name}, nil
}

// -----------------------------------------------------------------------
// (handrail "edge" :length 2000 :sides (list :left) :family :metal
//           :width 1.0 :total-rise 0 :rise 170 :run 250 :mount :standard)
// -----------------------------------------------------------------------
func (s *session) buildHandrail(args []zygo.Sexp) (zygo.Sexp, error) {
	r := newArgReader("handrail", args)
	name := r.name()
	widthM := 1.0
	var totalRiseM, slab float64
	rise, run := s.stairs.TheoreticalRiseMM, s.stairs.RunMM
	var family, matName, mount string
	var o stair.HandrailOptions
	r.float("width", &widthM)
	r.float("total-rise", &totalRiseM)
	r.floatPtr("length", &o.LengthMM)
	r.float("rise", &rise)
	r.float("run", &run)
	r.float("slab", &slab)
	r.keyword("family", &family)
	r.str("material", &matName)
	r.keyword("mount", &mount)
	r.sides("sides", &o.Sides)
	r.rail(&o)
	if err := r.done(); err != nil {
		return nil, err
	}
	if err := units.CheckMeters("handrail", "width", widthM); err != nil {
		return nil, err
	}
	if totalRiseM != 0 {
		if err := units.CheckMeters("handrail", "totalRise", totalRiseM); err != nil {
			return nil, err
		}
	}

	c := stair.NewContext(s.stairs).
		WithWidth(units.MToMM(widthM)).
		WithThread(rise, run).
		WithTotalRise(units.MToMM(totalRiseM))
	if slab > 0 {
		c = c.WithSlab(slab)
	}
	if mount != "" {
		m, err := stair.ParseMount(mount)
		if err != nil {
			return nil, err
		}
		c = c.WithMount(m)
	}
	if family != "" {
		f, err := material.ParseFamily(family)
		if err != nil {
			return nil, err
		}
		c.Family = f
	}
	if matName != "" {
		m, err := s.catalog.Get(c.Family, matName)
		if err != nil {
			return nil, err
		}
		c = c.WithMaterial(graph.SpecFrom(m))
	}
	if name == "" {
		name = s.anonName("handrail")
	}

	res, err := stair.Handrail(name, c, o, stair.WithCatalog(s.catalog), stair.WithSettings(s.stairs))
	if err != nil {
		return nil, err
	}
	h := res.Geometry
	s.log.Debug("handrail", "name", name, "length_mm", h.LengthMM, "angle", h.AngleDeg, "posts", h.PostCount)
	if err := s.merge("handrail", res.Graph); err != nil {
		return nil, err
	}
	return &sexpNodeRef{id: res.Root, name: name}, nil
}

// -----------------------------------------------------------------------
// (vec3 1 2 3)
// -----------------------------------------------------------------------
func vec3(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var v [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		v[i] = f
	}
	return &sexpVec3{vec: graph.Vec3{X: v[0], Y: v[1], Z: v[2]}}, nil
}

// -----------------------------------------------------------------------
// (place ref :at (vec3 0 0 19) :spin 90)
// -----------------------------------------------------------------------
func (s *session) place(args []zygo.Sexp) (zygo.Sexp, error) {
	r := newArgReader("place", args)
	var at graph.Vec3
	var spin float64
	r.vec("at", &at)
	r.float("spin", &spin)
	r.named = true
	if err := r.done(); err != nil {
		return nil, err
	}
	if len(r.pa.positional) < 1 {
		return nil, fmt.Errorf("place requires a node reference as first argument")
	}
	child, err := toNodeRef(r.pa.positional[0])
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}

	td := graph.TransformData{Translation: &at}
	if spin != 0 {
		td.Rotation = &graph.Vec3{Z: spin}
	}
	path := "place/" + child.name
	if child.name == "" || s.g.Get(graph.NewNodeID(path)) != nil {
		path = "place/" + s.anonName("place")
	}
	id := graph.NewNodeID(path)
	s.g.AddNode(&graph.Node{
		ID:       id,
		Kind:     graph.NodeTransform,
		Label:    path,
		Source:   graph.SourceRef{Generator: "dsl"},
		Children: []graph.NodeID{child.id},
		Data:     td,
	})
	s.g.RemoveRoot(child.id)
	s.g.AddRoot(id)
	return &sexpNodeRef{id: id, anchors: child.anchorNode(), name: child.name}, nil
}

// -----------------------------------------------------------------------
// (top-of ref)
// -----------------------------------------------------------------------
func (s *session) topOf(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("top-of requires exactly 1 argument, got %d", len(args))
	}
	ref, err := toNodeRef(args[0])
	if err != nil {
		return nil, fmt.Errorf("top-of: %w", err)
	}
	return &sexpAnchor{ref: ref, anchor: graph.AnchorTop}, nil
}

// -----------------------------------------------------------------------
// (attach child :to (top-of parent))
// -----------------------------------------------------------------------
func (s *session) attach(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("attach requires exactly one node reference")
	}
	child, err := toNodeRef(pa.positional[0])
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	to, ok := pa.kw["to"].(*sexpAnchor)
	if !ok {
		return nil, fmt.Errorf("attach: :to expects an anchor such as (top-of ref)")
	}
	if to.ref.id == child.id {
		return nil, fmt.Errorf("attach: cannot attach %s to itself", child.SexpString(nil))
	}
	t, err := s.g.Attach(to.ref.anchorNode(), to.anchor, child.id)
	if err != nil {
		return nil, err
	}
	return &sexpNodeRef{id: t.ID, anchors: child.anchorNode(), name: child.name}, nil
}

// -----------------------------------------------------------------------
// (assembly "name" ref...)
// -----------------------------------------------------------------------
func (s *session) assembly(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("assembly requires a name argument")
	}
	asmName, err := toString(args[0])
	if err != nil {
		return nil, fmt.Errorf("assembly: name: %w", err)
	}
	if s.g.Lookup(asmName) != nil {
		return nil, nerr.Invalid(nerr.ErrCodeInvalidInput, "assembly", "name", "name %q already in use", asmName)
	}

	var children []graph.NodeID
	for i := 1; i < len(args); i++ {
		ref, ok := args[i].(*sexpNodeRef)
		if !ok {
			return nil, fmt.Errorf("assembly: child %d: expected node reference, got %T (%s)",
				i, args[i], args[i].SexpString(nil))
		}
		children = append(children, ref.id)
	}

	id := graph.NewNodeID("assembly/" + asmName)
	s.g.AddNode(&graph.Node{
		ID:       id,
		Kind:     graph.NodeGroup,
		Name:     asmName,
		Label:    "assembly/" + asmName,
		Source:   graph.SourceRef{Generator: "dsl"},
		Children: children,
		Data:     graph.GroupData{Role: "assembly"},
	})
	for _, c := range children {
		s.g.RemoveRoot(c)
	}
	s.g.AddRoot(id)
	return &sexpNodeRef{id: id, name: asmName}, nil
}

// -----------------------------------------------------------------------
// (material-property :wood "oak" :density)
// -----------------------------------------------------------------------
func (s *session) materialProperty(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("material-property requires family, name and property, got %d arguments", len(args))
	}
	var parts [3]string
	for i, a := range args {
		v, err := toKeywordString(a)
		if err != nil {
			return nil, fmt.Errorf("material-property: %w", err)
		}
		parts[i] = v
	}
	f, err := material.ParseFamily(parts[0])
	if err != nil {
		return nil, err
	}
	prop := material.Property(strings.ReplaceAll(parts[2], "-", "_"))
	v, err := s.catalog.Lookup(f, parts[1], prop)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case float64:
		return &zygo.SexpFloat{Val: v}, nil
	case string:
		return &zygo.SexpStr{S: v}, nil
	}
	return nil, fmt.Errorf("material-property: unsupported value %T", v)
}
