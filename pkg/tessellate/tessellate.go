// Package tessellate walks a scene graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per primitive.
package tessellate

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Dante-U/nervi/pkg/geom"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/kernel"
)

// cylinderSegments is passed to kernels that facet circles.
const cylinderSegments = 32

// job is one primitive together with the transforms enclosing it,
// outermost first.
type job struct {
	node   *graph.Node
	frames []graph.TransformData
}

// collect walks the graph from its roots and lists every primitive in
// traversal order. A primitive reachable along two paths yields two jobs.
func collect(g *graph.DesignGraph) ([]job, error) {
	var (
		jobs []job
		err  error
	)
	g.Walk(func(n *graph.Node, frames []graph.TransformData) bool {
		if err != nil {
			return false
		}
		switch n.Kind {
		case graph.NodePrimitive:
			jobs = append(jobs, job{node: n, frames: frames})
			return false
		case graph.NodeTransform:
			if _, ok := n.Data.(graph.TransformData); !ok {
				err = fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
				return false
			}
			return true
		case graph.NodeGroup:
			return true
		default:
			err = fmt.Errorf("unknown node kind: %v", n.Kind)
			return false
		}
	})
	return jobs, err
}

// Tessellate walks the scene graph and produces one triangle mesh per
// primitive using the provided geometry kernel. The tessellator is
// read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	jobs, err := collect(g)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	meshes := make([]*kernel.Mesh, 0, len(jobs))
	for _, j := range jobs {
		m, err := meshFor(k, j)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Parallel is Tessellate with up to workers primitives meshed at once.
// The output order matches Tessellate. workers <= 0 uses GOMAXPROCS.
func Parallel(ctx context.Context, g *graph.DesignGraph, k kernel.Kernel, workers int) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	jobs, err := collect(g)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	meshes := make([]*kernel.Mesh, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, j := range jobs {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			m, err := meshFor(k, j)
			if err != nil {
				return err
			}
			meshes[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return meshes, nil
}

// meshFor builds, places and meshes one primitive.
func meshFor(k kernel.Kernel, j job) (*kernel.Mesh, error) {
	n := j.node
	solid, err := Solid(k, n.Data)
	if err != nil {
		return nil, fmt.Errorf("tessellate: node %s: %w", n.ID.Short(), err)
	}
	solid = place(k, solid, j.frames)

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	mesh.PartName = n.DisplayName()
	if p, ok := n.Data.(graph.Primitive); ok {
		mesh.Color = p.Mat().Color
	}
	return mesh, nil
}

// place applies the enclosing transforms, innermost first. Each transform
// rotates and then translates.
func place(k kernel.Kernel, s kernel.Solid, frames []graph.TransformData) kernel.Solid {
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		if r := f.Rotation; r != nil && !r.IsZero() {
			s = k.Rotate(s, r.X, r.Y, r.Z)
		}
		if t := f.Translation; t != nil && !t.IsZero() {
			s = k.Translate(s, t.X, t.Y, t.Z)
		}
	}
	return s
}

// Solid builds the kernel solid of a primitive payload in its local frame.
func Solid(k kernel.Kernel, data graph.NodeData) (kernel.Solid, error) {
	switch d := data.(type) {
	case graph.BoxData:
		return k.Box(d.Dimensions.X, d.Dimensions.Y, d.Dimensions.Z), nil

	case graph.CylinderData:
		return k.Cylinder(d.Height, d.Radius, cylinderSegments), nil

	case graph.SegmentData:
		dir := d.To.Sub(d.From)
		l := dir.Len()
		if l == 0 {
			return nil, fmt.Errorf("segment has zero length")
		}
		s := k.Cylinder(l, d.Radius, cylinderSegments)
		// Tilt +Z onto the segment direction: pitch about Y, then yaw about Z.
		pitch := math.Acos(math.Max(-1, math.Min(1, dir.Z/l))) * 180 / math.Pi
		yaw := math.Atan2(dir.Y, dir.X) * 180 / math.Pi
		if pitch != 0 || yaw != 0 {
			s = k.Rotate(s, 0, pitch, yaw)
		}
		return k.Translate(s, d.From.X, d.From.Y, d.From.Z), nil

	case graph.ExtrusionData:
		poly := geom.Polygon(d.Profile)
		if poly.SignedArea() < 0 {
			poly = poly.Reverse()
		}
		pts := make([][2]float64, len(poly))
		for i, p := range poly {
			pts[i] = [2]float64{p.X, p.Y}
		}
		s, err := k.Extrude(pts, d.Depth)
		if err != nil {
			return nil, err
		}
		if d.Plane == graph.PlaneYZ {
			// (u, v, w) -> (w, u, v): profile u runs along Y, v along Z.
			s = k.Rotate(s, 90, 0, 90)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported primitive data type %T", data)
	}
}
