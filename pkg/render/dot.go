// Package render draws a design graph as a node-link diagram: groups,
// transforms and primitives as nodes, child edges as arrows.
//
//	dot := render.ToDOT(g, render.Options{Detailed: true})
//	svg, err := render.SVG(ctx, dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/Dante-U/nervi/pkg/graph"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds primitive dimensions and group metadata to labels.
	Detailed bool
}

// ToDOT converts a design graph to Graphviz DOT. Nodes are emitted in
// label order so the output is stable across runs.
func ToDOT(g *graph.DesignGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("\n")

	nodes := make([]*graph.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Label != nodes[j].Label {
			return nodes[i].Label < nodes[j].Label
		}
		return nodes[i].ID.String() < nodes[j].ID.String()
	})

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.Short(), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}
	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID.Short(), c.Short())
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	name := n.DisplayName()
	if i := strings.LastIndex(name, "/"); i >= 0 && n.Name == "" {
		name = name[i+1:]
	}
	if !detailed {
		return name
	}
	var parts []string
	switch d := n.Data.(type) {
	case graph.BoxData:
		parts = append(parts, fmt.Sprintf("box %.0f x %.0f x %.0f", d.Dimensions.X, d.Dimensions.Y, d.Dimensions.Z))
	case graph.CylinderData:
		parts = append(parts, fmt.Sprintf("cylinder r%.0f h%.0f", d.Radius, d.Height))
	case graph.SegmentData:
		parts = append(parts, fmt.Sprintf("segment r%.0f l%.0f", d.Radius, d.Length()))
	case graph.ExtrusionData:
		parts = append(parts, fmt.Sprintf("extrusion %d pts, %.0f deep (%s)", len(d.Profile), d.Depth, d.Plane))
	case graph.TransformData:
		if d.Translation != nil {
			t := *d.Translation
			parts = append(parts, fmt.Sprintf("at %.0f, %.0f, %.0f", t.X, t.Y, t.Z))
		}
		if d.Rotation != nil && d.Rotation.Z != 0 {
			parts = append(parts, fmt.Sprintf("spin %.1f", d.Rotation.Z))
		}
	case graph.GroupData:
		if d.Role != "" {
			parts = append(parts, d.Role)
		}
		for _, k := range slices.Sorted(maps.Keys(d.Meta)) {
			parts = append(parts, fmt.Sprintf("%s: %s", k, d.Meta[k]))
		}
	}
	if len(parts) == 0 {
		return name
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	switch n.Kind {
	case graph.NodeGroup:
		attrs = append(attrs, "shape=box", "style=\"rounded,bold\"")
	case graph.NodeTransform:
		attrs = append(attrs, "shape=ellipse", "style=dashed", "fontcolor=gray30")
	case graph.NodePrimitive:
		attrs = append(attrs, "shape=box", "style=filled")
		if p, ok := n.Data.(graph.Primitive); ok && p.Mat().Color != "" {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", p.Mat().Color))
		} else {
			attrs = append(attrs, "fillcolor=white")
		}
	}
	return attrs
}

// SVG renders DOT source with the embedded Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
