package graph

import (
	"fmt"

	"github.com/Dante-U/nervi/pkg/material"
)

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	Material MaterialSpec `json:"material"` // default material for DSL parts
	Units    string       `json:"units"`    // "mm" (only option)
}

// DesignGraph is the top-level data structure produced by a generator or
// by DSL evaluation. Each evaluation produces a new graph; consumers
// (tessellation, validation, rendering) never mutate it.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			Material: MaterialSpec{Family: material.Wood},
			Units:    "mm",
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// RemoveRoot drops id from the roots, used when a root gets re-parented.
func (g *DesignGraph) RemoveRoot(id NodeID) {
	out := g.Roots[:0]
	for _, r := range g.Roots {
		if r != id {
			out = append(out, r)
		}
	}
	g.Roots = out
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parts returns all primitive nodes in the graph.
func (g *DesignGraph) Parts() []*Node {
	var parts []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodePrimitive {
			parts = append(parts, n)
		}
	}
	return parts
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}

// Attach places child at the named anchor of parent. It inserts a
// transform node carrying the anchor frame, appends it to the parent's
// children and returns it. The child stops being a root if it was one.
func (g *DesignGraph) Attach(parent NodeID, anchor string, child NodeID) (*Node, error) {
	p := g.Nodes[parent]
	if p == nil {
		return nil, fmt.Errorf("graph: attach: parent %s does not exist", parent.Short())
	}
	c := g.Nodes[child]
	if c == nil {
		return nil, fmt.Errorf("graph: attach: child %s does not exist", child.Short())
	}
	a, ok := p.Anchor(anchor)
	if !ok {
		return nil, fmt.Errorf("graph: attach: node %q has no anchor %q", p.DisplayName(), anchor)
	}
	t := &Node{
		ID:       NewNodeID(fmt.Sprintf("attach/%s/%s/%s", parent, anchor, child)),
		Kind:     NodeTransform,
		Label:    fmt.Sprintf("%s@%s", c.DisplayName(), anchor),
		Source:   c.Source,
		Children: []NodeID{child},
		Data:     a.Frame(),
	}
	g.AddNode(t)
	p.Children = append(p.Children, t.ID)
	g.RemoveRoot(child)
	return t, nil
}

// Merge copies every node of other into g and appends its roots. It fails
// without modifying g when a node ID or a name is already taken.
func (g *DesignGraph) Merge(other *DesignGraph) error {
	for id, n := range other.Nodes {
		if _, dup := g.Nodes[id]; dup {
			return fmt.Errorf("graph: merge: node %s (%s) already exists", id.Short(), n.DisplayName())
		}
		if n.Name != "" {
			if _, dup := g.NameIndex[n.Name]; dup {
				return fmt.Errorf("graph: merge: name %q already in use", n.Name)
			}
		}
	}
	for _, n := range other.Nodes {
		g.AddNode(n)
	}
	g.Roots = append(g.Roots, other.Roots...)
	return nil
}

// Walk visits every node reachable from the roots depth-first, passing the
// accumulated list of transforms from the outermost to the innermost.
// Returning false from fn skips the node's children.
func (g *DesignGraph) Walk(fn func(n *Node, frames []TransformData) bool) {
	var visit func(id NodeID, frames []TransformData, depth int)
	visit = func(id NodeID, frames []TransformData, depth int) {
		n := g.Nodes[id]
		if n == nil || depth > maxWalkDepth {
			return
		}
		if !fn(n, frames) {
			return
		}
		if td, ok := n.Data.(TransformData); ok && n.Kind == NodeTransform {
			frames = append(frames[:len(frames):len(frames)], td)
		}
		for _, c := range n.Children {
			visit(c, frames, depth+1)
		}
	}
	for _, r := range g.Roots {
		visit(r, nil, 0)
	}
}

// maxWalkDepth bounds Walk on graphs that failed cycle validation.
const maxWalkDepth = 1024

// ToWorld maps a point through frames listed outermost first.
func ToWorld(p Vec3, frames []TransformData) Vec3 {
	for i := len(frames) - 1; i >= 0; i-- {
		p = frames[i].Apply(p)
	}
	return p
}
