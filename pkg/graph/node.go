package graph

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // geometric primitive (tread, post, slab)
	NodeTransform                 // spatial transformation (place, attach)
	NodeGroup                     // logical grouping (stair, section, handrail)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// SourceRef records which generator call produced a node.
type SourceRef struct {
	Generator string `json:"generator,omitempty"` // "stairs", "handrail", "spiralStairs", "dsl"
	Line      int    `json:"line,omitempty"`      // DSL line, 0 when built from Go
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID    `json:"id"`
	Kind     NodeKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`  // user-assigned, unique
	Label    string    `json:"label,omitempty"` // generator path, for meshes and debugging
	Source   SourceRef `json:"source"`
	Children []NodeID  `json:"children,omitempty"`
	Anchors  []Anchor  `json:"anchors,omitempty"`
	Data     NodeData  `json:"data"`
}

// DisplayName returns the name, label or short ID, whichever is set first.
func (n *Node) DisplayName() string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Label != "":
		return n.Label
	default:
		return n.ID.Short()
	}
}

// Anchor returns the named anchor of the node.
func (n *Node) Anchor(name string) (Anchor, bool) {
	for _, a := range n.Anchors {
		if a.Name == name {
			return a, true
		}
	}
	return Anchor{}, false
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
