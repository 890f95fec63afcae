package graph

// Builder adds generator output to a graph. Every node it creates gets a
// deterministic ID derived from its slash-separated path, so building the
// same input twice yields identical graphs.
type Builder struct {
	G      *DesignGraph
	Prefix string
	Source SourceRef
}

// NewBuilder returns a builder rooted at prefix.
func NewBuilder(g *DesignGraph, prefix, generator string) *Builder {
	return &Builder{G: g, Prefix: prefix, Source: SourceRef{Generator: generator}}
}

// Sub returns a builder for the child path prefix/name.
func (b *Builder) Sub(name string) *Builder {
	return &Builder{G: b.G, Prefix: b.Path(name), Source: b.Source}
}

// Path joins name onto the prefix. An empty name is the prefix itself.
func (b *Builder) Path(name string) string {
	switch {
	case name == "":
		return b.Prefix
	case b.Prefix == "":
		return name
	}
	return b.Prefix + "/" + name
}

func (b *Builder) add(n *Node) *Node {
	n.Source = b.Source
	b.G.AddNode(n)
	return n
}

// Part adds a primitive.
func (b *Builder) Part(name string, data Primitive) NodeID {
	p := b.Path(name)
	return b.add(&Node{ID: NewNodeID(p), Kind: NodePrimitive, Label: p, Data: data}).ID
}

// Transform adds a transform node over children.
func (b *Builder) Transform(name string, td TransformData, children ...NodeID) NodeID {
	p := b.Path(name)
	return b.add(&Node{ID: NewNodeID(p), Kind: NodeTransform, Label: p, Children: children, Data: td}).ID
}

// Placed adds a primitive rotated by spin degrees about Z and moved to at.
// It returns the transform node.
func (b *Builder) Placed(name string, at Vec3, spin float64, data Primitive) NodeID {
	part := b.Part(name, data)
	td := TransformData{Translation: ptr(at)}
	if spin != 0 {
		td.Rotation = ptr(Vec3{Z: spin})
	}
	return b.Transform(name+"@", td, part)
}

// Group adds a group node.
func (b *Builder) Group(name string, data GroupData, children ...NodeID) *Node {
	p := b.Path(name)
	return b.add(&Node{ID: NewNodeID(p), Kind: NodeGroup, Label: p, Children: children, Data: data})
}

// Root adds a named group and registers it as a graph root.
func (b *Builder) Root(name string, data GroupData, children ...NodeID) *Node {
	p := b.Path("")
	n := b.add(&Node{ID: NewNodeID(p), Kind: NodeGroup, Name: name, Label: p, Children: children, Data: data})
	b.G.AddRoot(n.ID)
	return n
}
