// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling and
// boolean operations behind this interface. The kernel abstraction
// allows swapping backends without changing the rest of the system.
//
// All primitives share one placement convention: boxes have their minimum
// corner at the origin, cylinders and extrusions stand on the XY plane
// and grow along +Z.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling behind this interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	// Extrude extrudes a closed, counter-clockwise XY profile from z=0 to
	// z=height.
	Extrude(profile [][2]float64, height float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Option configures a kernel backend.
type Option func(*Options)

// Options holds backend settings shared by all kernels.
type Options struct {
	MeshCells int // marching cubes resolution along the longest axis (sdfx)
	Segments  int // circular segments (manifold)
}

// DefaultOptions returns the backend defaults.
func DefaultOptions() Options {
	return Options{MeshCells: 200, Segments: 32}
}

// WithMeshCells sets the marching cubes resolution.
func WithMeshCells(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MeshCells = n
		}
	}
}

// WithSegments sets the circular segment count.
func WithSegments(n int) Option {
	return func(o *Options) {
		if n >= 3 {
			o.Segments = n
		}
	}
}

// Apply resolves opts over the defaults.
func Apply(opts ...Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
