package kernel

import (
	"bytes"
	"strings"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{0, 0, 0},
		maxBB: [3]float64{x, y, z},
	}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) Extrude(profile [][2]float64, height float64) (Solid, error) {
	s := &stubSolid{}
	for i, p := range profile {
		for j := 0; j < 2; j++ {
			if i == 0 || p[j] < s.minBB[j] {
				s.minBB[j] = p[j]
			}
			if i == 0 || p[j] > s.maxBB[j] {
				s.maxBB[j] = p[j]
			}
		}
	}
	s.maxBB[2] = height
	return s, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid       { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(1, 1, 1)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}

func TestStubKernelExtrudeBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Extrude([][2]float64{{0, 0}, {250, 0}, {250, 170}}, 1000)
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} || max != [3]float64{250, 170, 1000} {
		t.Errorf("Extrude bounds = %v %v", min, max)
	}
}

// --- Options ---

func TestApplyOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want Options
	}{
		{"defaults", nil, Options{MeshCells: 200, Segments: 32}},
		{"cells", []Option{WithMeshCells(64)}, Options{MeshCells: 64, Segments: 32}},
		{"ignored invalid", []Option{WithMeshCells(0), WithSegments(2)}, Options{MeshCells: 200, Segments: 32}},
		{"segments", []Option{WithSegments(12)}, Options{MeshCells: 200, Segments: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.opts...); got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// --- Bounds / STL ---

func triangleMesh() *Mesh {
	return &Mesh{
		Vertices: []float32{0, 0, 0, 10, 0, 0, 0, 20, 5},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
		PartName: "tread-0",
	}
}

func TestMeshBounds(t *testing.T) {
	min, max := triangleMesh().Bounds()
	if min != [3]float32{0, 0, 0} || max != [3]float32{10, 20, 5} {
		t.Errorf("Bounds() = %v %v", min, max)
	}
	if min, max := (&Mesh{}).Bounds(); min != max {
		t.Errorf("empty Bounds() = %v %v", min, max)
	}
}

func TestWriteSTL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, []*Mesh{triangleMesh()}); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"solid tread-0\n",
		"  facet normal 0 0 1\n",
		"      vertex 0 20 5\n",
		"endsolid tread-0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("STL output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "endfacet"); n != 1 {
		t.Errorf("facet count = %d, want 1", n)
	}
}

func TestWriteSTLBadIndex(t *testing.T) {
	m := triangleMesh()
	m.Indices = []uint32{0, 1, 9}
	if err := WriteSTL(&bytes.Buffer{}, []*Mesh{m}); err == nil {
		t.Error("expected out of range error")
	}
}
