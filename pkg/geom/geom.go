// Package geom provides the small amount of vector and polygon math the
// generators need before geometry is handed to a kernel: 2D/3D vectors,
// polygon area and simplicity, arcs, annular sectors and helix sampling.
package geom

import (
	"math"
)

// Vec2 is a 2D vector (profile coordinates, mm).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a 3D vector (world coordinates, mm).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Len returns the Euclidean length.
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// RotateZ rotates v counter-clockwise about the Z axis by deg degrees.
func (v Vec3) RotateZ(deg float64) Vec3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
}

// Polygon is a closed 2D outline; the last vertex connects to the first.
type Polygon []Vec2

// SignedArea returns the shoelace area, positive for counter-clockwise.
func (p Polygon) SignedArea() float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].Cross(p[j])
	}
	return a / 2
}

// Area returns the absolute enclosed area.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Bounds returns the axis-aligned bounding rectangle.
func (p Polygon) Bounds() (min, max Vec2) {
	if len(p) == 0 {
		return Vec2{}, Vec2{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// IsSimple reports whether the polygon has at least three distinct
// vertices, non-zero area, and no two non-adjacent edges that touch.
func (p Polygon) IsSimple() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if p[i] == p[(i+1)%n] {
			return false
		}
	}
	if math.Abs(p.SignedArea()) < 1e-12 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1, b2 := p[j], p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

// Reverse returns the polygon with its winding flipped.
func (p Polygon) Reverse() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

func orient(a, b, c Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, c Vec2) bool {
	return math.Min(a.X, b.X)-1e-12 <= c.X && c.X <= math.Max(a.X, b.X)+1e-12 &&
		math.Min(a.Y, b.Y)-1e-12 <= c.Y && c.Y <= math.Max(a.Y, b.Y)+1e-12
}

// segmentsIntersect reports whether closed segments a1a2 and b1b2 share a point.
func segmentsIntersect(a1, a2, b1, b2 Vec2) bool {
	const eps = 1e-9
	d1 := orient(b1, b2, a1)
	d2 := orient(b1, b2, a2)
	d3 := orient(a1, a2, b1)
	d4 := orient(a1, a2, b2)
	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}
	switch {
	case math.Abs(d1) <= eps && onSegment(b1, b2, a1):
		return true
	case math.Abs(d2) <= eps && onSegment(b1, b2, a2):
		return true
	case math.Abs(d3) <= eps && onSegment(a1, a2, b1):
		return true
	case math.Abs(d4) <= eps && onSegment(a1, a2, b2):
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

// Arc samples segments+1 points on a circle of radius r centred on the
// origin, from startDeg sweeping sweepDeg (negative sweeps run clockwise).
func Arc(r, startDeg, sweepDeg float64, segments int) []Vec2 {
	if segments < 1 {
		segments = 1
	}
	pts := make([]Vec2, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := (startDeg + sweepDeg*float64(i)/float64(segments)) * math.Pi / 180
		pts = append(pts, Vec2{r * math.Cos(a), r * math.Sin(a)})
	}
	return pts
}

// AnnularSector returns the counter-clockwise outline of the ring slice
// between inner and outer radius. An inner radius of zero yields a pie slice.
func AnnularSector(inner, outer, startDeg, sweepDeg float64, segments int) Polygon {
	if sweepDeg < 0 {
		startDeg += sweepDeg
		sweepDeg = -sweepDeg
	}
	outerArc := Arc(outer, startDeg, sweepDeg, segments)
	poly := make(Polygon, 0, 2*len(outerArc))
	poly = append(poly, outerArc...)
	if inner <= 0 {
		return append(poly, Vec2{})
	}
	innerArc := Arc(inner, startDeg, sweepDeg, segments)
	for i := len(innerArc) - 1; i >= 0; i-- {
		poly = append(poly, innerArc[i])
	}
	return poly
}

// Helix samples a helix of the given radius. Point k (0 <= k <= steps*samples)
// sits at angle k*stepDeg/samples and height z0 + k*stepRise/samples.
func Helix(radius, stepDeg, stepRise, z0 float64, steps, samples int) []Vec3 {
	if samples < 1 {
		samples = 1
	}
	n := steps * samples
	pts := make([]Vec3, 0, n+1)
	for k := 0; k <= n; k++ {
		t := float64(k) / float64(samples)
		a := t * stepDeg * math.Pi / 180
		pts = append(pts, Vec3{
			X: radius * math.Cos(a),
			Y: radius * math.Sin(a),
			Z: z0 + t*stepRise,
		})
	}
	return pts
}
