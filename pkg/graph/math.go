package graph

import (
	"math"

	"github.com/Dante-U/nervi/pkg/geom"
)

func circleArea(r float64) float64 { return math.Pi * r * r }

func polygonArea(p []Vec2) float64 { return geom.Polygon(p).Area() }

// rotateEuler rotates p about X, then Y, then Z by the given degrees.
func rotateEuler(p Vec3, deg Vec3) Vec3 {
	if deg.X != 0 {
		s, c := math.Sincos(deg.X * math.Pi / 180)
		p = Vec3{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
	}
	if deg.Y != 0 {
		s, c := math.Sincos(deg.Y * math.Pi / 180)
		p = Vec3{X: p.X*c + p.Z*s, Y: p.Y, Z: -p.X*s + p.Z*c}
	}
	if deg.Z != 0 {
		p = p.RotateZ(deg.Z)
	}
	return p
}
