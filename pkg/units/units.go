// Package units holds the meter/millimeter conversions, right-triangle
// helpers and numeric validators shared by every generator.
//
// Public APIs take building dimensions in meters (width, total rise) and
// component dimensions in millimeters (rise, run, thickness). Field names
// carry the unit as a suffix (WidthM, RiseMM) and conversion happens once,
// at function entry. Angles are in degrees throughout.
package units

import (
	"math"

	nerr "github.com/Dante-U/nervi/pkg/errors"
)

// MaxPlausibleMeters is the unit-confusion guard: building-scale values
// given in meters never reach it, millimeter values almost always do.
const MaxPlausibleMeters = 100.0

// Epsilon is the tolerance used when comparing derived lengths.
const Epsilon = 1e-9

// MToMM converts meters to millimeters.
func MToMM(m float64) float64 { return m * 1000 }

// MMToM converts millimeters to meters.
func MMToM(mm float64) float64 { return mm / 1000 }

// MM3ToM3 converts a volume in cubic millimeters to cubic meters.
func MM3ToM3(v float64) float64 { return v / 1e9 }

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Round rounds half away from zero.
func Round(v float64) float64 { return math.Round(v) }

// ---------------------------------------------------------------------------
// Right-triangle helpers
// ---------------------------------------------------------------------------

// Hyp returns the hypotenuse of a right triangle.
func Hyp(adj, opp float64) float64 { return math.Hypot(adj, opp) }

// AdjOppToAng returns the angle whose adjacent and opposite sides are given.
func AdjOppToAng(adj, opp float64) float64 { return Deg(math.Atan2(opp, adj)) }

// AdjHypToAng returns the angle from the adjacent side and hypotenuse.
func AdjHypToAng(adj, hyp float64) float64 { return Deg(math.Acos(adj / hyp)) }

// OppHypToAng returns the angle from the opposite side and hypotenuse.
func OppHypToAng(opp, hyp float64) float64 { return Deg(math.Asin(opp / hyp)) }

// AngOppToHyp returns the hypotenuse from the angle and its opposite side.
func AngOppToHyp(ang, opp float64) float64 { return opp / math.Sin(Rad(ang)) }

// AngAdjToHyp returns the hypotenuse from the angle and its adjacent side.
func AngAdjToHyp(ang, adj float64) float64 { return adj / math.Cos(Rad(ang)) }

// AngHypToOpp projects a hypotenuse onto the side opposite the angle.
func AngHypToOpp(ang, hyp float64) float64 { return hyp * math.Sin(Rad(ang)) }

// AngHypToAdj projects a hypotenuse onto the side adjacent to the angle.
func AngHypToAdj(ang, hyp float64) float64 { return hyp * math.Cos(Rad(ang)) }

// AngAdjToOpp returns the opposite side from the angle and adjacent side.
func AngAdjToOpp(ang, adj float64) float64 { return adj * math.Tan(Rad(ang)) }

// AngOppToAdj returns the adjacent side from the angle and opposite side.
func AngOppToAdj(ang, opp float64) float64 { return opp / math.Tan(Rad(ang)) }

// ---------------------------------------------------------------------------
// Validators
// ---------------------------------------------------------------------------

// CheckMeters validates a building-scale length given in meters: it must be
// positive and below MaxPlausibleMeters.
func CheckMeters(module, param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, module, param,
			"must be a positive length in meters, got %v", v)
	}
	if v >= MaxPlausibleMeters {
		return nerr.Invalid(nerr.ErrCodeUnitConfusion, module, param,
			"%v is not a plausible length in meters (millimeters given?)", v)
	}
	return nil
}

// CheckPositive validates a strictly positive value.
func CheckPositive(module, param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, module, param,
			"must be positive, got %v", v)
	}
	return nil
}

// CheckNonNegative validates a value that may be zero.
func CheckNonNegative(module, param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, module, param,
			"must not be negative, got %v", v)
	}
	return nil
}

// CheckRange validates lo <= v <= hi.
func CheckRange(module, param string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, module, param,
			"must be within [%v, %v], got %v", lo, hi, v)
	}
	return nil
}

// ApproxEqual reports whether a and b differ by at most tol.
func ApproxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
