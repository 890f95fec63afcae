package graph

import "github.com/Dante-U/nervi/pkg/material"

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialSpec is the resolved material of a primitive. Density and Price
// feed the weight and cost metadata; Color drives rendering.
type MaterialSpec struct {
	Family  material.Family `json:"family"`
	Name    string          `json:"name,omitempty"`    // e.g. "oak", "concrete"
	Density float64         `json:"density,omitempty"` // kg/m3
	Price   float64         `json:"price,omitempty"`   // per m3
	Color   string          `json:"color,omitempty"`   // #rrggbb
}

// SpecFrom builds a MaterialSpec from a catalog entry.
func SpecFrom(m material.Material) MaterialSpec {
	return MaterialSpec{
		Family:  m.Family,
		Name:    m.Name,
		Density: m.Density,
		Price:   m.Price,
		Color:   m.Color,
	}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox       PrimitiveKind = iota // rectangular solid
	PrimCylinder                       // upright cylinder
	PrimSegment                        // cylinder between two points
	PrimExtrusion                      // extruded 2D profile
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	case PrimSegment:
		return "segment"
	case PrimExtrusion:
		return "extrusion"
	default:
		return "unknown"
	}
}

// Primitive is implemented by every primitive payload.
type Primitive interface {
	NodeData
	Kind() PrimitiveKind
	Mat() MaterialSpec
	// Volume returns the solid volume in mm3.
	Volume() float64
}

// BoxData is a rectangular solid with its minimum corner at the origin.
type BoxData struct {
	Dimensions Vec3         `json:"dimensions"` // x (width) by y (run) by z (height), mm
	Material   MaterialSpec `json:"material"`
}

func (BoxData) nodeData()           {}
func (BoxData) Kind() PrimitiveKind { return PrimBox }
func (d BoxData) Mat() MaterialSpec { return d.Material }
func (d BoxData) Volume() float64   { return d.Dimensions.X * d.Dimensions.Y * d.Dimensions.Z }

// CylinderData is an upright cylinder standing on the XY plane, centered
// on the Z axis.
type CylinderData struct {
	Radius   float64      `json:"radius"` // mm
	Height   float64      `json:"height"` // mm
	Material MaterialSpec `json:"material"`
}

func (CylinderData) nodeData()           {}
func (CylinderData) Kind() PrimitiveKind { return PrimCylinder }
func (d CylinderData) Mat() MaterialSpec { return d.Material }
func (d CylinderData) Volume() float64   { return circleArea(d.Radius) * d.Height }

// SegmentData is a cylinder of the given radius spanning From to To.
// Rails and balusters are segments.
type SegmentData struct {
	From     Vec3         `json:"from"`
	To       Vec3         `json:"to"`
	Radius   float64      `json:"radius"`
	Material MaterialSpec `json:"material"`
}

func (SegmentData) nodeData()           {}
func (SegmentData) Kind() PrimitiveKind { return PrimSegment }
func (d SegmentData) Mat() MaterialSpec { return d.Material }
func (d SegmentData) Length() float64   { return d.To.Sub(d.From).Len() }
func (d SegmentData) Volume() float64   { return circleArea(d.Radius) * d.Length() }

// Plane selects the plane a profile is drawn in.
type Plane int

const (
	// PlaneXY profiles are (x, y) pairs extruded along +Z.
	PlaneXY Plane = iota
	// PlaneYZ profiles are (y, z) pairs extruded along +X. Stair flights and
	// parapets are drawn in this plane.
	PlaneYZ
)

func (p Plane) String() string {
	if p == PlaneYZ {
		return "YZ"
	}
	return "XY"
}

// ExtrusionData is a closed 2D profile extruded by Depth.
type ExtrusionData struct {
	Profile  []Vec2       `json:"profile"`
	Depth    float64      `json:"depth"` // mm
	Plane    Plane        `json:"plane"`
	Material MaterialSpec `json:"material"`
}

func (ExtrusionData) nodeData()           {}
func (ExtrusionData) Kind() PrimitiveKind { return PrimExtrusion }
func (d ExtrusionData) Mat() MaterialSpec { return d.Material }
func (d ExtrusionData) Volume() float64 {
	return polygonArea(d.Profile) * d.Depth
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a node's
// children: rotation first (X, then Y, then Z, degrees), then translation.
// Created by (place ...) and by anchor attachment.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// Apply maps a point from the child frame into the parent frame.
func (t TransformData) Apply(p Vec3) Vec3 {
	if t.Rotation != nil {
		p = rotateEuler(p, *t.Rotation)
	}
	if t.Translation != nil {
		p = p.Add(*t.Translation)
	}
	return p
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping: a whole stair, one of its
// sections or landings, a handrail, or a user assembly.
type GroupData struct {
	Description string            `json:"description,omitempty"`
	Role        string            `json:"role,omitempty"` // "stairs", "section", "landing", "handrail", ...
	Meta        map[string]string `json:"meta,omitempty"` // BIM pairs
}

func (GroupData) nodeData() {}
