package graph

import (
	"math"
	"strconv"
)

// Well-known anchor names.
const (
	AnchorBottom = "bottom"
	AnchorTop    = "top"
)

// Anchor is a named frame exposed by a node, expressed in the node's own
// coordinate frame. Children attached to it are rotated by Spin about Z and
// then moved to Position.
type Anchor struct {
	Name     string            `json:"name"`
	Position Vec3              `json:"position"`
	Axis     Vec3              `json:"axis"` // outward direction, unit length
	Spin     float64           `json:"spin"` // degrees about Z
	Outline  []Vec2            `json:"outline,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// Frame returns the transform that places a child at the anchor.
func (a Anchor) Frame() TransformData {
	t := TransformData{Translation: ptr(a.Position)}
	if a.Spin != 0 {
		t.Rotation = ptr(Vec3{Z: a.Spin})
	}
	return t
}

// Compose maps an anchor given in a child frame (rotated by spin degrees
// about Z, then moved by offset) into the parent frame.
func (a Anchor) Compose(offset Vec3, spin float64) Anchor {
	out := a
	out.Position = a.Position.RotateZ(spin).Add(offset)
	out.Axis = a.Axis.RotateZ(spin)
	out.Spin = normalizeDeg(a.Spin + spin)
	return out
}

// MetaFloat parses a numeric metadata entry.
func (a Anchor) MetaFloat(key string) (float64, bool) {
	s, ok := a.Meta[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func normalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func ptr[T any](v T) *T { return &v }
