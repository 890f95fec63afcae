package stair

import (
	"fmt"
	"strings"

	nerr "github.com/Dante-U/nervi/pkg/errors"
)

// ---------------------------------------------------------------------------
// Type
// ---------------------------------------------------------------------------

// Type is the stair layout.
type Type int

const (
	Straight Type = iota
	LShaped
	UShaped
)

var typeNames = [...]string{
	Straight: "straight",
	LShaped:  "l-shaped",
	UShaped:  "u-shaped",
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is a known layout.
func (t Type) Valid() bool { return t >= 0 && int(t) < len(typeNames) }

// Sections returns the number of straight flights of the layout.
func (t Type) Sections() int { return int(t) + 1 }

// ParseType accepts "straight", "l-shaped"/"l" and "u-shaped"/"u".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "straight":
		return Straight, nil
	case "l-shaped", "l":
		return LShaped, nil
	case "u-shaped", "u":
		return UShaped, nil
	}
	return 0, nerr.Invalid(nerr.ErrCodeInvalidType, "stairs", "type",
		"unknown stair type %q (want straight, l-shaped or u-shaped)", s)
}

// ---------------------------------------------------------------------------
// Mount
// ---------------------------------------------------------------------------

// Mount decides whether the starting floor counts as the first step.
type Mount int

const (
	// Standard treats the floor as the first step: one tread fewer than
	// Flush for the same total rise.
	Standard Mount = iota
	// Flush puts the last tread level with the arrival floor.
	Flush
)

func (m Mount) String() string {
	switch m {
	case Standard:
		return "standard"
	case Flush:
		return "flush"
	}
	return fmt.Sprintf("Mount(%d)", int(m))
}

// Valid reports whether m is Standard or Flush.
func (m Mount) Valid() bool { return m == Standard || m == Flush }

// Offset is the number of rises not carried by a tread: 1 for Standard,
// 0 for Flush.
func (m Mount) Offset() int {
	if m == Standard {
		return 1
	}
	return 0
}

// ParseMount parses "standard" or "flush".
func ParseMount(s string) (Mount, error) {
	switch strings.ToLower(s) {
	case "standard":
		return Standard, nil
	case "flush":
		return Flush, nil
	}
	return 0, nerr.Invalid(nerr.ErrCodeInvalidMount, "stairs", "mount",
		"unknown mount %q (want standard or flush)", s)
}

// ---------------------------------------------------------------------------
// Side
// ---------------------------------------------------------------------------

// Side is where a handrail runs, looking up the flight.
type Side int

const (
	Left Side = iota
	Right
	Center
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Center:
		return "center"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide parses "left", "right" or "center".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "center", "centre":
		return Center, nil
	}
	return 0, nerr.Invalid(nerr.ErrCodeInvalidSides, "handrail", "sides",
		"unknown side %q (want left, right or center)", s)
}

// ParseSides parses a list of side names.
func ParseSides(names []string) ([]Side, error) {
	out := make([]Side, 0, len(names))
	for _, n := range names {
		s, err := ParseSide(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// checkSides rejects unknown and repeated sides. Stairs only accept left
// and right; a standalone handrail may also run down the center.
func checkSides(module string, sides []Side, allowCenter bool) error {
	seen := map[Side]bool{}
	for _, s := range sides {
		switch {
		case s == Center && !allowCenter:
			return nerr.Invalid(nerr.ErrCodeInvalidSides, module, "sides",
				"center rails are not available on %s", module)
		case s != Left && s != Right && s != Center:
			return nerr.Invalid(nerr.ErrCodeInvalidSides, module, "sides", "invalid side %d", int(s))
		case seen[s]:
			return nerr.Invalid(nerr.ErrCodeInvalidSides, module, "sides", "side %s given twice", s)
		}
		seen[s] = true
	}
	return nil
}
