package graph

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dante-U/nervi/pkg/geom"
)

// Vec2 and Vec3 are the geometry vectors used in node payloads (mm).
type (
	Vec2 = geom.Vec2
	Vec3 = geom.Vec3
)

// nodeNamespace seeds the name-based node IDs.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://nervi.dev/graph/node"))

// NodeID uniquely identifies a node. IDs are derived from the generator
// path of the node, so rebuilding the same design yields the same IDs.
type NodeID uuid.UUID

// NewNodeID returns the deterministic ID for a generator path such as
// "stairs/main/section-1/tread-3".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(nodeNamespace, []byte(path)))
}

// IsZero reports whether the ID is unset.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// String returns the canonical UUID form.
func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 6 bytes in hex, for messages.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:6])
}

// MarshalText implements encoding.TextMarshaler so IDs can key JSON maps.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return fmt.Errorf("graph: invalid node id %q: %w", b, err)
	}
	*id = NodeID(u)
	return nil
}
