package graph

import (
	"strings"
	"testing"

	"github.com/Dante-U/nervi/pkg/material"
)

// ---------------------------------------------------------------------------
// Test helpers for ValidationResult
// ---------------------------------------------------------------------------

// resultHasError returns true if result.Errors contains at least one entry
// whose Message contains substr.
func resultHasError(r ValidationResult, substr string) bool {
	for _, e := range r.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// resultHasWarning returns true if result.Warnings contains at least one entry
// whose Message contains substr.
func resultHasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// singlePart wraps one primitive payload in a rooted group.
func singlePart(data NodeData) *DesignGraph {
	g := New()
	partID := NewNodeID("part")
	groupID := NewNodeID("group/test")
	g.AddNode(&Node{ID: partID, Kind: NodePrimitive, Label: "part", Data: data})
	g.AddNode(&Node{ID: groupID, Kind: NodeGroup, Name: "group", Children: []NodeID{partID}, Data: GroupData{}})
	g.AddRoot(groupID)
	return g
}

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation tests
// ---------------------------------------------------------------------------

func TestValidateAll_ValidFlight(t *testing.T) {
	r := ValidateAll(buildValidFlight())
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Errorf("errors = %v, warnings = %v", r.Errors, r.Warnings)
	}
}

func TestValidateAll_NonPositiveDimensions(t *testing.T) {
	tests := []struct {
		name string
		data NodeData
		want string
	}{
		{"zero box X", BoxData{Dimensions: Vec3{X: 0, Y: 250, Z: 40}, Material: oak}, "box dimension X is 0.0000"},
		{"negative box Z", BoxData{Dimensions: Vec3{X: 1000, Y: 250, Z: -40}, Material: oak}, "box dimension Z is -40.0000"},
		{"zero cylinder radius", CylinderData{Radius: 0, Height: 900, Material: oak}, "cylinder dimension radius"},
		{"zero-length segment", SegmentData{From: Vec3{Z: 900}, To: Vec3{Z: 900}, Radius: 20, Material: oak}, "segment dimension length"},
		{"zero extrusion depth", ExtrusionData{Profile: []Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, Depth: 0, Material: oak}, "extrusion dimension depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateAll(singlePart(tt.data))
			if !resultHasError(r, tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, r.Errors)
			}
		})
	}
}

func TestValidateAll_SelfIntersectingProfile(t *testing.T) {
	bowtie := ExtrusionData{
		Profile:  []Vec2{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 100}},
		Depth:    1000,
		Plane:    PlaneYZ,
		Material: oak,
	}
	r := ValidateAll(singlePart(bowtie))
	if !resultHasError(r, "not a simple polygon") {
		t.Errorf("expected profile error, got %v", r.Errors)
	}
}

func TestValidateAll_ThinPart(t *testing.T) {
	r := ValidateAll(singlePart(BoxData{Dimensions: Vec3{X: 1000, Y: 250, Z: 0.5}, Material: oak}))
	if len(r.Errors) != 0 {
		t.Errorf("thin part should not be an error: %v", r.Errors)
	}
	if !resultHasWarning(r, "thinner than 1mm") {
		t.Errorf("expected thin part warning, got %v", r.Warnings)
	}
}

// ---------------------------------------------------------------------------
// Tier 3: Material warnings
// ---------------------------------------------------------------------------

func TestValidateAll_MaterialWarnings(t *testing.T) {
	tests := []struct {
		name string
		mat  MaterialSpec
		want string
	}{
		{"no material", MaterialSpec{Family: material.Metal}, "has no material"},
		{"no density", MaterialSpec{Family: material.Masonry, Name: "adobe"}, "masonry/adobe has no density"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateAll(singlePart(CylinderData{Radius: 20, Height: 900, Material: tt.mat}))
			if len(r.Errors) != 0 {
				t.Errorf("material findings must not be errors: %v", r.Errors)
			}
			if !resultHasWarning(r, tt.want) {
				t.Errorf("expected warning %q, got %v", tt.want, r.Warnings)
			}
		})
	}
}

func TestValidateAll_SplitsTier1Warnings(t *testing.T) {
	g := buildValidFlight()
	g.AddNode(&Node{
		ID: NewNodeID("orphan"), Kind: NodePrimitive, Name: "orphan",
		Data: BoxData{Dimensions: Vec3{X: 10, Y: 10, Z: 10}, Material: oak},
	})
	r := ValidateAll(g)
	if len(r.Errors) != 0 {
		t.Errorf("orphan must not be an error: %v", r.Errors)
	}
	if !resultHasWarning(r, "orphan") {
		t.Errorf("expected orphan warning, got %v", r.Warnings)
	}
}
