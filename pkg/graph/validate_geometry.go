package graph

import (
	"fmt"

	"github.com/Dante-U/nervi/pkg/geom"
)

// MinFeatureSize is the smallest dimension (mm) a part can have before it
// is reported as too thin to manufacture.
const MinFeatureSize = 1.0

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateNonZeroDimensions(g)...)
	errs = append(errs, validateProfiles(g)...)

	warnings = append(warnings, validateThinParts(g)...)

	return errs, warnings
}

// dims returns the named extents that must be positive for a primitive.
func dims(d NodeData) (names []string, values []float64) {
	switch p := d.(type) {
	case BoxData:
		return []string{"X", "Y", "Z"}, []float64{p.Dimensions.X, p.Dimensions.Y, p.Dimensions.Z}
	case CylinderData:
		return []string{"radius", "height"}, []float64{p.Radius, p.Height}
	case SegmentData:
		return []string{"radius", "length"}, []float64{p.Radius, p.Length()}
	case ExtrusionData:
		return []string{"depth"}, []float64{p.Depth}
	}
	return nil, nil
}

// validateNonZeroDimensions checks that every primitive extent is positive.
func validateNonZeroDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		names, values := dims(node.Data)
		for i, v := range values {
			if v <= 0 {
				errs = append(errs, ValidationError{
					NodeID: node.ID,
					Message: fmt.Sprintf("%s dimension %s is %.4f, must be positive",
						node.Data.(Primitive).Kind(), names[i], v),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateProfiles checks that every extrusion profile is a simple polygon.
func validateProfiles(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		ed, ok := node.Data.(ExtrusionData)
		if !ok {
			continue
		}
		if !geom.Polygon(ed.Profile).IsSimple() {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("extrusion profile with %d vertices is not a simple polygon", len(ed.Profile)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateThinParts warns about positive extents below MinFeatureSize.
func validateThinParts(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		names, values := dims(node.Data)
		for i, v := range values {
			if v > 0 && v < MinFeatureSize {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("%s %s is %.3fmm, thinner than %.0fmm", node.DisplayName(), names[i], v, MinFeatureSize),
				})
			}
		}
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: Material warnings
// ---------------------------------------------------------------------------

// validateMaterial runs all Tier 3 material advisory checks.
func validateMaterial(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, validateResolvedMaterial(g)...)
	return warnings
}

// validateResolvedMaterial warns when a part has no named material or no
// density, which leaves its weight and cost metadata at zero.
func validateResolvedMaterial(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		p, ok := node.Data.(Primitive)
		if !ok {
			continue
		}
		m := p.Mat()
		switch {
		case m.Name == "":
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("%s has no material; weight and cost will be zero", node.DisplayName()),
			})
		case m.Density <= 0:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("%s material %s/%s has no density; weight will be zero", node.DisplayName(), m.Family, m.Name),
			})
		}
	}

	return warnings
}
