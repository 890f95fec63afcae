// Package bim computes the metadata record emitted alongside generated
// geometry: name, IFC class, volume, weight and cost.
package bim

import (
	"fmt"
	"sort"

	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/units"
)

// IFC classes used by the generators.
const (
	IfcStair       = "IfcStair"
	IfcStairFlight = "IfcStairFlight"
	IfcSlab        = "IfcSlab"
	IfcRailing     = "IfcRailing"
	IfcColumn      = "IfcColumn"
)

// KeyIFCClass is the meta key holding an element's IFC class.
const KeyIFCClass = "ifc_class"

// Tag returns the group meta marking a sub-element with an IFC class.
func Tag(ifcClass string) map[string]string {
	return map[string]string{KeyIFCClass: ifcClass}
}

// Info is the metadata of one generated element.
type Info struct {
	Name     string  `json:"name"`
	IFCClass string  `json:"ifc_class"`
	VolumeM3 float64 `json:"volume_m3"`
	WeightKg float64 `json:"weight_kg"`
	Cost     float64 `json:"cost"`
	Material string  `json:"material,omitempty"` // "family/name" of the dominant material
}

// Pairs returns the record as ordered key/value string pairs.
func (i Info) Pairs() [][2]string {
	return [][2]string{
		{"name", i.Name},
		{KeyIFCClass, i.IFCClass},
		{"volume", fmt.Sprintf("%.3f m3", i.VolumeM3)},
		{"weight", fmt.Sprintf("%.1f kg", i.WeightKg)},
		{"cost", fmt.Sprintf("%.2f", i.Cost)},
		{"material", i.Material},
	}
}

// Meta returns the pairs as a map, the shape stored on group nodes.
func (i Info) Meta() map[string]string {
	m := make(map[string]string, 6)
	for _, p := range i.Pairs() {
		m[p[0]] = p[1]
	}
	return m
}

// Summarize walks the subtree under root and accumulates the volume,
// weight and cost of every primitive. Primitives reachable along several
// paths are counted once per path, matching what gets tessellated.
func Summarize(g *graph.DesignGraph, root graph.NodeID, name, ifcClass string) Info {
	info := Info{Name: name, IFCClass: ifcClass}
	byMaterial := map[string]float64{}

	var visit func(id graph.NodeID, depth int)
	visit = func(id graph.NodeID, depth int) {
		n := g.Get(id)
		if n == nil || depth > 1024 {
			return
		}
		if p, ok := n.Data.(graph.Primitive); ok && n.Kind == graph.NodePrimitive {
			v := units.MM3ToM3(p.Volume())
			m := p.Mat()
			info.VolumeM3 += v
			info.WeightKg += v * m.Density
			info.Cost += v * m.Price
			byMaterial[m.Family.String()+"/"+m.Name] += v
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)

	keys := make([]string, 0, len(byMaterial))
	for k := range byMaterial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := -1.0
	for _, k := range keys {
		if byMaterial[k] > best {
			best = byMaterial[k]
			info.Material = k
		}
	}
	return info
}
