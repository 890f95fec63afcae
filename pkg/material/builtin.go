package material

// builtin holds the reference properties used when no catalog file
// overrides them. Prices are indicative per cubic meter.
var builtin = []Material{
	{
		Family: Wood, Name: "oak", Default: true,
		Density: 710, CompressiveStrength: 50, Elasticity: 12, StrengthClass: "D30",
		Applications: []string{"stair treads", "handrails", "flooring"},
		Description:  "European oak, hard and durable hardwood",
		Price:        2400, Color: "#a0703c",
	},
	{
		Family: Wood, Name: "pine",
		Density: 510, CompressiveStrength: 40, Elasticity: 11, StrengthClass: "C24",
		Applications: []string{"framing", "stair stringers"},
		Description:  "Scots pine, general structural softwood",
		Price:        650, Color: "#e3c08d",
	},
	{
		Family: Wood, Name: "beech",
		Density: 720, CompressiveStrength: 53, Elasticity: 14, StrengthClass: "D35",
		Applications: []string{"stair treads", "furniture"},
		Description:  "European beech, fine-grained hardwood",
		Price:        1500, Color: "#c79a6b",
	},
	{
		Family: Metal, Name: "steel", Default: true,
		Density: 7850, CompressiveStrength: 250, Elasticity: 210, StrengthClass: "S235",
		Applications: []string{"stringers", "balusters", "spiral columns"},
		Description:  "Structural carbon steel",
		Price:        9000, Color: "#6e7378",
	},
	{
		Family: Metal, Name: "stainless",
		Density: 8000, CompressiveStrength: 215, Elasticity: 193, StrengthClass: "1.4301",
		Applications: []string{"handrails", "exterior stairs"},
		Description:  "Austenitic stainless steel",
		Price:        28000, Color: "#b8bcc0",
	},
	{
		Family: Metal, Name: "aluminium",
		Density: 2700, CompressiveStrength: 160, Elasticity: 69, StrengthClass: "6061-T6",
		Applications: []string{"handrails", "light treads"},
		Description:  "Aluminium alloy 6061",
		Price:        12000, Color: "#d0d5d9",
	},
	{
		Family: Masonry, Name: "concrete", Default: true,
		Density: 2400, CompressiveStrength: 25, Elasticity: 31, StrengthClass: "C25/30",
		Applications: []string{"stair flights", "landings", "parapets"},
		Description:  "Reinforced cast-in-place concrete",
		Price:        180, Color: "#a9a9a4",
	},
	{
		Family: Masonry, Name: "brick",
		Density: 1900, CompressiveStrength: 15, Elasticity: 5, StrengthClass: "M10",
		Applications: []string{"parapets", "walls"},
		Description:  "Solid fired clay brick with mortar",
		Price:        350, Color: "#9c4a32",
	},
	{
		Family: Masonry, Name: "stone",
		Density: 2600, CompressiveStrength: 100, Elasticity: 50, StrengthClass: "granite",
		Applications: []string{"exterior steps", "cladding"},
		Description:  "Granite blocks",
		Price:        1200, Color: "#7d7b78",
	},
}

// Builtin returns a catalog holding the reference materials.
func Builtin() *Catalog {
	c := NewCatalog()
	for _, m := range builtin {
		m.Applications = append([]string(nil), m.Applications...)
		// builtin entries are known-valid
		_ = c.Add(m)
	}
	return c
}
