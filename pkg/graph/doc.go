// Package graph defines the scene graph produced by the nervi generators.
// The graph is a DAG of primitives (boxes, cylinders, rail segments,
// profile extrusions), transforms and groups. Nodes expose named anchor
// frames that children can be attached to, which is how stair sections,
// landings and handrails are chained together.
package graph
