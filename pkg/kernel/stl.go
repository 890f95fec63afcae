package kernel

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSTL writes the meshes as one ASCII STL solid per mesh.
func WriteSTL(w io.Writer, meshes []*Mesh) error {
	bw := bufio.NewWriter(w)
	for _, m := range meshes {
		name := m.PartName
		if name == "" {
			name = "part"
		}
		fmt.Fprintf(bw, "solid %s\n", name)
		for t := 0; t+2 < len(m.Indices); t += 3 {
			var n [3]float32
			if len(m.Normals) == len(m.Vertices) {
				i := m.Indices[t] * 3
				n = [3]float32{m.Normals[i], m.Normals[i+1], m.Normals[i+2]}
			}
			fmt.Fprintf(bw, "  facet normal %g %g %g\n", n[0], n[1], n[2])
			bw.WriteString("    outer loop\n")
			for j := 0; j < 3; j++ {
				i := m.Indices[t+j] * 3
				if int(i)+2 >= len(m.Vertices) {
					return fmt.Errorf("kernel: stl: mesh %q index %d out of range", name, m.Indices[t+j])
				}
				fmt.Fprintf(bw, "      vertex %g %g %g\n", m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
			}
			bw.WriteString("    endloop\n")
			bw.WriteString("  endfacet\n")
		}
		fmt.Fprintf(bw, "endsolid %s\n", name)
	}
	return bw.Flush()
}
