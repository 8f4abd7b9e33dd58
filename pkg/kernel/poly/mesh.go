package poly

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
)

// ToMesh triangulates every face of s with flat per-face normals.
func (k *Kernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	src, err := unwrap(s)
	if err != nil {
		return nil, fmt.Errorf("poly: mesh: %w", err)
	}
	m := &kernel.Mesh{}
	for _, f := range collect(src, kernel.Face) {
		loops := f.loops()
		n := f.normal()
		for _, tri := range triangulate(loops[0], loops[1:], n) {
			for _, p := range tri {
				m.Indices = append(m.Indices, uint32(m.VertexCount()))
				m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
				m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			}
		}
	}
	return m, nil
}
