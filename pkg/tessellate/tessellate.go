// Package tessellate walks a part's root and produces triangle meshes
// through the part's kernel. One mesh is produced per solid, or one for
// the whole part.
package tessellate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/part"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Options controls how a part is split into meshes.
type Options struct {
	// PerSolid emits a mesh for every solid, shell or loose face under the
	// root instead of a single mesh for the whole part.
	PerSolid bool
}

// walker carries the traversal state: the part being walked and a counter
// used to name entities no label names.
type walker struct {
	p     *part.Part
	k     kernel.Kernel
	count map[kernel.ShapeKind]int
}

// Tessellate produces meshes for p. The part is only read. A part with no
// faces yields no meshes.
func Tessellate(p *part.Part, name string, opts Options) ([]*kernel.Mesh, error) {
	if p == nil {
		return nil, nil
	}
	if !opts.PerSolid {
		m, err := p.Kernel().ToMesh(p.Shape())
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
		}
		if m.IsEmpty() {
			return nil, nil
		}
		m.PartName = name
		return []*kernel.Mesh{m}, nil
	}

	w := &walker{p: p, k: p.Kernel(), count: map[kernel.ShapeKind]int{}}
	meshes, err := w.walk(p.Shape(), name)
	if err != nil {
		return nil, fmt.Errorf("tessellate: error walking %s: %w", name, err)
	}
	zap.L().Named("tessellate").Debug("tessellated",
		zap.String("part", name),
		zap.Int("meshes", len(meshes)))
	return meshes, nil
}

// walk recursively traverses compounds, collecting one mesh per leaf
// entity that carries faces.
func (w *walker) walk(s kernel.Shape, prefix string) ([]*kernel.Mesh, error) {
	switch s.Kind() {
	case kernel.Compound:
		return w.handleGroup(s, prefix)

	case kernel.Solid, kernel.Shell, kernel.Face:
		return w.handleLeaf(s, prefix)

	default:
		// Wires, edges and vertices have no surface.
		return nil, nil
	}
}

func (w *walker) handleGroup(s kernel.Shape, prefix string) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, c := range s.Children() {
		collected, err := w.walk(c, prefix)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

func (w *walker) handleLeaf(s kernel.Shape, prefix string) ([]*kernel.Mesh, error) {
	m, err := w.k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for %s: %w", s.Kind(), err)
	}
	if m.IsEmpty() {
		return nil, nil
	}

	// Prefer a label naming exactly this entity, fall back to kind and
	// position.
	n := w.count[s.Kind()]
	w.count[s.Kind()]++
	if l, ok := w.p.Subshapes().LabelOfExactly(s); ok {
		m.PartName = prefix + "/" + l
	} else {
		m.PartName = fmt.Sprintf("%s/%s-%d", prefix, s.Kind(), n)
	}
	return []*kernel.Mesh{m}, nil
}

// Triangles converts m into sdfx triangles.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		var tri sdf.Triangle3
		for c := range t {
			tri[c] = v3.Vec{X: float64(t[c][0]), Y: float64(t[c][1]), Z: float64(t[c][2])}
		}
		out = append(out, &tri)
	}
	return out
}

// WriteSTL writes the meshes into a single STL file at path.
func WriteSTL(path string, meshes ...*kernel.Mesh) error {
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		tris = append(tris, Triangles(m)...)
	}
	if len(tris) == 0 {
		return fmt.Errorf("tessellate: %s: nothing to write", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("tessellate: write %s: %w", path, err)
	}
	return nil
}

// Export writes every mesh to its own STL file under dir, named after the
// mesh, and returns the paths written.
func Export(dir string, meshes []*kernel.Mesh) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tessellate: export: %w", err)
	}
	var paths []string
	for _, m := range meshes {
		path := filepath.Join(dir, FileName(m.PartName))
		if err := WriteSTL(path, m); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName maps a mesh name to a flat STL file name.
func FileName(name string) string {
	r := strings.NewReplacer("/", "_", " ", "_", "*", "_")
	if name == "" {
		name = "part"
	}
	return r.Replace(name) + ".stl"
}
