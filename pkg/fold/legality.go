package fold

import (
	"github.com/deadsy/sdfx/sdf"

	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// checkLegality rejects folds that would create an illegal junction or
// that repeat an outline edge. It does not touch m.
func checkLegality(m *mesh.Mesh, req Request) error {
	line := req.Line
	box := m.Extent()

	creases := m.Creases()
	for i := range creases {
		for j := i + 1; j < len(creases); j++ {
			x, ok := kernel.LineIntersection(creases[i].Line(), creases[j].Line())
			if !ok || !insideBox(box, x) {
				continue
			}
			if kernel.Near(line.Project(x), x) {
				return invalid("fold line passes through the crease junction at (%.4g, %.4g)", x.X, x.Y)
			}
		}
	}

	used := make(map[mesh.VertexID]bool)
	for _, f := range m.Faces() {
		for _, id := range f.Vertices {
			if used[id] {
				continue
			}
			used[id] = true
			v, _ := m.Vertex(id)
			if !line.Contains(v.Point()) {
				continue
			}
			if d := m.Degree(id); d > 2 {
				return invalid("fold line passes through vertex %s where %d edges meet", id, d)
			}
		}
	}

	if len(req.AlongPoints) == 2 {
		p, q := req.AlongPoints[0], req.AlongPoints[1]
		for _, e := range outline(m) {
			a, _ := m.Vertex(e.A)
			b, _ := m.Vertex(e.B)
			pa, pb := a.Point(), b.Point()
			if (kernel.Near(pa, p) && kernel.Near(pb, q)) || (kernel.Near(pa, q) && kernel.Near(pb, p)) {
				return invalid("fold line runs along the existing edge %s-%s", e.A, e.B)
			}
		}
	}
	return nil
}

func insideBox(b sdf.Box2, p kernel.Point) bool {
	return p.X >= b.Min.X-kernel.Epsilon && p.X <= b.Max.X+kernel.Epsilon &&
		p.Y >= b.Min.Y-kernel.Epsilon && p.Y <= b.Max.Y+kernel.Epsilon
}

// outline returns the edges bordering exactly one face.
func outline(m *mesh.Mesh) []mesh.Edge {
	count := make(map[mesh.Edge]int)
	for _, f := range m.Faces() {
		n := len(f.Vertices)
		for i, a := range f.Vertices {
			b := f.Vertices[(i+1)%n]
			if a > b {
				a, b = b, a
			}
			count[mesh.Edge{A: a, B: b}]++
		}
	}
	var out []mesh.Edge
	for _, e := range m.Edges() {
		if count[e] == 1 {
			out = append(out, e)
		}
	}
	return out
}
