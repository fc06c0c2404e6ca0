package fold

import (
	"slices"

	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// Flip turns the whole paper over about the vertical axis through the
// centre of its extent. Layers invert so the old top becomes the bottom,
// every face changes surface and its winding is reversed to stay
// consistent with the mirror. Ids are kept. Flip never fails; an empty
// mesh comes back unchanged.
func (e *Engine) Flip(m *mesh.Mesh) *mesh.Mesh {
	if m == nil || m.VertexCount() == 0 {
		return m
	}
	cx := m.Extent().Center().X
	mirror := func(p kernel.Point) kernel.Point { return kernel.Pt(2*cx-p.X, p.Y) }

	b := mesh.NewBuilder()
	for _, v := range m.Vertices() {
		p := mirror(v.Point())
		b.AddVertex(mesh.Vertex{ID: v.ID, X: p.X, Y: p.Y, Manual: v.Manual})
	}

	lowest, highest := m.LayerRange()
	for _, f := range m.Faces() {
		verts := slices.Clone(f.Vertices)
		slices.Reverse(verts)
		b.AddFace(mesh.Face{
			ID:       f.ID,
			Vertices: verts,
			Layer:    lowest + highest - f.Layer,
			Recto:    !f.Recto,
		})
	}
	for _, c := range m.Creases() {
		b.AddCrease(mesh.Crease{P1: mirror(c.P1), P2: mirror(c.P2)})
	}

	out := b.Build()
	e.logger().Debug("paper flipped", "faces", out.FaceCount(), "axis", cx)
	return out
}
