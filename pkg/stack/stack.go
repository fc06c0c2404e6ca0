// Package stack walks a paper mesh and yields its faces as plain polygons in
// drawing order. It is read-only and never mutates the mesh.
package stack

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// Polygon is one face resolved to coordinates.
type Polygon struct {
	Face   mesh.FaceID
	Layer  int
	Recto  bool
	Points []kernel.Point
}

// Polygons returns every face of m ordered back to front: ascending layer,
// ties kept in face order. Faces whose polygon has fewer than three
// resolvable points are skipped.
func Polygons(m *mesh.Mesh) []Polygon {
	if m == nil {
		return nil
	}
	var out []Polygon
	for _, f := range m.Faces() {
		pts := m.Polygon(f)
		if len(pts) < 3 {
			continue
		}
		out = append(out, Polygon{Face: f.ID, Layer: f.Layer, Recto: f.Recto, Points: pts})
	}
	slices.SortStableFunc(out, func(a, b Polygon) int { return cmp.Compare(a.Layer, b.Layer) })
	return out
}

// Layers groups face ids by layer.
func Layers(m *mesh.Mesh) map[int][]mesh.FaceID {
	byLayer := lo.GroupBy(m.Faces(), func(f mesh.Face) int { return f.Layer })
	return lo.MapValues(byLayer, func(fs []mesh.Face, _ int) []mesh.FaceID {
		return lo.Map(fs, func(f mesh.Face, _ int) mesh.FaceID { return f.ID })
	})
}

// TopmostAt returns the highest face containing p. Points on a face
// boundary count as inside so a pinch on a crease still finds a face.
func TopmostAt(m *mesh.Mesh, p kernel.Point) (mesh.FaceID, bool) {
	polys := Polygons(m)
	for i := len(polys) - 1; i >= 0; i-- {
		if kernel.PointInPolygon(p, polys[i].Points) || kernel.OnBoundary(p, polys[i].Points) {
			return polys[i].Face, true
		}
	}
	return 0, false
}
