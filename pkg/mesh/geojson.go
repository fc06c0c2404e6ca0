package mesh

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"

	"github.com/Wartets/Origami/pkg/kernel"
)

// FeatureCollection exports m for GIS-style viewers. Faces become Polygon
// features ordered back-to-front by layer; creases become LineString
// features clipped to the bounding box of the folded paper. Creases that
// miss the box are left out.
func FeatureCollection(m *Mesh) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	faces := m.Faces()
	slices.SortStableFunc(faces, func(a, b Face) int { return a.Layer - b.Layer })
	for _, f := range faces {
		poly := m.Polygon(f)
		if len(poly) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(poly)+1)
		for _, p := range poly {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		ring = append(ring, ring[0])

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties["kind"] = "face"
		feature.Properties["id"] = uint64(f.ID)
		feature.Properties["layer"] = f.Layer
		feature.Properties["isRecto"] = f.Recto
		fc.Append(feature)
	}

	box := m.Extent()
	bound := orb.Bound{Min: orb.Point{box.Min.X, box.Min.Y}, Max: orb.Point{box.Max.X, box.Max.Y}}.Pad(kernel.Epsilon)
	corners := []kernel.Point{
		box.Min, {X: box.Max.X, Y: box.Min.Y}, box.Max, {X: box.Min.X, Y: box.Max.Y},
	}
	for i, c := range m.creases {
		l := c.Line()
		if l.Degenerate() {
			continue
		}
		// A segment whose projection covers every corner crosses the whole
		// box, whatever span the crease was recorded with.
		u := l.Unit()
		tmin, tmax := math.Inf(1), math.Inf(-1)
		for _, p := range corners {
			t := p.Sub(l.P1).Dot(u)
			tmin, tmax = min(tmin, t), max(tmax, t)
		}
		a := l.P1.Add(u.MulScalar(tmin - 1))
		b := l.P1.Add(u.MulScalar(tmax + 1))

		clipped := clip.LineString(bound, orb.LineString{{a.X, a.Y}, {b.X, b.Y}})
		if len(clipped) == 0 || len(clipped[0]) < 2 {
			continue
		}
		feature := geojson.NewFeature(clipped[0])
		feature.Properties["kind"] = "crease"
		feature.Properties["index"] = i
		fc.Append(feature)
	}
	return fc
}
