package kernel

import (
	"math"
	"slices"

	"github.com/deadsy/sdfx/sdf"
)

// PolygonArea returns the signed shoelace area of poly. Counter-clockwise
// polygons have positive area.
func PolygonArea(poly []Point) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area of poly.
func Area(poly []Point) float64 {
	return math.Abs(PolygonArea(poly))
}

// VertexCentroid returns the average of the polygon's vertices.
func VertexCentroid(poly []Point) Point {
	var c Point
	if len(poly) == 0 {
		return c
	}
	for _, p := range poly {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(poly)))
}

// Centroid returns the area centroid of poly, falling back to the vertex
// average for degenerate polygons.
func Centroid(poly []Point) Point {
	a := PolygonArea(poly)
	if math.Abs(a) < Epsilon*Epsilon {
		return VertexCentroid(poly)
	}
	var cx, cy float64
	n := len(poly)
	for i := range poly {
		j := (i + 1) % n
		f := poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		cx += (poly[i].X + poly[j].X) * f
		cy += (poly[i].Y + poly[j].Y) * f
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// SortAngular returns the indices of poly ordered counter-clockwise by
// angle around the vertex centroid. For a convex point set this yields a
// simple polygon.
func SortAngular(poly []Point) []int {
	c := VertexCentroid(poly)
	idx := make([]int, len(poly))
	angle := make([]float64, len(poly))
	for i, p := range poly {
		idx[i] = i
		angle[i] = math.Atan2(p.Y-c.Y, p.X-c.X)
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case angle[a] < angle[b]:
			return -1
		case angle[a] > angle[b]:
			return 1
		}
		return 0
	})
	return idx
}

// Bounds returns the axis-aligned bounding box of pts.
func Bounds(pts []Point) sdf.Box2 {
	if len(pts) == 0 {
		return sdf.Box2{}
	}
	bb := sdf.Box2{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb = bb.Include(p)
	}
	return bb
}

func boxesOverlap(a, b sdf.Box2) bool {
	return a.Min.X <= b.Max.X+Epsilon && b.Min.X <= a.Max.X+Epsilon &&
		a.Min.Y <= b.Max.Y+Epsilon && b.Min.Y <= a.Max.Y+Epsilon
}

// distToSegment returns the distance from p to segment ab.
func distToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon*Epsilon {
		return Dist(p, a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return Dist(p, a.Add(ab.MulScalar(t)))
}

// OnBoundary reports whether p lies within Epsilon of an edge of poly.
func OnBoundary(p Point, poly []Point) bool {
	n := len(poly)
	for i := range poly {
		if distToSegment(p, poly[i], poly[(i+1)%n]) < Epsilon {
			return true
		}
	}
	return false
}

// PointInPolygon reports whether p is inside poly using ray casting. Points
// exactly on the boundary may fall on either side.
func PointInPolygon(p Point, poly []Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			x := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// strictlyInside is PointInPolygon with the boundary excluded.
func strictlyInside(p Point, poly []Point) bool {
	return !OnBoundary(p, poly) && PointInPolygon(p, poly)
}

// IsConvex reports whether poly is convex in either winding.
func IsConvex(poly []Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	sign := 0
	for i := range poly {
		c := cross(poly[(i+1)%n].Sub(poly[i]), poly[(i+2)%n].Sub(poly[(i+1)%n]))
		switch {
		case c > Epsilon:
			if sign < 0 {
				return false
			}
			sign = 1
		case c < -Epsilon:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return true
}

// PolygonsIntersect reports whether two polygons overlap with positive
// area. Sharing an edge or a vertex is not an overlap. The test combines a
// vertex-inside check, proper edge crossings and a centroid check; convex
// inputs that remain inconclusive fall back to the clipped overlap area.
func PolygonsIntersect(a, b []Point) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if !boxesOverlap(Bounds(a), Bounds(b)) {
		return false
	}
	for _, p := range a {
		if strictlyInside(p, b) {
			return true
		}
	}
	for _, p := range b {
		if strictlyInside(p, a) {
			return true
		}
	}
	na, nb := len(a), len(b)
	for i := range a {
		for j := range b {
			if SegmentsCross(a[i], a[(i+1)%na], b[j], b[(j+1)%nb]) {
				return true
			}
		}
	}
	if strictlyInside(Centroid(a), b) || strictlyInside(Centroid(b), a) {
		return true
	}
	if IsConvex(a) && IsConvex(b) {
		return OverlapArea(a, b) > Epsilon
	}
	return false
}

// ccw returns poly in counter-clockwise order.
func ccw(poly []Point) []Point {
	if PolygonArea(poly) >= 0 {
		return poly
	}
	out := slices.Clone(poly)
	slices.Reverse(out)
	return out
}

// ClipConvex clips subject against the convex polygon clip
// (Sutherland–Hodgman). The result is counter-clockwise.
func ClipConvex(subject, clip []Point) []Point {
	out := ccw(subject)
	clip = ccw(clip)
	n := len(clip)
	for i := 0; i < n && len(out) > 0; i++ {
		c1, c2 := clip[i], clip[(i+1)%n]
		edge := Line{P1: c1, P2: c2}
		in := out
		out = nil
		m := len(in)
		for k := range in {
			cur, next := in[k], in[(k+1)%m]
			dc, dn := edge.Distance(cur), edge.Distance(next)
			if dc >= -Epsilon {
				out = append(out, cur)
			}
			if (dc > Epsilon && dn < -Epsilon) || (dc < -Epsilon && dn > Epsilon) {
				t := dc / (dc - dn)
				out = append(out, cur.Add(next.Sub(cur).MulScalar(t)))
			}
		}
	}
	return out
}

// OverlapArea returns the area shared by two convex polygons.
func OverlapArea(a, b []Point) float64 {
	return Area(ClipConvex(a, b))
}
