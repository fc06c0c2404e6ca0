package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Side returns the cross product (b-a)×(p-a). Its sign tells which
// half-plane of line ab contains p; a magnitude below Epsilon means p is on
// the line. The magnitude scales with |b-a|; use Line.Distance for a
// scale-free value.
func Side(p, a, b Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// SegmentIntersection returns the intersection of segments ab and cd. The
// second result is false when the segments are parallel or the crossing
// lies outside either segment (parameters outside [-Epsilon, 1+Epsilon]).
func SegmentIntersection(a, b, c, d Point) (Point, bool) {
	t, u, ok := segmentParams(a, b, c, d)
	if !ok {
		return Point{}, false
	}
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return Point{}, false
	}
	return a.Add(b.Sub(a).MulScalar(t)), true
}

// segmentParams solves a + t(b-a) = c + u(d-c).
func segmentParams(a, b, c, d Point) (t, u float64, ok bool) {
	den := (a.X-b.X)*(c.Y-d.Y) - (a.Y-b.Y)*(c.X-d.X)
	if zero(den, Epsilon) {
		return 0, 0, false
	}
	t = ((a.X-c.X)*(c.Y-d.Y) - (a.Y-c.Y)*(c.X-d.X)) / den
	u = -((a.X-b.X)*(a.Y-c.Y) - (a.Y-b.Y)*(a.X-c.X)) / den
	return t, u, true
}

// SegmentsCross reports whether ab and cd cross at a point interior to
// both segments. Touching at endpoints and collinear overlap do not count.
func SegmentsCross(a, b, c, d Point) bool {
	t, u, ok := segmentParams(a, b, c, d)
	if !ok {
		return false
	}
	et := Epsilon / math.Max(Dist(a, b), Epsilon)
	eu := Epsilon / math.Max(Dist(c, d), Epsilon)
	return t > et && t < 1-et && u > eu && u < 1-eu
}

// LineIntersection returns the intersection of two infinite lines, or false
// when they are parallel.
func LineIntersection(l, o Line) (Point, bool) {
	r := l.Dir()
	s := o.Dir()
	den := cross(r, s)
	if math.Abs(den) < Epsilon*r.Length()*s.Length() || den == 0 {
		return Point{}, false
	}
	t := cross(o.P1.Sub(l.P1), s) / den
	return l.P1.Add(r.MulScalar(t)), true
}

// Reflect mirrors point across the infinite line ab using the normal form
// (A, B, C). A degenerate line (a≈b) leaves the point unchanged.
func Reflect(point, a, b Point) Point {
	A := b.Y - a.Y
	B := a.X - b.X
	C := -A*a.X - B*a.Y
	den := A*A + B*B
	if den < Epsilon {
		return point
	}
	d := 2 * (A*point.X + B*point.Y + C) / den
	return Point{X: point.X - d*A, Y: point.Y - d*B}
}

// ReflectAcross mirrors p across l.
func ReflectAcross(p Point, l Line) Point {
	return Reflect(p, l.P1, l.P2)
}

// AngleBisectors returns the lines bisecting the angles between line
// l1a-l1b and line l2a-l2b. Two intersecting lines yield two perpendicular
// bisectors; two distinct parallel lines yield the single mid-parallel;
// coincident or degenerate lines yield none.
func AngleBisectors(l1a, l1b, l2a, l2b Point) []Line {
	a1, b1, c1 := Line{P1: l1a, P2: l1b}.Coefficients()
	a2, b2, c2 := Line{P1: l2a, P2: l2b}.Coefficients()

	d1 := math.Hypot(a1, b1)
	d2 := math.Hypot(a2, b2)
	if d1 < Epsilon || d2 < Epsilon {
		return nil
	}
	a1, b1, c1 = a1/d1, b1/d1, c1/d1
	a2, b2, c2 = a2/d2, b2/d2, c2/d2

	if zero(a1*b2-b1*a2, Epsilon) {
		// Parallel: align the normals before averaging.
		if a1*a2+b1*b2 < 0 {
			a2, b2, c2 = -a2, -b2, -c2
		}
		if scalar.EqualWithinAbs(c1, c2, Epsilon) {
			return nil
		}
		l, ok := lineFromCoefficients(a1, b1, (c1+c2)/2)
		if !ok {
			return nil
		}
		return []Line{l}
	}

	var out []Line
	if l, ok := lineFromCoefficients(a1-a2, b1-b2, c1-c2); ok {
		out = append(out, l)
	}
	if l, ok := lineFromCoefficients(a1+a2, b1+b2, c1+c2); ok {
		out = append(out, l)
	}
	return out
}

// LineCircleIntersection intersects the infinite line ab with the circle of
// the given center and radius. It returns no point when the line misses,
// one point when it is tangent, two otherwise.
func LineCircleIntersection(a, b, center Point, radius float64) []Point {
	d := unit(b.Sub(a))
	if d == (Point{}) {
		return nil
	}
	f := a.Sub(center)

	// |f + t·d|² = r² with |d| = 1.
	bq := f.Dot(d)
	c := f.Dot(f) - radius*radius
	disc := bq*bq - c

	scale := math.Max(radius, 1)
	switch {
	case disc < -Epsilon*scale:
		return nil
	case zero(disc, Epsilon*scale):
		return []Point{a.Add(d.MulScalar(-bq))}
	}
	s := math.Sqrt(disc)
	return []Point{
		a.Add(d.MulScalar(-bq - s)),
		a.Add(d.MulScalar(-bq + s)),
	}
}
