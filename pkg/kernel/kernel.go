// Package kernel holds the stateless numerical primitives of the fold
// kernel: side tests, intersections, reflections, bisectors, polygon
// predicates and the cubic/parabola solvers used by the origami axioms.
// Every function is pure and uses the fixed tolerance Epsilon for
// degeneracy checks.
package kernel

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	"gonum.org/v1/gonum/floats/scalar"
)

// Epsilon is the tolerance used for every degeneracy check in the kernel.
const Epsilon = 1e-9

// Point is a 2D point or vector. It is the sdfx 2D vector so values can be
// handed to sdfx boxes and matrices without conversion.
type Point = v2.Vec

// Pt is a convenience constructor for a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// cross returns the z component of the 3D cross product a×b.
func cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// unit returns v scaled to length 1, or the zero vector if v is degenerate.
func unit(v Point) Point {
	l := v.Length()
	if l < Epsilon {
		return Point{}
	}
	return v.MulScalar(1 / l)
}

// perp returns v rotated by +90 degrees.
func perp(v Point) Point {
	return Point{X: -v.Y, Y: v.X}
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return b.Sub(a).Length()
}

// Near reports whether a and b are within Epsilon of each other.
func Near(a, b Point) bool {
	return Dist(a, b) < Epsilon
}

// zero reports whether x lies within tol of 0.
func zero(x, tol float64) bool {
	return scalar.EqualWithinAbs(x, 0, tol)
}

// Midpoint returns the midpoint of segment ab.
func Midpoint(a, b Point) Point {
	return a.Add(b).MulScalar(0.5)
}

// Line is an infinite line through two distinct points. Lines produced by
// the axiom solver have P2-P1 of unit length; lines recorded as creases are
// spanned far beyond the paper.
type Line struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// LineThrough returns the line through p with direction dir. The returned
// line has a unit-length defining segment.
func LineThrough(p, dir Point) Line {
	return Line{P1: p, P2: p.Add(unit(dir))}
}

// Dir returns P2-P1.
func (l Line) Dir() Point {
	return l.P2.Sub(l.P1)
}

// Unit returns the unit direction of the line.
func (l Line) Unit() Point {
	return unit(l.Dir())
}

// Degenerate reports whether the two defining points coincide.
func (l Line) Degenerate() bool {
	return l.Dir().Length() < Epsilon
}

// Coefficients returns the normal form A·x + B·y + C = 0 with
// A = P2.y-P1.y, B = P1.x-P2.x and C = -A·P1.x - B·P1.y.
func (l Line) Coefficients() (a, b, c float64) {
	a = l.P2.Y - l.P1.Y
	b = l.P1.X - l.P2.X
	c = -a*l.P1.X - b*l.P1.Y
	return a, b, c
}

// Distance returns the signed distance from p to the line. Positive values
// lie to the left of P1→P2.
func (l Line) Distance(p Point) float64 {
	d := l.Dir().Length()
	if d < Epsilon {
		return Dist(l.P1, p)
	}
	return Side(p, l.P1, l.P2) / d
}

// SideOf classifies p as +1 (left), -1 (right) or 0 (within Epsilon of the
// line).
func (l Line) SideOf(p Point) int {
	d := l.Distance(p)
	switch {
	case d > Epsilon:
		return 1
	case d < -Epsilon:
		return -1
	}
	return 0
}

// Contains reports whether p lies within Epsilon of the line.
func (l Line) Contains(p Point) bool {
	return l.SideOf(p) == 0
}

// Project returns the orthogonal projection of p onto the line.
func (l Line) Project(p Point) Point {
	u := l.Unit()
	return l.P1.Add(u.MulScalar(p.Sub(l.P1).Dot(u)))
}

// Span returns the same line re-expressed as a segment of half-length half
// centred on the projection of center. Creases use it to extend a fold line
// far beyond the paper.
func (l Line) Span(center Point, half float64) Line {
	u := l.Unit()
	c := l.Project(center)
	return Line{P1: c.Sub(u.MulScalar(half)), P2: c.Add(u.MulScalar(half))}
}

// Parallel reports whether l and o have parallel directions.
func (l Line) Parallel(o Line) bool {
	return zero(cross(l.Unit(), o.Unit()), Epsilon)
}

// Coincident reports whether l and o describe the same infinite line.
func (l Line) Coincident(o Line) bool {
	return l.Parallel(o) && l.Contains(o.P1)
}

// lineFromCoefficients builds the line A·x + B·y + C = 0, anchored at the
// point of the line closest to the origin. It returns false when A and B
// both vanish.
func lineFromCoefficients(a, b, c float64) (Line, bool) {
	n2 := a*a + b*b
	if n2 < Epsilon*Epsilon {
		return Line{}, false
	}
	p0 := Point{X: -a * c / n2, Y: -b * c / n2}
	return LineThrough(p0, Point{X: -b, Y: a}), true
}
