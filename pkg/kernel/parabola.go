package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// tangentTol is the incidence tolerance used to accept a recovered tangent.
// Cubic roots carry more rounding than the primitive predicates.
const tangentTol = 1e-6

// CommonTangentsToTwoParabolas returns the fold lines that simultaneously
// place focus1 on the line d1a-d1b and focus2 on the line d2a-d2b. Each
// (focus, directrix) pair defines a parabola whose tangents are exactly the
// folds that bring the focus onto the directrix; the result holds their
// common tangents, zero to three lines, in no particular preference order.
//
// Directrix 1 is moved onto the x-axis, the tangency condition becomes a
// cubic in the slope m of y = m·x + k, and each root is mapped back to the
// input frame. A focus lying on its own directrix has no parabola; when
// only one pair is like that the pairs are swapped, otherwise the input is
// degenerate.
func CommonTangentsToTwoParabolas(focus1, d1a, d1b, focus2, d2a, d2b Point) ([]Line, error) {
	const op = "common tangents"
	if Near(d1a, d1b) || Near(d2a, d2b) {
		return nil, Errorf(GeometryDegenerate, op, "zero-length directrix")
	}
	line1 := Line{P1: d1a, P2: d1b}
	line2 := Line{P1: d2a, P2: d2b}
	if line1.Contains(focus1) {
		if line2.Contains(focus2) {
			return nil, Errorf(GeometryDegenerate, op, "both foci lie on their directrices")
		}
		focus1, focus2 = focus2, focus1
		line1, line2 = line2, line1
	}

	// World to frame: directrix 1 becomes the x-axis.
	dir := line1.Dir()
	theta := math.Atan2(dir.Y, dir.X)
	toFrame := sdf.Rotate2d(-theta).Mul(sdf.Translate2d(line1.P1.MulScalar(-1)))
	toWorld := sdf.Translate2d(line1.P1).Mul(sdf.Rotate2d(theta))

	f1 := toFrame.MulPosition(focus1)
	f2 := toFrame.MulPosition(focus2)
	l2 := Line{P1: toFrame.MulPosition(line2.P1), P2: toFrame.MulPosition(line2.P2)}

	u1, v1 := f1.X, f1.Y
	x0, y0 := f2.X, f2.Y
	n := perp(l2.Unit())
	c := n.Dot(l2.P1)
	s := n.Dot(f2) - c

	// Tangent to parabola 1: k(m) = v1/2 - u1·m - v1·m²/2. Requiring the
	// reflection of f2 to satisfy n·p = c gives the cubic below.
	roots := SolveCubic(
		n.X*v1,
		s-n.Y*v1-2*n.X*(x0-u1),
		2*n.Y*(x0-u1)-n.X*v1+2*n.X*y0,
		s+n.Y*v1-2*n.Y*y0,
	)

	// A vertical fold leaves the y of f1 unchanged, so it can never reach the
	// x-axis while v1 != 0; no separate vertical candidate exists.
	var out []Line
	for _, m := range roots {
		k := v1/2 - u1*m - v1*m*m/2
		p := toWorld.MulPosition(Point{X: 0, Y: k})
		q := toWorld.MulPosition(Point{X: 1, Y: m + k})
		cand := LineThrough(p, q.Sub(p))
		if !tangentValid(cand, focus1, line1) || !tangentValid(cand, focus2, line2) {
			continue
		}
		if containsLine(out, cand) {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

func tangentValid(fold Line, focus Point, directrix Line) bool {
	img := ReflectAcross(focus, fold)
	return zero(directrix.Distance(img), tangentTol*math.Max(1, Dist(focus, directrix.P1)))
}

func containsLine(ls []Line, l Line) bool {
	for _, o := range ls {
		if zero(cross(o.Unit(), l.Unit()), tangentTol) && zero(o.Distance(l.P1), tangentTol) {
			return true
		}
	}
	return false
}
