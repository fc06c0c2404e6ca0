package axiom

import (
	"fmt"

	"github.com/Wartets/Origami/pkg/kernel"
)

func opName(a Axiom) string {
	return fmt.Sprintf("axiom %d", a.Number())
}

func degenerate(a Axiom, format string, args ...any) error {
	return kernel.Errorf(kernel.GeometryDegenerate, opName(a), format, args...)
}

func noSolution(a Axiom, format string, args ...any) error {
	return kernel.Errorf(kernel.NoSolution, opName(a), format, args...)
}

func refLine(a Axiom, p, q kernel.Point, what string) (kernel.Line, error) {
	l := kernel.Line{P1: p, P2: q}
	if l.Degenerate() {
		return kernel.Line{}, degenerate(a, "%s has zero length", what)
	}
	return l, nil
}

// perpendicularBisector returns the fold that maps p onto q.
func perpendicularBisector(p, q kernel.Point) kernel.Line {
	d := q.Sub(p)
	return kernel.LineThrough(kernel.Midpoint(p, q), kernel.Pt(-d.Y, d.X))
}

func (a ThroughPoints) solve(pts []kernel.Point) ([]kernel.Line, error) {
	p1, p2 := pts[0], pts[1]
	if kernel.Near(p1, p2) {
		return nil, degenerate(a, "points coincide")
	}
	return []kernel.Line{kernel.LineThrough(p1, p2.Sub(p1))}, nil
}

func (a PointToPoint) solve(pts []kernel.Point) ([]kernel.Line, error) {
	p1, p2 := pts[0], pts[1]
	if kernel.Near(p1, p2) {
		return nil, degenerate(a, "points coincide")
	}
	return []kernel.Line{perpendicularBisector(p1, p2)}, nil
}

// solve picks, of the two bisectors of intersecting lines, the one that
// separates a reference point of line 1 from one of line 2. Reference points
// are the endpoints farthest from the intersection so a shared corner never
// decides the choice.
func (a LineToLine) solve(pts []kernel.Point) ([]kernel.Line, error) {
	l1, err := refLine(a, pts[0], pts[1], "line 1")
	if err != nil {
		return nil, err
	}
	l2, err := refLine(a, pts[2], pts[3], "line 2")
	if err != nil {
		return nil, err
	}
	bis := kernel.AngleBisectors(l1.P1, l1.P2, l2.P1, l2.P2)
	switch len(bis) {
	case 0:
		return nil, degenerate(a, "lines coincide")
	case 1:
		return bis, nil
	}

	x, ok := kernel.LineIntersection(l1, l2)
	if !ok {
		return bis[:1], nil
	}
	r1, r2 := farther(l1, x), farther(l2, x)
	if bis[0].Distance(r1)*bis[0].Distance(r2) > kernel.Epsilon {
		return bis[1:2], nil
	}
	return bis[:1], nil
}

func farther(l kernel.Line, from kernel.Point) kernel.Point {
	if kernel.Dist(l.P1, from) >= kernel.Dist(l.P2, from) {
		return l.P1
	}
	return l.P2
}

func (a PerpendicularThrough) solve(pts []kernel.Point) ([]kernel.Line, error) {
	l, err := refLine(a, pts[0], pts[1], "line")
	if err != nil {
		return nil, err
	}
	d := l.Dir()
	return []kernel.Line{kernel.LineThrough(pts[2], kernel.Pt(-d.Y, d.X))}, nil
}

// solve intersects the line with the circle about P1 through P2; each
// intersection other than P2 is a place P2 can land.
func (a PointToLineThrough) solve(pts []kernel.Point) ([]kernel.Line, error) {
	p1, p2 := pts[0], pts[1]
	l, err := refLine(a, pts[2], pts[3], "line")
	if err != nil {
		return nil, err
	}
	r := kernel.Dist(p1, p2)
	if r < kernel.Epsilon {
		return nil, degenerate(a, "pivot and moved point coincide")
	}
	for _, x := range kernel.LineCircleIntersection(l.P1, l.P2, p1, r) {
		if kernel.Near(x, p2) {
			continue
		}
		return []kernel.Line{perpendicularBisector(p2, x)}, nil
	}
	return nil, noSolution(a, "circle about the pivot misses the line")
}

func (a TwoPointsToTwoLines) solve(pts []kernel.Point) ([]kernel.Line, error) {
	pa, pb := pts[0], pts[1]
	l1, err := refLine(a, pts[2], pts[3], "line 1")
	if err != nil {
		return nil, err
	}
	l2, err := refLine(a, pts[4], pts[5], "line 2")
	if err != nil {
		return nil, err
	}
	lines, err := kernel.CommonTangentsToTwoParabolas(pa, l1.P1, l1.P2, pb, l2.P1, l2.P2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opName(a), err)
	}
	if len(lines) == 0 {
		return nil, noSolution(a, "no common tangent")
	}
	return lines, nil
}

// solve reflects P across the member d2·x = t of the family of lines
// perpendicular to line 2 and requires the image to satisfy n1·x = c1:
//
//	t = d2·P + (c1 - n1·P) / (2·n1·d2)
func (a PointToLinePerpendicular) solve(pts []kernel.Point) ([]kernel.Line, error) {
	p := pts[0]
	l1, err := refLine(a, pts[1], pts[2], "line 1")
	if err != nil {
		return nil, err
	}
	l2, err := refLine(a, pts[3], pts[4], "line 2")
	if err != nil {
		return nil, err
	}
	u1 := l1.Unit()
	n1 := kernel.Pt(-u1.Y, u1.X)
	c1 := n1.Dot(l1.P1)
	d2 := l2.Unit()

	den := n1.Dot(d2)
	if den > -kernel.Epsilon && den < kernel.Epsilon {
		return nil, noSolution(a, "line 1 is parallel to line 2")
	}
	shift := (c1 - n1.Dot(p)) / (2 * den)
	through := p.Add(d2.MulScalar(shift))
	return []kernel.Line{kernel.LineThrough(through, kernel.Pt(-d2.Y, d2.X))}, nil
}
