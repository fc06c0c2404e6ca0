// Package axiom maps a selection of points to fold lines according to the
// seven Huzita–Justin/Hatori single-fold constructions.
//
// Axioms form a closed set: every Axiom value is one of the seven types
// declared here, each carrying its arity and the role of every selected
// point. Solve never returns an arbitrary line for degenerate input; it
// returns a *kernel.Error of kind GeometryDegenerate or NoSolution instead.
package axiom

import (
	"fmt"
	"math"

	"github.com/Wartets/Origami/pkg/kernel"
)

// Role describes what a selected point stands for.
type Role int

const (
	RolePoint     Role = iota // a point used on its own
	RoleLineStart             // first point of a reference line
	RoleLineEnd               // second point of a reference line
)

func (r Role) String() string {
	switch r {
	case RolePoint:
		return "point"
	case RoleLineStart:
		return "line start"
	case RoleLineEnd:
		return "line end"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Axiom is one of the seven fold constructions.
type Axiom interface {
	// Number returns the conventional axiom number, 1 to 7.
	Number() int
	// Name returns a short human-readable description.
	Name() string
	// Roles returns one entry per required point, in selection order.
	Roles() []Role

	solve(pts []kernel.Point) ([]kernel.Line, error)
}

type (
	// ThroughPoints folds along the line through P1 and P2.
	ThroughPoints struct{}
	// PointToPoint folds P1 onto P2 (perpendicular bisector).
	PointToPoint struct{}
	// LineToLine folds line 1 onto line 2 (angle bisector).
	LineToLine struct{}
	// PerpendicularThrough folds perpendicular to a line through a point.
	PerpendicularThrough struct{}
	// PointToLineThrough brings P2 onto a line with a fold through P1.
	PointToLineThrough struct{}
	// TwoPointsToTwoLines brings A onto line 1 and B onto line 2 at once.
	TwoPointsToTwoLines struct{}
	// PointToLinePerpendicular brings P onto line 1 with a fold
	// perpendicular to line 2.
	PointToLinePerpendicular struct{}
)

var (
	pointPair = []Role{RolePoint, RolePoint}
	linePair  = []Role{RoleLineStart, RoleLineEnd}
)

func roles(parts ...[]Role) []Role {
	var out []Role
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (ThroughPoints) Number() int { return 1 }
func (ThroughPoints) Name() string { return "fold through two points" }
func (ThroughPoints) Roles() []Role { return roles(pointPair) }

func (PointToPoint) Number() int { return 2 }
func (PointToPoint) Name() string { return "fold a point onto a point" }
func (PointToPoint) Roles() []Role { return roles(pointPair) }

func (LineToLine) Number() int { return 3 }
func (LineToLine) Name() string { return "fold a line onto a line" }
func (LineToLine) Roles() []Role { return roles(linePair, linePair) }

func (PerpendicularThrough) Number() int { return 4 }
func (PerpendicularThrough) Name() string {
	return "fold perpendicular to a line through a point"
}
func (PerpendicularThrough) Roles() []Role { return roles(linePair, []Role{RolePoint}) }

func (PointToLineThrough) Number() int { return 5 }
func (PointToLineThrough) Name() string {
	return "fold a point onto a line through a point"
}
func (PointToLineThrough) Roles() []Role { return roles(pointPair, linePair) }

func (TwoPointsToTwoLines) Number() int { return 6 }
func (TwoPointsToTwoLines) Name() string {
	return "fold two points onto two lines"
}
func (TwoPointsToTwoLines) Roles() []Role { return roles(pointPair, linePair, linePair) }

func (PointToLinePerpendicular) Number() int { return 7 }
func (PointToLinePerpendicular) Name() string {
	return "fold a point onto a line perpendicular to a line"
}
func (PointToLinePerpendicular) Roles() []Role {
	return roles([]Role{RolePoint}, linePair, linePair)
}

// All returns the seven axioms in numeric order.
func All() []Axiom {
	return []Axiom{
		ThroughPoints{},
		PointToPoint{},
		LineToLine{},
		PerpendicularThrough{},
		PointToLineThrough{},
		TwoPointsToTwoLines{},
		PointToLinePerpendicular{},
	}
}

// ByNumber returns the axiom with the given number.
func ByNumber(n int) (Axiom, error) {
	if n < 1 || n > 7 {
		return nil, fmt.Errorf("axiom: unknown axiom %d, want 1-7", n)
	}
	return All()[n-1], nil
}

// Arity returns the number of points a requires.
func Arity(a Axiom) int {
	return len(a.Roles())
}

// Solve computes the fold lines of a for the selected points. Only
// TwoPointsToTwoLines may return more than one line; its candidates are
// not ranked. Points with NaN or infinite coordinates are degenerate.
func Solve(a Axiom, pts []kernel.Point) ([]kernel.Line, error) {
	if n := Arity(a); len(pts) != n {
		return nil, fmt.Errorf("axiom: axiom %d needs %d points, got %d", a.Number(), n, len(pts))
	}
	for i, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			return nil, degenerate(a, "point %d (%g, %g) is not finite", i+1, p.X, p.Y)
		}
	}
	return a.solve(pts)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// DefaultMobilePoint returns the point whose side of fold moves when the
// caller gives no explicit mobile point. It reports false when the natural
// choice lies on the fold line, leaving the decision to the engine.
func DefaultMobilePoint(a Axiom, pts []kernel.Point, fold kernel.Line) (kernel.Point, bool) {
	if len(pts) != Arity(a) {
		return kernel.Point{}, false
	}
	var p kernel.Point
	switch a.(type) {
	case PointToPoint, LineToLine, TwoPointsToTwoLines, PointToLinePerpendicular:
		p = pts[0]
	case PerpendicularThrough:
		p = pts[2]
	case PointToLineThrough:
		p = pts[1]
	case ThroughPoints:
		// Just left of the midpoint, as seen walking from P1 to P2.
		d := pts[1].Sub(pts[0])
		mid := kernel.Midpoint(pts[0], pts[1])
		p = kernel.Pt(mid.X-d.Y*0.01, mid.Y+d.X*0.01)
	default:
		return kernel.Point{}, false
	}
	if fold.Contains(p) {
		return kernel.Point{}, false
	}
	return p, true
}
