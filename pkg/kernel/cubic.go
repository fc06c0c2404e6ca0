package kernel

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats/scalar"
)

// rootTol merges roots that differ only by rounding noise.
const rootTol = 1e-7

// SolveCubic returns the real roots of a·x³ + b·x² + c·x + d = 0 in
// ascending order without duplicates. Vanishing leading coefficients
// degrade the equation to a quadratic or linear one; an identically zero
// polynomial has no isolated roots and yields nil.
func SolveCubic(a, b, c, d float64) []float64 {
	if zero(a, Epsilon) {
		return solveQuadratic(b, c, d)
	}

	// Monic form, then x = t - b/3 gives t³ + p·t + q = 0.
	b, c, d = b/a, c/a, d/a
	shift := b / 3
	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d

	var ts []float64
	disc := q*q/4 + p*p*p/27
	switch {
	case zero(p, Epsilon) && zero(q, Epsilon):
		ts = []float64{0}
	case zero(disc, Epsilon):
		// Double root plus a simple one.
		ts = []float64{3 * q / p, -3 * q / (2 * p)}
	case disc > 0:
		s := math.Sqrt(disc)
		ts = []float64{math.Cbrt(-q/2+s) + math.Cbrt(-q/2-s)}
	default:
		// Three distinct real roots, trigonometric form.
		r := 2 * math.Sqrt(-p/3)
		arg := 3 * q / (2 * p) * math.Sqrt(-3/p)
		phi := math.Acos(math.Max(-1, math.Min(1, arg)))
		for k := range 3 {
			ts = append(ts, r*math.Cos(phi/3-2*math.Pi*float64(k)/3))
		}
	}

	roots := make([]float64, 0, len(ts))
	for _, t := range ts {
		roots = append(roots, polish(1, b, c, d, t-shift))
	}
	return uniqueSorted(roots)
}

func solveQuadratic(a, b, c float64) []float64 {
	if zero(a, Epsilon) {
		if zero(b, Epsilon) {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	switch {
	case disc < -Epsilon:
		return nil
	case disc < Epsilon:
		return []float64{-b / (2 * a)}
	}
	s := math.Sqrt(disc)
	return uniqueSorted([]float64{(-b - s) / (2 * a), (-b + s) / (2 * a)})
}

// polish applies a few Newton steps to x as a root of the cubic.
func polish(a, b, c, d, x float64) float64 {
	for range 3 {
		f := ((a*x+b)*x+c)*x + d
		df := (3*a*x+2*b)*x + c
		if zero(df, Epsilon) {
			break
		}
		next := x - f/df
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		x = next
	}
	return x
}

func uniqueSorted(xs []float64) []float64 {
	slices.Sort(xs)
	return slices.CompactFunc(xs, func(a, b float64) bool {
		return scalar.EqualWithinAbs(a, b, rootTol)
	})
}
