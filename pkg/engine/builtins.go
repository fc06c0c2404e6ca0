package engine

import (
	"fmt"
	"math"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/Wartets/Origami/pkg/axiom"
	"github.com/Wartets/Origami/pkg/config"
	"github.com/Wartets/Origami/pkg/fold"
	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
	"github.com/Wartets/Origami/pkg/session"
	"github.com/Wartets/Origami/pkg/stack"
)

// script is the state a fold script mutates: one session per evaluation.
type script struct {
	cfg   config.Config
	sess  *session.Session
	folds int
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a kernel.Point.
type sexpPoint struct {
	p kernel.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.p.X, p.p.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpLine wraps a kernel.Line, such as a fold candidate.
type sexpLine struct {
	l kernel.Line
}

func (l *sexpLine) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(line (pt %g %g) (pt %g %g))", l.l.P1.X, l.l.P1.Y, l.l.P2.X, l.l.P2.Y)
}
func (l *sexpLine) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats must have no fractional part.
func toInt(s zygo.Sexp) (int64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int64(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_valley) and plain strings ("valley").
func toKeywordString(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
}

// toDirection converts :valley or :mountain.
func toDirection(s zygo.Sexp) (fold.Direction, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return fold.Valley, fmt.Errorf("expected :valley or :mountain: %w", err)
	}
	return fold.ParseDirection(name)
}

// toPoint extracts a point from a sexpPoint.
func toPoint(s zygo.Sexp) (kernel.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return kernel.Point{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// toLine extracts a line from a sexpLine.
func toLine(s zygo.Sexp) (kernel.Line, error) {
	if l, ok := s.(*sexpLine); ok {
		return l.l, nil
	}
	return kernel.Line{}, fmt.Errorf("expected line, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoints extracts a list of points.
func toPoints(s zygo.Sexp) ([]kernel.Point, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([]kernel.Point, len(items))
	for i, item := range items {
		if pts[i], err = toPoint(item); err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return pts, nil
}

func intSexp(n int) zygo.Sexp { return &zygo.SexpInt{Val: int64(n)} }

// foldOptions reads the :mobile and :face keywords shared by fold and
// fold-line.
func foldOptions(pa kwArgs) (fold.Direction, []session.FoldOption, error) {
	dir := fold.Valley
	if v, ok := pa.kw["direction"]; ok {
		d, err := toDirection(v)
		if err != nil {
			return dir, nil, fmt.Errorf("direction: %w", err)
		}
		dir = d
	}
	var opts []session.FoldOption
	if v, ok := pa.kw["mobile"]; ok {
		p, err := toPoint(v)
		if err != nil {
			return dir, nil, fmt.Errorf("mobile: %w", err)
		}
		opts = append(opts, session.WithMobilePoint(p))
	}
	if v, ok := pa.kw["face"]; ok {
		id, err := toInt(v)
		if err != nil {
			return dir, nil, fmt.Errorf("face: %w", err)
		}
		opts = append(opts, session.WithTopmostFace(mesh.FaceID(id)))
	}
	return dir, opts, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all fold script builtins into a zygomys
// environment. The builtins fold the paper held by st.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *script) {

	// -----------------------------------------------------------------------
	// (paper :width 20 :height 10)
	// -----------------------------------------------------------------------
	env.AddFunction("paper", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs("paper", args, paperKeywords)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("paper takes only keyword arguments")
		}
		cfg := st.cfg
		if v, ok := pa.kw["width"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("paper: width: %w", err)
			}
			cfg.Paper.Width = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("paper: height: %w", err)
			}
			cfg.Paper.Height = f
		}
		s, err := session.New(cfg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("paper: %w", err)
		}
		st.sess = s
		st.folds = 0
		return intSexp(s.Mesh().FaceCount()), nil
	})

	// -----------------------------------------------------------------------
	// (pt 0.5 0)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{p: kernel.Pt(x, y)}, nil
	})

	// -----------------------------------------------------------------------
	// (vertex 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("vertex requires a vertex id")
		}
		id, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: %w", err)
		}
		v, ok := st.sess.Mesh().Vertex(mesh.VertexID(id))
		if !ok {
			return zygo.SexpNull, fmt.Errorf("vertex: no vertex %d", id)
		}
		return &sexpPoint{p: v.Point()}, nil
	})

	// -----------------------------------------------------------------------
	// (line (pt 0 0) (pt 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("line requires exactly 2 points, got %d", len(args))
		}
		p, err := toPoint(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		q, err := toPoint(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return &sexpLine{l: kernel.Line{P1: p, P2: q}}, nil
	})

	// -----------------------------------------------------------------------
	// (axiom 2 (pt 0 0) (pt 1 0)) -> list of candidate lines
	// -----------------------------------------------------------------------
	env.AddFunction("axiom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("axiom requires an axiom number")
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("axiom: %w", err)
		}
		a, err := axiom.ByNumber(int(n))
		if err != nil {
			return zygo.SexpNull, err
		}
		pts := make([]kernel.Point, 0, len(args)-1)
		for i, arg := range args[1:] {
			p, err := toPoint(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("axiom: point %d: %w", i+1, err)
			}
			pts = append(pts, p)
		}
		lines, err := axiom.Solve(a, pts)
		if err != nil {
			return zygo.SexpNull, err
		}
		items := make([]zygo.Sexp, len(lines))
		for i, l := range lines {
			items[i] = &sexpLine{l: l}
		}
		return zygo.MakeList(items), nil
	})

	// -----------------------------------------------------------------------
	// (fold :axiom 2 :points (list (pt 0 0) (pt 1 0)) :direction :valley
	//       :mobile (pt 0 0) :face 5 :candidate 0)
	// -----------------------------------------------------------------------
	env.AddFunction("fold", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s := st.sess
		defer s.ClearSelection()
		pa, err := parseArgs("fold", args, foldKeywords)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("fold takes only keyword arguments")
		}

		v, ok := pa.kw["axiom"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("fold requires :axiom")
		}
		n, err := toInt(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fold: axiom: %w", err)
		}
		a, err := axiom.ByNumber(int(n))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fold: %w", err)
		}
		s.SetAxiom(a)

		var pts []kernel.Point
		if v, ok := pa.kw["points"]; ok {
			if pts, err = toPoints(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("fold: points: %w", err)
			}
		}
		if len(pts) != axiom.Arity(a) {
			return zygo.SexpNull, fmt.Errorf("fold: axiom %d needs %d points, got %d", n, axiom.Arity(a), len(pts))
		}
		for _, p := range pts {
			s.SelectPoint(p)
		}

		if _, multi := a.(axiom.TwoPointsToTwoLines); multi {
			lines, err := s.Candidates()
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fold: %w", err)
			}
			pick := 0
			if v, ok := pa.kw["candidate"]; ok {
				c, err := toInt(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("fold: candidate: %w", err)
				}
				pick = int(c)
			} else if len(lines) > 1 {
				return zygo.SexpNull, fmt.Errorf("fold: axiom 6 has %d candidates, choose one with :candidate", len(lines))
			}
			if err := s.ChooseCandidate(pick); err != nil {
				return zygo.SexpNull, fmt.Errorf("fold: %w", err)
			}
		}

		dir, opts, err := foldOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fold: %w", err)
		}
		if err := s.Fold(dir, opts...); err != nil {
			return zygo.SexpNull, fmt.Errorf("fold: %w", err)
		}
		st.folds++
		return intSexp(s.Mesh().FaceCount()), nil
	})

	// -----------------------------------------------------------------------
	// (fold-line (line (pt 0.5 0) (pt 0.5 1)) :direction :mountain)
	// -----------------------------------------------------------------------
	env.AddFunction("fold_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs("fold-line", args, foldLineKeywords)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("fold-line requires exactly one line")
		}
		l, err := toLine(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fold-line: %w", err)
		}
		dir, opts, err := foldOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fold-line: %w", err)
		}
		if err := st.sess.FoldAlong(l, dir, opts...); err != nil {
			return zygo.SexpNull, fmt.Errorf("fold-line: %w", err)
		}
		st.folds++
		return intSexp(st.sess.Mesh().FaceCount()), nil
	})

	// -----------------------------------------------------------------------
	// (flip)
	// -----------------------------------------------------------------------
	env.AddFunction("flip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st.sess.Flip()
		return intSexp(st.sess.Mesh().FaceCount()), nil
	})

	// -----------------------------------------------------------------------
	// (add-point 0.25 0.5) -> vertex id
	// -----------------------------------------------------------------------
	env.AddFunction("add_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("add-point requires x and y")
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-point: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-point: y: %w", err)
		}
		id := st.sess.AddPoint(kernel.Pt(x, y))
		return intSexp(int(id)), nil
	})

	// -----------------------------------------------------------------------
	// (top-face-at (pt 0.75 0.5)) -> face id, or nil off the paper
	// -----------------------------------------------------------------------
	env.AddFunction("top_face_at", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("top-face-at requires a point")
		}
		p, err := toPoint(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("top-face-at: %w", err)
		}
		id, ok := stack.TopmostAt(st.sess.Mesh(), p)
		if !ok {
			return zygo.SexpNull, nil
		}
		return intSexp(int(id)), nil
	})

	// -----------------------------------------------------------------------
	// (face-count) (crease-count) (max-layer)
	// -----------------------------------------------------------------------
	env.AddFunction("face_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return intSexp(st.sess.Mesh().FaceCount()), nil
	})
	env.AddFunction("crease_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return intSexp(len(st.sess.Mesh().Creases())), nil
	})
	env.AddFunction("max_layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		_, highest := st.sess.Mesh().LayerRange()
		return intSexp(highest), nil
	})
}
