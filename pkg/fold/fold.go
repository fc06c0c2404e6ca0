// Package fold applies a single fold to a paper mesh.
//
// A fold runs to completion in one call: legality pre-checks, splitting the
// faces crossed by the fold line, choosing the mobile paper, reflecting it,
// re-layering it against the paper it lands on, and recording the crease.
// The input mesh is never modified; on error no mesh is produced.
package fold

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// Direction says which way the mobile paper turns.
type Direction int

const (
	Valley   Direction = iota // mobile paper ends up on top
	Mountain                  // mobile paper ends up underneath
)

func (d Direction) String() string {
	switch d {
	case Valley:
		return "valley"
	case Mountain:
		return "mountain"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "valley" or "mountain".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "valley", "v":
		return Valley, nil
	case "mountain", "m":
		return Mountain, nil
	}
	return Valley, fmt.Errorf("fold: unknown direction %q", s)
}

// Request describes one fold.
type Request struct {
	Line      kernel.Line
	Direction Direction

	// MobilePoint selects the half-plane that moves. Without it the side
	// holding less paper moves.
	MobilePoint *kernel.Point

	// TopmostFace restricts the mobile paper to the flap connected to this
	// face. It is only honoured together with MobilePoint.
	TopmostFace *mesh.FaceID

	// AlongPoints holds the two selected points of a fold through two
	// points; such a fold is rejected when they span an outline edge.
	AlongPoints []kernel.Point
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	creaseSpan float64
	logger     *slog.Logger
}

func defaultOptions() options {
	return options{creaseSpan: mesh.DefaultCreaseSpan}
}

// WithCreaseSpan sets the recorded crease length as a multiple of the paper
// diagonal. Non-positive values keep the default.
func WithCreaseSpan(span float64) Option {
	return func(o *options) {
		if span > 0 {
			o.creaseSpan = span
		}
	}
}

// WithLogger sets the logger. By default the shared logger from
// internal/logging is used at call time.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Engine applies folds. It owns no mesh state; new vertex and face ids come
// from the generator it borrows. An Engine is not safe for concurrent use
// because the generator is not.
type Engine struct {
	gen  *mesh.IDGen
	opts options
}

// New returns an engine drawing ids from gen.
func New(gen *mesh.IDGen, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{gen: gen, opts: o}
}

func (e *Engine) logger() *slog.Logger {
	if e.opts.logger != nil {
		return e.opts.logger
	}
	return logging.Logger()
}

const op = "fold"

func invalid(format string, args ...any) error {
	return kernel.Errorf(kernel.InvalidFold, op, format, args...)
}

// Fold applies req to m and returns the folded mesh. Errors are
// *kernel.Error values of kind GeometryDegenerate or InvalidFold.
func (e *Engine) Fold(m *mesh.Mesh, req Request) (*mesh.Mesh, error) {
	out, err := e.fold(m, req)
	if err != nil {
		e.logger().Debug("fold rejected", "direction", req.Direction, "err", err)
		return nil, err
	}
	lowest, highest := out.LayerRange()
	e.logger().Debug("fold applied",
		"direction", req.Direction,
		"faces", out.FaceCount(),
		"vertices", out.VertexCount(),
		"creases", len(out.Creases()),
		"layers", fmt.Sprintf("%d..%d", lowest, highest))
	return out, nil
}

func (e *Engine) fold(m *mesh.Mesh, req Request) (*mesh.Mesh, error) {
	line := req.Line
	if line.Degenerate() {
		return nil, kernel.Errorf(kernel.GeometryDegenerate, op, "fold line has zero length")
	}
	if m == nil || m.FaceCount() == 0 {
		return nil, invalid("there is no paper to fold")
	}
	if req.MobilePoint != nil && line.Contains(*req.MobilePoint) {
		return nil, invalid("mobile point lies on the fold line")
	}
	if err := checkLegality(m, req); err != nil {
		return nil, err
	}

	diag := m.Diagonal()
	areaTol := kernel.Epsilon * math.Max(1, diag*diag)

	s := newSplitter(m, line, e.gen, areaTol)
	pieces := s.split()

	// With a mobile point the line may run along the paper's edge, which
	// folds a flap back over; the partition still needs paper on both
	// sides of the move.
	areas := sideAreas(s, pieces)
	if missesExtent(m, line) || (req.MobilePoint == nil && (areas[1] < areaTol || areas[-1] < areaTol)) {
		return nil, invalid("fold line misses the paper")
	}

	mobile, err := e.partition(s, pieces, req, areas)
	if err != nil {
		return nil, err
	}

	r := newReflector(s, pieces, mobile)
	r.reflect()
	relayer(m, r, req.Direction)

	out := r.build(m)
	out.AddCrease(e.crease(m, line))
	return out.Build(), nil
}

// missesExtent reports whether every corner of the paper's bounding box lies
// strictly on one side of line.
func missesExtent(m *mesh.Mesh, line kernel.Line) bool {
	box := m.Extent()
	corners := []kernel.Point{
		box.Min, kernel.Pt(box.Max.X, box.Min.Y), box.Max, kernel.Pt(box.Min.X, box.Max.Y),
	}
	first := line.SideOf(corners[0])
	if first == 0 {
		return false
	}
	for _, c := range corners[1:] {
		if line.SideOf(c) != first {
			return false
		}
	}
	return true
}

// crease returns line as a segment spanning creaseSpan paper diagonals,
// centred on the paper.
func (e *Engine) crease(m *mesh.Mesh, line kernel.Line) mesh.Crease {
	box := m.Extent()
	half := e.opts.creaseSpan * math.Max(m.Diagonal(), 1) / 2
	seg := line.Span(box.Center(), half)
	return mesh.Crease{P1: seg.P1, P2: seg.P2}
}
