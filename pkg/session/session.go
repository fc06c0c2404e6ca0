// Package session owns one sheet of paper being folded: the current mesh,
// the id generator every fold draws from, and the point selection that
// feeds the axiom solver.
//
// Selection follows a small state machine:
//
//	Idle -> Selecting -> Ready -> (axiom 6 only) CandidateSelected -> Idle
//
// Fold always returns the session to Idle, whether or not the fold
// succeeded. A Session is not safe for concurrent use.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/axiom"
	"github.com/Wartets/Origami/pkg/config"
	"github.com/Wartets/Origami/pkg/fold"
	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
	"github.com/Wartets/Origami/pkg/stack"
)

// State is the selection state.
type State int

const (
	Idle              State = iota // nothing selected
	Selecting                      // fewer points than the axiom needs
	Ready                          // the fold line can be computed
	CandidateSelected              // axiom 6: one tangent has been chosen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Ready:
		return "ready"
	case CandidateSelected:
		return "candidate selected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotReady is returned when an operation needs a complete selection.
	ErrNotReady = errors.New("session: selection incomplete")
	// ErrNoCandidate is returned when axiom 6 folds before a candidate is
	// chosen.
	ErrNoCandidate = errors.New("session: no fold candidate chosen")
)

// selected is one entry of the selection: either an existing vertex,
// resolved to its current position when used, or a free point.
type selected struct {
	vertex mesh.VertexID // zero for free points
	at     kernel.Point
}

// Session is one folding session.
type Session struct {
	id     uuid.UUID
	gen    *mesh.IDGen
	engine *fold.Engine
	mesh   *mesh.Mesh
	log    *slog.Logger

	axiom      axiom.Axiom
	selection  []selected
	candidates []kernel.Line
	chosen     int
}

// New starts a session on a fresh sheet sized by cfg.Paper, with axiom 1
// selected.
func New(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gen := mesh.NewIDGen()
	m, err := mesh.NewRectangle(gen, cfg.Paper.Width, cfg.Paper.Height)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	id := uuid.New()
	log := logging.Logger().With("session", id.String())
	return &Session{
		id:     id,
		gen:    gen,
		engine: fold.New(gen, fold.WithCreaseSpan(cfg.CreaseSpan), fold.WithLogger(log)),
		mesh:   m,
		log:    log,
		axiom:  axiom.ThroughPoints{},
		chosen: -1,
	}, nil
}

// ID returns the session's unique id.
func (s *Session) ID() uuid.UUID { return s.id }

// Mesh returns the current paper state.
func (s *Session) Mesh() *mesh.Mesh { return s.mesh }

// Axiom returns the selected axiom.
func (s *Session) Axiom() axiom.Axiom { return s.axiom }

// State returns the selection state.
func (s *Session) State() State {
	switch {
	case len(s.selection) == 0:
		return Idle
	case len(s.selection) < axiom.Arity(s.axiom):
		return Selecting
	case s.chosen >= 0:
		return CandidateSelected
	default:
		return Ready
	}
}

// Selection returns the positions of the selected points in order.
func (s *Session) Selection() []kernel.Point {
	out := make([]kernel.Point, len(s.selection))
	for i, sel := range s.selection {
		out[i] = s.resolve(sel)
	}
	return out
}

func (s *Session) resolve(sel selected) kernel.Point {
	if sel.vertex != 0 {
		if v, ok := s.mesh.Vertex(sel.vertex); ok {
			return v.Point()
		}
	}
	return sel.at
}

func (s *Session) transition(from State, why string) {
	if to := s.State(); to != from {
		s.log.Debug("selection state", "from", from, "to", to, "on", why)
	}
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	from := s.State()
	s.selection = nil
	s.candidates = nil
	s.chosen = -1
	s.transition(from, "clear")
}

// SetAxiom switches the axiom and clears the selection.
func (s *Session) SetAxiom(a axiom.Axiom) {
	s.axiom = a
	s.ClearSelection()
}

func (s *Session) changed() {
	s.candidates = nil
	s.chosen = -1
}

// SelectVertex toggles vertex id in the selection: a selected vertex is
// removed, otherwise it is appended while the axiom needs more points.
// It reports whether the vertex is selected afterwards.
func (s *Session) SelectVertex(id mesh.VertexID) (bool, error) {
	v, ok := s.mesh.Vertex(id)
	if !ok {
		return false, fmt.Errorf("session: vertex %s does not exist", id)
	}
	from := s.State()
	defer s.transition(from, "select vertex")

	if i := slices.IndexFunc(s.selection, func(sel selected) bool { return sel.vertex == id }); i >= 0 {
		s.selection = slices.Delete(s.selection, i, i+1)
		s.changed()
		return false, nil
	}
	if len(s.selection) >= axiom.Arity(s.axiom) {
		return false, nil
	}
	s.selection = append(s.selection, selected{vertex: id, at: v.Point()})
	s.changed()
	return true, nil
}

// SelectEdge appends both endpoints of an edge when two more points fit.
// It reports whether the edge was taken.
func (s *Session) SelectEdge(a, b mesh.VertexID) (bool, error) {
	va, ok := s.mesh.Vertex(a)
	if !ok {
		return false, fmt.Errorf("session: vertex %s does not exist", a)
	}
	vb, ok := s.mesh.Vertex(b)
	if !ok {
		return false, fmt.Errorf("session: vertex %s does not exist", b)
	}
	if len(s.selection) > axiom.Arity(s.axiom)-2 {
		return false, nil
	}
	from := s.State()
	s.selection = append(s.selection, selected{vertex: a, at: va.Point()}, selected{vertex: b, at: vb.Point()})
	s.changed()
	s.transition(from, "select edge")
	return true, nil
}

// SelectPoint appends a free point, such as a construction point that is
// not a vertex. It reports whether there was room.
func (s *Session) SelectPoint(p kernel.Point) bool {
	if len(s.selection) >= axiom.Arity(s.axiom) {
		return false
	}
	from := s.State()
	s.selection = append(s.selection, selected{at: p})
	s.changed()
	s.transition(from, "select point")
	return true
}

// Candidates returns the fold lines for the current selection. Only axiom 6
// can produce more than one.
func (s *Session) Candidates() ([]kernel.Line, error) {
	if len(s.selection) != axiom.Arity(s.axiom) {
		return nil, ErrNotReady
	}
	if s.candidates == nil {
		lines, err := axiom.Solve(s.axiom, s.Selection())
		if err != nil {
			return nil, err
		}
		s.candidates = lines
	}
	return slices.Clone(s.candidates), nil
}

// ChooseCandidate picks one of the axiom 6 candidates.
func (s *Session) ChooseCandidate(i int) error {
	if _, ok := s.axiom.(axiom.TwoPointsToTwoLines); !ok {
		return fmt.Errorf("session: axiom %d has a single fold line", s.axiom.Number())
	}
	lines, err := s.Candidates()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(lines) {
		return fmt.Errorf("session: candidate %d out of range, have %d", i, len(lines))
	}
	from := s.State()
	s.chosen = i
	s.transition(from, "choose candidate")
	return nil
}

// FoldLine returns the line the next fold would use.
func (s *Session) FoldLine() (kernel.Line, error) {
	lines, err := s.Candidates()
	if err != nil {
		return kernel.Line{}, err
	}
	if _, ok := s.axiom.(axiom.TwoPointsToTwoLines); ok {
		if s.chosen < 0 {
			return kernel.Line{}, ErrNoCandidate
		}
		return lines[s.chosen], nil
	}
	return lines[0], nil
}

// FoldOption adjusts a single fold.
type FoldOption func(*fold.Request)

// WithMobilePoint makes the side of p move.
func WithMobilePoint(p kernel.Point) FoldOption {
	return func(r *fold.Request) { r.MobilePoint = &p }
}

// WithTopmostFace restricts the fold to the flap under face id.
func WithTopmostFace(id mesh.FaceID) FoldOption {
	return func(r *fold.Request) { r.TopmostFace = &id }
}

// Fold folds the paper along the current fold line. Without a mobile point
// the axiom's natural moving point is used. The selection is cleared on
// success and on failure; on failure the mesh is unchanged.
func (s *Session) Fold(dir fold.Direction, opts ...FoldOption) error {
	defer s.ClearSelection()

	line, err := s.FoldLine()
	if err != nil {
		return err
	}
	pts := s.Selection()
	req := fold.Request{Line: line, Direction: dir}
	for _, opt := range opts {
		opt(&req)
	}
	if req.MobilePoint == nil {
		if p, ok := axiom.DefaultMobilePoint(s.axiom, pts, line); ok {
			req.MobilePoint = &p
		}
	}
	if _, ok := s.axiom.(axiom.ThroughPoints); ok {
		req.AlongPoints = pts
	}
	return s.apply(req)
}

// FoldAlong folds along an explicit line, bypassing the axiom and the
// selection. Without a mobile point the side holding less paper moves. The
// selection is cleared.
func (s *Session) FoldAlong(line kernel.Line, dir fold.Direction, opts ...FoldOption) error {
	defer s.ClearSelection()
	req := fold.Request{Line: line, Direction: dir}
	for _, opt := range opts {
		opt(&req)
	}
	return s.apply(req)
}

func (s *Session) apply(req fold.Request) error {
	out, err := s.engine.Fold(s.mesh, req)
	if err != nil {
		return err
	}
	s.mesh = out
	return nil
}

// Pinch folds the flap under p: p is the mobile point and the topmost face
// containing it is the flap hint.
func (s *Session) Pinch(dir fold.Direction, p kernel.Point) error {
	opts := []FoldOption{WithMobilePoint(p)}
	if id, ok := stack.TopmostAt(s.mesh, p); ok {
		opts = append(opts, WithTopmostFace(id))
	}
	return s.Fold(dir, opts...)
}

// Flip turns the paper over and clears the selection.
func (s *Session) Flip() {
	s.mesh = s.engine.Flip(s.mesh)
	s.ClearSelection()
}

// AddPoint places a manual vertex at p.
func (s *Session) AddPoint(p kernel.Point) mesh.VertexID {
	m, id := s.mesh.WithPoint(s.gen, p)
	s.mesh = m
	return id
}

// Replace swaps in a mesh from outside, such as an undo history entry, and
// clears the selection. Later ids never collide with ids in m.
func (s *Session) Replace(m *mesh.Mesh) error {
	if m == nil {
		return errors.New("session: nil mesh")
	}
	if res := mesh.ValidateAll(m); len(res.Errors) > 0 {
		return fmt.Errorf("session: replace: %w", res.Errors[0])
	}
	s.gen.Observe(m)
	s.mesh = m
	s.ClearSelection()
	return nil
}
