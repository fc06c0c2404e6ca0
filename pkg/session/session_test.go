package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wartets/Origami/pkg/axiom"
	"github.com/Wartets/Origami/pkg/config"
	"github.com/Wartets/Origami/pkg/fold"
	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// Corner ids of the fresh unit square, counter-clockwise from the origin.
const (
	c00 = mesh.VertexID(1)
	c10 = mesh.VertexID(2)
	c11 = mesh.VertexID(3)
	c01 = mesh.VertexID(4)
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(config.Default())
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newSession(t)
	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1, s.Mesh().FaceCount())
	assert.Equal(t, 1, s.Axiom().Number())

	cfg := config.Default()
	cfg.Paper.Width = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestSelectVertexToggles(t *testing.T) {
	s := newSession(t)
	s.SetAxiom(axiom.PointToPoint{})

	ok, err := s.SelectVertex(c00)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Selecting, s.State())

	ok, err = s.SelectVertex(c10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Ready, s.State())
	assert.Equal(t, []kernel.Point{kernel.Pt(0, 0), kernel.Pt(1, 0)}, s.Selection())

	ok, err = s.SelectVertex(c11)
	require.NoError(t, err)
	assert.False(t, ok, "selection is full")

	ok, err = s.SelectVertex(c00)
	require.NoError(t, err)
	assert.False(t, ok, "second click deselects")
	assert.Equal(t, Selecting, s.State())

	_, err = s.SelectVertex(999)
	assert.Error(t, err)
}

func TestSelectEdge(t *testing.T) {
	s := newSession(t)
	s.SetAxiom(axiom.LineToLine{})

	ok, err := s.SelectEdge(c00, c10)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SelectEdge(c00, c01)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Ready, s.State())

	ok, err = s.SelectEdge(c10, c11)
	require.NoError(t, err)
	assert.False(t, ok)

	line, err := s.FoldLine()
	require.NoError(t, err)
	assert.True(t, line.Contains(kernel.Pt(0.5, 0.5)), "bisector of two sides meeting at the origin is the diagonal")
}

func TestFoldClearsSelection(t *testing.T) {
	s := newSession(t)
	s.SetAxiom(axiom.PointToPoint{})
	_, err := s.FoldLine()
	assert.ErrorIs(t, err, ErrNotReady)

	_, _ = s.SelectVertex(c00)
	_, _ = s.SelectVertex(c10)
	require.NoError(t, s.Fold(fold.Valley))
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 2, s.Mesh().FaceCount())
	assert.Len(t, s.Mesh().Creases(), 1)

	// Axiom 1 along the outline edge at x=1 is rejected; the selection
	// still clears.
	before := s.Mesh()
	s.SetAxiom(axiom.ThroughPoints{})
	s.SelectPoint(kernel.Pt(1, 0))
	s.SelectPoint(kernel.Pt(1, 1))
	err = s.Fold(fold.Valley)
	assert.ErrorIs(t, err, kernel.ErrInvalidFold)
	assert.Equal(t, Idle, s.State())
	assert.Same(t, before, s.Mesh())

	// Too few points.
	s.SelectPoint(kernel.Pt(0.5, 0))
	assert.ErrorIs(t, s.Fold(fold.Valley), ErrNotReady)
	assert.Equal(t, Idle, s.State())
}

func TestCandidateSelection(t *testing.T) {
	s := newSession(t)
	s.SetAxiom(axiom.TwoPointsToTwoLines{})
	for _, p := range []kernel.Point{
		kernel.Pt(0, 1), kernel.Pt(1, 0),
		kernel.Pt(0, 0), kernel.Pt(1, 0),
		kernel.Pt(0, 0), kernel.Pt(0, 1),
	} {
		require.True(t, s.SelectPoint(p))
	}
	assert.False(t, s.SelectPoint(kernel.Pt(0.5, 0.5)))
	assert.Equal(t, Ready, s.State())

	lines, err := s.Candidates()
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	_, err = s.FoldLine()
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.Error(t, s.ChooseCandidate(len(lines)))

	require.NoError(t, s.ChooseCandidate(0))
	assert.Equal(t, CandidateSelected, s.State())
	line, err := s.FoldLine()
	require.NoError(t, err)
	assert.Equal(t, lines[0], line)

	_ = s.Fold(fold.Valley)
	assert.Equal(t, Idle, s.State())

	s.SetAxiom(axiom.PointToPoint{})
	assert.Error(t, s.ChooseCandidate(0))
}

func TestPinch(t *testing.T) {
	s := newSession(t)
	s.SetAxiom(axiom.PointToPoint{})
	_, _ = s.SelectVertex(c00)
	_, _ = s.SelectVertex(c10)
	require.NoError(t, s.Pinch(fold.Mountain, kernel.Pt(0.1, 0.5)))

	lowest, highest := s.Mesh().LayerRange()
	assert.Equal(t, -1, lowest)
	assert.Equal(t, 0, highest)
}

func TestFlipAndPoints(t *testing.T) {
	s := newSession(t)
	id := s.AddPoint(kernel.Pt(0.25, 0.5))
	v, ok := s.Mesh().Vertex(id)
	require.True(t, ok)
	assert.True(t, v.Manual)

	_, _ = s.SelectVertex(c00)
	s.Flip()
	assert.Equal(t, Idle, s.State())
	v, ok = s.Mesh().Vertex(id)
	require.True(t, ok)
	assert.InDelta(t, 0.75, v.X, 1e-12)
	assert.False(t, s.Mesh().Faces()[0].Recto)
}

func TestReplace(t *testing.T) {
	s := newSession(t)
	first := s.Mesh()
	s.SetAxiom(axiom.PointToPoint{})
	_, _ = s.SelectVertex(c00)
	_, _ = s.SelectVertex(c10)
	require.NoError(t, s.Fold(fold.Valley))

	other := mesh.NewIDGen()
	for range 50 {
		other.Vertex()
	}
	m, err := mesh.NewSquare(other, 2)
	require.NoError(t, err)

	require.NoError(t, s.Replace(m))
	assert.Same(t, m, s.Mesh())
	id := s.AddPoint(kernel.Pt(1, 1))
	assert.Greater(t, uint64(id), uint64(55), "ids continue past the replaced mesh")

	require.NoError(t, s.Replace(first))
	assert.Error(t, s.Replace(nil))
}

func TestFoldAlong(t *testing.T) {
	s := newSession(t)
	_, _ = s.SelectVertex(c00)
	line := kernel.Line{P1: kernel.Pt(0.25, 0), P2: kernel.Pt(0.25, 1)}
	require.NoError(t, s.FoldAlong(line, fold.Valley))
	assert.Equal(t, Idle, s.State())
	_, highest := s.Mesh().LayerRange()
	assert.Equal(t, 1, highest)

	err := s.FoldAlong(kernel.Line{P1: kernel.Pt(5, 0), P2: kernel.Pt(5, 1)}, fold.Valley)
	assert.ErrorIs(t, err, kernel.ErrInvalidFold)
}
