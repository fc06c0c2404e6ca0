package fold

import (
	"math"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wartets/Origami/pkg/axiom"
	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

func newSquare(t *testing.T) (*mesh.Mesh, *Engine) {
	t.Helper()
	gen := mesh.NewIDGen()
	m, err := mesh.NewSquare(gen, 1)
	require.NoError(t, err)
	return m, New(gen)
}

func ptr[T any](v T) *T { return &v }

func vertical(x float64) kernel.Line {
	return kernel.Line{P1: kernel.Pt(x, 0), P2: kernel.Pt(x, 1)}
}

func horizontal(y float64) kernel.Line {
	return kernel.Line{P1: kernel.Pt(0, y), P2: kernel.Pt(1, y)}
}

func layers(m *mesh.Mesh) []int {
	ls := lo.Uniq(lo.Map(m.Faces(), func(f mesh.Face, _ int) int { return f.Layer }))
	slices.Sort(ls)
	return ls
}

func facesOnLayer(m *mesh.Mesh, layer int) []mesh.Face {
	return lo.Filter(m.Faces(), func(f mesh.Face, _ int) bool { return f.Layer == layer })
}

func verticesAt(m *mesh.Mesh, p kernel.Point) []mesh.Vertex {
	return lo.Filter(m.Vertices(), func(v mesh.Vertex, _ int) bool { return kernel.Near(v.Point(), p) })
}

func snapshot(m *mesh.Mesh) *mesh.Mesh {
	return mesh.From(m).Build()
}

// halfFold is the fold of axiom 2 mapping (0,0) onto (1,0).
func halfFold(t *testing.T) kernel.Line {
	t.Helper()
	lines, err := axiom.Solve(axiom.PointToPoint{}, []kernel.Point{kernel.Pt(0, 0), kernel.Pt(1, 0)})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	return lines[0]
}

func TestDirection(t *testing.T) {
	d, err := ParseDirection("Mountain")
	require.NoError(t, err)
	assert.Equal(t, Mountain, d)
	d, err = ParseDirection("v")
	require.NoError(t, err)
	assert.Equal(t, Valley, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
	assert.Equal(t, "valley", Valley.String())
}

func TestFoldHalf(t *testing.T) {
	m, e := newSquare(t)
	before := snapshot(m)

	out, err := e.Fold(m, Request{
		Line:        halfFold(t),
		Direction:   Valley,
		MobilePoint: ptr(kernel.Pt(0, 0)),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, out.FaceCount())
	assert.Equal(t, []int{0, 1}, layers(out))
	assert.Len(t, out.Creases(), 1)
	assert.Equal(t, 6, out.VertexCount())
	assert.Len(t, verticesAt(out, kernel.Pt(0.5, 0)), 1)
	assert.Len(t, verticesAt(out, kernel.Pt(0.5, 1)), 1)

	flap := facesOnLayer(out, 1)
	require.Len(t, flap, 1)
	assert.False(t, flap[0].Recto)
	for _, p := range out.Polygon(flap[0]) {
		assert.GreaterOrEqual(t, p.X, 0.5-kernel.Epsilon)
	}
	static := facesOnLayer(out, 0)
	require.Len(t, static, 1)
	assert.True(t, static[0].Recto)

	assert.InDelta(t, 1, out.Area(), 1e-9)
	assert.Empty(t, mesh.ValidateAll(out).Errors)
	assert.True(t, m.Equal(before), "input mesh untouched")
}

func TestFoldMissesPaper(t *testing.T) {
	for _, tc := range []struct {
		name string
		req  Request
	}{
		{"no mobile point", Request{Line: vertical(3)}},
		{"mobile point on paper", Request{Line: vertical(3), MobilePoint: ptr(kernel.Pt(0.5, 0.5))}},
		{"mobile point off paper", Request{Line: vertical(-2), MobilePoint: ptr(kernel.Pt(-3, 0))}},
		{"edge without mobile point", Request{Line: vertical(1)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, e := newSquare(t)
			before := snapshot(m)
			out, err := e.Fold(m, tc.req)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, kernel.ErrInvalidFold)
			assert.True(t, m.Equal(before))
		})
	}
}

func TestFoldTwiceWithFlapHint(t *testing.T) {
	m, e := newSquare(t)

	m1, err := e.Fold(m, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0, 0))})
	require.NoError(t, err)
	flap := facesOnLayer(m1, 1)
	require.Len(t, flap, 1)
	flapID := flap[0].ID
	staticID := facesOnLayer(m1, 0)[0].ID

	// Every face now lies right of x=0.5, so without a hint the whole
	// paper would move.
	_, err = e.Fold(m1, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0.75, 0.5))})
	assert.ErrorIs(t, err, kernel.ErrInvalidFold)

	m2, err := e.Fold(m1, Request{
		Line:        vertical(0.5),
		MobilePoint: ptr(kernel.Pt(0.75, 0.5)),
		TopmostFace: ptr(flapID),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, layers(m2))
	assert.Len(t, m2.Creases(), 2)
	back, ok := m2.Face(flapID)
	require.True(t, ok, "unsplit flap keeps its id")
	assert.True(t, back.Recto)
	for _, p := range m2.Polygon(back) {
		assert.LessOrEqual(t, p.X, 0.5+kernel.Epsilon)
	}
	static, ok := m2.Face(staticID)
	require.True(t, ok)
	assert.Equal(t, 0, static.Layer)

	m3, err := e.Fold(m2, Request{
		Line:        horizontal(0.5),
		MobilePoint: ptr(kernel.Pt(0.25, 0.75)),
		TopmostFace: ptr(flapID),
	})
	require.NoError(t, err)
	_, highest := m3.LayerRange()
	assert.Equal(t, 3, highest)
	assert.Len(t, m3.Creases(), 3)
	assert.Len(t, facesOnLayer(m3, 0), 2, "static half split but not moved")
	assert.Len(t, facesOnLayer(m3, 2), 1)
	assert.Len(t, facesOnLayer(m3, 3), 1)
	assert.InDelta(t, 1, m3.Area(), 1e-9)
	assert.Empty(t, mesh.ValidateAll(m3).Errors)

	// One vertex per crossing point, shared by both faces cut there.
	assert.Len(t, verticesAt(m3, kernel.Pt(0.5, 0.5)), 1)
	assert.Len(t, verticesAt(m3, kernel.Pt(0, 0.5)), 1)
	assert.Len(t, verticesAt(m3, kernel.Pt(1, 0.5)), 1)
}

func TestFoldAreaHeuristic(t *testing.T) {
	gen := mesh.NewIDGen()
	m, err := mesh.NewRectangle(gen, 2, 1)
	require.NoError(t, err)
	e := New(gen)

	out, err := e.Fold(m, Request{Line: vertical(0.5)})
	require.NoError(t, err)
	flap := facesOnLayer(out, 1)
	require.Len(t, flap, 1)
	assert.InDelta(t, 0.5, kernel.Area(out.Polygon(flap[0])), 1e-9)
	for _, p := range out.Polygon(flap[0]) {
		assert.GreaterOrEqual(t, p.X, 0.5-kernel.Epsilon)
	}
	assert.InDelta(t, 2, out.Area(), 1e-9)
}

func TestFoldHintWithoutMobilePointIgnored(t *testing.T) {
	m, e := newSquare(t)
	face := m.Faces()[0].ID
	out, err := e.Fold(m, Request{Line: vertical(0.25), TopmostFace: ptr(face)})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, layers(out))
}

func TestFoldUnknownHint(t *testing.T) {
	m, e := newSquare(t)
	_, err := e.Fold(m, Request{
		Line:        vertical(0.5),
		MobilePoint: ptr(kernel.Pt(0, 0)),
		TopmostFace: ptr(mesh.FaceID(999)),
	})
	assert.ErrorIs(t, err, kernel.ErrInvalidFold)
}

func TestFoldMountain(t *testing.T) {
	m, e := newSquare(t)
	out, err := e.Fold(m, Request{Line: vertical(0.5), Direction: Mountain, MobilePoint: ptr(kernel.Pt(0, 0))})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 0}, layers(out))
	flap := facesOnLayer(out, -1)
	require.Len(t, flap, 1)
	assert.False(t, flap[0].Recto)
}

func TestFoldRejections(t *testing.T) {
	m, e := newSquare(t)

	_, err := e.Fold(m, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0.5, 0.3))})
	assert.ErrorIs(t, err, kernel.ErrInvalidFold, "mobile point on the line")

	_, err = e.Fold(m, Request{Line: kernel.Line{P1: kernel.Pt(1, 1), P2: kernel.Pt(1, 1)}})
	assert.ErrorIs(t, err, kernel.ErrGeometryDegenerate)

	_, err = e.Fold(mesh.NewBuilder().Build(), Request{Line: vertical(0.5)})
	assert.ErrorIs(t, err, kernel.ErrInvalidFold, "empty paper")

	// Axiom 1 along an outline edge is a no-op fold.
	_, err = e.Fold(m, Request{
		Line:        horizontal(0),
		AlongPoints: []kernel.Point{kernel.Pt(1, 0), kernel.Pt(0, 0)},
	})
	require.ErrorIs(t, err, kernel.ErrInvalidFold)
	assert.Contains(t, err.Error(), "existing edge")
}

func TestFoldThroughBranchingVertex(t *testing.T) {
	b := mesh.NewBuilder()
	pts := []kernel.Point{kernel.Pt(0, 0), kernel.Pt(1, 0), kernel.Pt(1, 1), kernel.Pt(0, 1), kernel.Pt(0.5, 0.5)}
	for i, p := range pts {
		b.AddVertex(mesh.Vertex{ID: mesh.VertexID(i + 1), X: p.X, Y: p.Y})
	}
	b.AddFace(mesh.Face{ID: 10, Vertices: []mesh.VertexID{1, 2, 5}, Recto: true})
	b.AddFace(mesh.Face{ID: 11, Vertices: []mesh.VertexID{2, 3, 4, 5}, Recto: true})
	b.AddFace(mesh.Face{ID: 12, Vertices: []mesh.VertexID{1, 5, 4}, Recto: true})
	m := b.Build()
	before := snapshot(m)

	gen := mesh.NewIDGen()
	gen.Observe(m)
	_, err := New(gen).Fold(m, Request{Line: horizontal(0.5), MobilePoint: ptr(kernel.Pt(0.5, 0.9))})
	require.ErrorIs(t, err, kernel.ErrInvalidFold)
	assert.Contains(t, err.Error(), "edges meet")
	assert.True(t, m.Equal(before))
}

func TestFoldThroughCreaseJunction(t *testing.T) {
	m, e := newSquare(t)
	m = mesh.From(m).
		AddCrease(mesh.Crease{P1: kernel.Pt(0.5, -10), P2: kernel.Pt(0.5, 10)}).
		AddCrease(mesh.Crease{P1: kernel.Pt(-10, 0.5), P2: kernel.Pt(10, 0.5)}).
		Build()

	_, err := e.Fold(m, Request{Line: kernel.Line{P1: kernel.Pt(0, 0), P2: kernel.Pt(1, 1)}, MobilePoint: ptr(kernel.Pt(0, 1))})
	require.ErrorIs(t, err, kernel.ErrInvalidFold)
	assert.Contains(t, err.Error(), "crease junction")

	// A line clear of the junction is fine.
	_, err = e.Fold(m, Request{Line: vertical(0.25), MobilePoint: ptr(kernel.Pt(0, 0))})
	assert.NoError(t, err)
}

func TestFoldCarriesFreePoints(t *testing.T) {
	m, e := newSquare(t)
	m, left := m.WithPoint(e.gen, kernel.Pt(0.25, 0.5))
	m, right := m.WithPoint(e.gen, kernel.Pt(0.75, 0.5))

	out, err := e.Fold(m, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0, 0))})
	require.NoError(t, err)

	v, ok := out.Vertex(left)
	require.True(t, ok)
	assert.True(t, v.Manual)
	assert.InDelta(t, 0.75, v.X, 1e-12)
	v, ok = out.Vertex(right)
	require.True(t, ok)
	assert.InDelta(t, 0.75, v.X, 1e-12)
}

func TestCreaseSpan(t *testing.T) {
	gen := mesh.NewIDGen()
	m, err := mesh.NewSquare(gen, 1)
	require.NoError(t, err)

	out, err := New(gen, WithCreaseSpan(10)).Fold(m, Request{Line: vertical(0.5)})
	require.NoError(t, err)
	c := out.Creases()[0]
	assert.InDelta(t, 10*m.Diagonal(), kernel.Dist(c.P1, c.P2), 1e-9)
	assert.InDelta(t, 0.5, c.P1.X, 1e-12)
	assert.InDelta(t, 0.5, c.P2.X, 1e-12)
}

func TestFlip(t *testing.T) {
	m, e := newSquare(t)
	folded, err := e.Fold(m, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0, 0))})
	require.NoError(t, err)

	flipped := e.Flip(folded)
	require.Equal(t, folded.FaceCount(), flipped.FaceCount())
	for _, f := range folded.Faces() {
		g, ok := flipped.Face(f.ID)
		require.True(t, ok)
		assert.Equal(t, 1-f.Layer, g.Layer)
		assert.Equal(t, !f.Recto, g.Recto)
		want := slices.Clone(f.Vertices)
		slices.Reverse(want)
		assert.Equal(t, want, g.Vertices)
	}

	// The folded paper spans x in [0.5, 1]; the mirror axis is x=0.75.
	for _, v := range folded.Vertices() {
		w, ok := flipped.Vertex(v.ID)
		require.True(t, ok)
		assert.InDelta(t, 1.5-v.X, w.X, 1e-12)
		assert.InDelta(t, v.Y, w.Y, 1e-12)
	}
	c := flipped.Creases()[0]
	assert.InDelta(t, 1, c.P1.X, 1e-9)
	assert.InDelta(t, 1, c.P2.X, 1e-9)

	assert.True(t, e.Flip(flipped).Equal(folded), "flipping twice restores the paper")
	assert.Equal(t, 0, e.Flip(mesh.NewBuilder().Build()).FaceCount())
}

// faceSpanning returns the one face whose x extent is [minX, maxX].
func faceSpanning(t *testing.T, m *mesh.Mesh, minX, maxX float64) mesh.Face {
	t.Helper()
	found := lo.Filter(m.Faces(), func(f mesh.Face, _ int) bool {
		b := kernel.Bounds(m.Polygon(f))
		return math.Abs(b.Min.X-minX) < 1e-9 && math.Abs(b.Max.X-maxX) < 1e-9
	})
	require.Len(t, found, 1, "faces spanning x in [%g, %g]", minX, maxX)
	return found[0]
}

func TestFoldLayersAgainstCollisions(t *testing.T) {
	gen := mesh.NewIDGen()
	m, err := mesh.NewRectangle(gen, 2, 1)
	require.NoError(t, err)
	e := New(gen)

	m1, err := e.Fold(m, Request{Line: vertical(1.5), MobilePoint: ptr(kernel.Pt(2, 0))})
	require.NoError(t, err)
	right := faceSpanning(t, m1, 1, 1.5)
	assert.Equal(t, 1, right.Layer)

	// The left strip lands on [0.5, 1], beside the right flap but not on it,
	// so it goes one above the layer it covers rather than above everything.
	m2, err := e.Fold(m1, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0, 0))})
	require.NoError(t, err)
	require.Equal(t, 3, m2.FaceCount())

	base := faceSpanning(t, m2, 0.5, 1.5)
	assert.Equal(t, 0, base.Layer)
	assert.True(t, base.Recto)

	left := faceSpanning(t, m2, 0.5, 1)
	assert.Equal(t, 1, left.Layer)
	assert.False(t, left.Recto)

	kept, ok := m2.Face(right.ID)
	require.True(t, ok, "untouched flap keeps its id")
	assert.Equal(t, 1, kept.Layer)
	assert.False(t, kept.Recto)

	assert.InDelta(t, 2, m2.Area(), 1e-9)
}

func TestFoldPreservesFlapOrder(t *testing.T) {
	m, e := newSquare(t)

	m1, err := e.Fold(m, Request{Line: vertical(0.5), MobilePoint: ptr(kernel.Pt(0, 0))})
	require.NoError(t, err)

	// Both layers are cut and their upper halves move together.
	m2, err := e.Fold(m1, Request{Line: horizontal(0.5), MobilePoint: ptr(kernel.Pt(0.75, 0.75))})
	require.NoError(t, err)
	require.Equal(t, 4, m2.FaceCount())
	assert.Equal(t, []int{0, 1, 2, 3}, layers(m2))

	want := map[int]bool{
		0: true,  // lower half of the static paper
		1: false, // lower half of the first flap
		2: false, // upper half of the static paper, turned over
		3: true,  // upper half of the first flap, turned back
	}
	for layer, recto := range want {
		faces := facesOnLayer(m2, layer)
		require.Len(t, faces, 1, "layer %d", layer)
		assert.Equal(t, recto, faces[0].Recto, "layer %d", layer)
		for _, p := range m2.Polygon(faces[0]) {
			assert.LessOrEqual(t, p.Y, 0.5+kernel.Epsilon, "layer %d", layer)
			assert.GreaterOrEqual(t, p.X, 0.5-kernel.Epsilon, "layer %d", layer)
		}
	}
	assert.InDelta(t, 1, m2.Area(), 1e-9)
}
