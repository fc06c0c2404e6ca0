package fold

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// piece is a face after splitting. Pieces of a split face get fresh ids
// and remember their parent for flap queries; an unsplit face is its own
// parent and keeps its id and vertex slice.
type piece struct {
	id     mesh.FaceID
	parent mesh.FaceID
	layer  int
	recto  bool
	verts  []mesh.VertexID
	side   int // +1 or -1 of the fold line; 0 only for degenerate faces
	split  bool
}

// splitter cuts every face of a mesh along the fold line.
type splitter struct {
	m       *mesh.Mesh
	line    kernel.Line
	gen     *mesh.IDGen
	areaTol float64
	weld    *welder
}

func newSplitter(m *mesh.Mesh, line kernel.Line, gen *mesh.IDGen, areaTol float64) *splitter {
	return &splitter{
		m:       m,
		line:    line,
		gen:     gen,
		areaTol: areaTol,
		weld:    newWelder(gen),
	}
}

// pos returns the position of an existing or freshly welded vertex.
func (s *splitter) pos(id mesh.VertexID) kernel.Point {
	if v, ok := s.m.Vertex(id); ok {
		return v.Point()
	}
	return s.weld.pos[id]
}

func (s *splitter) polygon(ids []mesh.VertexID) []kernel.Point {
	out := make([]kernel.Point, len(ids))
	for i, id := range ids {
		out[i] = s.pos(id)
	}
	return out
}

func (s *splitter) split() []piece {
	var out []piece
	for _, f := range s.m.Faces() {
		out = append(out, s.splitFace(f)...)
	}
	return out
}

func (s *splitter) splitFace(f mesh.Face) []piece {
	sides := make([]int, len(f.Vertices))
	var pos, neg bool
	for i, id := range f.Vertices {
		sides[i] = s.line.SideOf(s.pos(id))
		pos = pos || sides[i] > 0
		neg = neg || sides[i] < 0
	}

	whole := piece{
		id: f.ID, parent: f.ID, layer: f.Layer, recto: f.Recto, verts: f.Vertices,
	}
	switch {
	case pos && !neg:
		whole.side = 1
		return []piece{whole}
	case neg && !pos:
		whole.side = -1
		return []piece{whole}
	case !pos && !neg:
		return []piece{whole}
	}

	// Walk the boundary. Vertices on the line go to both halves; each
	// crossing edge contributes one welded intersection to both.
	var left, right []mesh.VertexID
	n := len(f.Vertices)
	for i, id := range f.Vertices {
		j := (i + 1) % n
		if sides[i] >= 0 {
			left = append(left, id)
		}
		if sides[i] <= 0 {
			right = append(right, id)
		}
		if sides[i]*sides[j] < 0 {
			a, b := s.pos(id), s.pos(f.Vertices[j])
			da, db := s.line.Distance(a), s.line.Distance(b)
			x := a.Add(b.Sub(a).MulScalar(da / (da - db)))
			xid := s.weld.vertex(x)
			left = append(left, xid)
			right = append(right, xid)
		}
	}

	winding := kernel.PolygonArea(s.m.Polygon(f))
	var out []piece
	for _, half := range []struct {
		verts []mesh.VertexID
		side  int
	}{{left, 1}, {right, -1}} {
		verts := s.order(half.verts, winding)
		if len(verts) < 3 || kernel.Area(s.polygon(verts)) < s.areaTol {
			continue
		}
		out = append(out, piece{
			id:     s.gen.Face(),
			parent: f.ID,
			layer:  f.Layer,
			recto:  f.Recto,
			verts:  verts,
			side:   half.side,
			split:  true,
		})
	}
	return out
}

// order sorts ids angularly around their centroid so the piece is a simple
// polygon, then matches the parent's winding.
func (s *splitter) order(ids []mesh.VertexID, winding float64) []mesh.VertexID {
	ids = slices.Compact(ids)
	if len(ids) > 1 && ids[0] == ids[len(ids)-1] {
		ids = ids[:len(ids)-1]
	}
	poly := s.polygon(ids)
	idx := kernel.SortAngular(poly)
	out := make([]mesh.VertexID, len(idx))
	sorted := make([]kernel.Point, len(idx))
	for i, k := range idx {
		out[i] = ids[k]
		sorted[i] = poly[k]
	}
	if (kernel.PolygonArea(sorted) < 0) != (winding < 0) {
		slices.Reverse(out)
	}
	return out
}

// sideAreas sums piece areas per side of the fold line.
func sideAreas(s *splitter, pieces []piece) map[int]float64 {
	areas := map[int]float64{1: 0, -1: 0}
	for _, p := range pieces {
		if p.side != 0 {
			areas[p.side] += kernel.Area(s.polygon(p.verts))
		}
	}
	return areas
}

// ---------------------------------------------------------------------------
// Intersection welding
// ---------------------------------------------------------------------------

// weldEntry is an intersection vertex stored in the R-tree.
type weldEntry struct {
	id mesh.VertexID
	p  kernel.Point
}

func (w *weldEntry) Bounds() rtreego.Rect {
	return rtreego.Point{w.p.X, w.p.Y}.ToRect(kernel.Epsilon)
}

// welder hands out one vertex per intersection point: points within
// Epsilon of an intersection created earlier in the same fold reuse its
// vertex, so neighbouring faces split along a shared edge stay connected.
type welder struct {
	gen  *mesh.IDGen
	tree *rtreego.Rtree
	pos  map[mesh.VertexID]kernel.Point
	made []mesh.VertexID
}

func newWelder(gen *mesh.IDGen) *welder {
	return &welder{
		gen:  gen,
		tree: rtreego.NewTree(2, 4, 16),
		pos:  make(map[mesh.VertexID]kernel.Point),
	}
}

func (w *welder) vertex(p kernel.Point) mesh.VertexID {
	query := rtreego.Point{p.X, p.Y}.ToRect(kernel.Epsilon)
	for _, hit := range w.tree.SearchIntersect(query) {
		e := hit.(*weldEntry)
		if kernel.Near(e.p, p) {
			return e.id
		}
	}
	e := &weldEntry{id: w.gen.Vertex(), p: p}
	w.tree.Insert(e)
	w.pos[e.id] = p
	w.made = append(w.made, e.id)
	return e.id
}
