package fold

import (
	"slices"

	"github.com/samber/lo"

	"github.com/Wartets/Origami/pkg/kernel"
	"github.com/Wartets/Origami/pkg/mesh"
)

// reflector mirrors the mobile pieces across the fold line. A reflected
// vertex keeps its id unless a piece that stays put also uses it; then the
// mobile copy gets a fresh id so no id has two positions.
type reflector struct {
	s      *splitter
	pieces []piece
	mobile map[int]bool
	side   int

	moved  map[mesh.VertexID]kernel.Point  // new position by id
	origin map[mesh.VertexID]mesh.VertexID // fresh id -> id it copies
}

func newReflector(s *splitter, pieces []piece, mobile []int) *reflector {
	r := &reflector{
		s:      s,
		pieces: pieces,
		mobile: make(map[int]bool, len(mobile)),
		side:   pieces[mobile[0]].side,
		moved:  make(map[mesh.VertexID]kernel.Point),
		origin: make(map[mesh.VertexID]mesh.VertexID),
	}
	for _, i := range mobile {
		r.mobile[i] = true
	}
	return r
}

func (r *reflector) reflect() {
	staticUse := make(map[mesh.VertexID]bool)
	for i, p := range r.pieces {
		if r.mobile[i] {
			continue
		}
		for _, id := range p.verts {
			staticUse[id] = true
		}
	}

	fresh := make(map[mesh.VertexID]mesh.VertexID)
	for i := range r.pieces {
		if !r.mobile[i] {
			continue
		}
		p := &r.pieces[i]
		verts := p.verts
		copied := false
		for k, id := range p.verts {
			at := r.s.pos(id)
			if r.s.line.Contains(at) {
				continue
			}
			nid := id
			if staticUse[id] {
				if _, ok := fresh[id]; !ok {
					fresh[id] = r.s.gen.Vertex()
					r.origin[fresh[id]] = id
				}
				nid = fresh[id]
			}
			r.moved[nid] = kernel.ReflectAcross(at, r.s.line)
			if nid != id {
				if !copied {
					verts = slices.Clone(p.verts)
					copied = true
				}
				verts[k] = nid
			}
		}
		// Winding is kept as is; only the surface flag flips.
		p.verts = verts
		p.recto = !p.recto
	}
}

// pos returns the post-fold position of a vertex.
func (r *reflector) pos(id mesh.VertexID) kernel.Point {
	if p, ok := r.moved[id]; ok {
		return p
	}
	return r.s.pos(id)
}

func (r *reflector) polygon(p piece) []kernel.Point {
	return lo.Map(p.verts, func(id mesh.VertexID, _ int) kernel.Point { return r.pos(id) })
}

// relayer assigns final layers to the mobile pieces. The mobile set keeps
// its internal order; its base sits just above (valley) or below
// (mountain) the static layers it now overlaps, or beyond the whole stack
// when it overlaps nothing.
func relayer(m *mesh.Mesh, r *reflector, dir Direction) {
	var collided []int
	for i, mp := range r.pieces {
		if !r.mobile[i] {
			continue
		}
		mpoly := r.polygon(mp)
		for j, sp := range r.pieces {
			if r.mobile[j] {
				continue
			}
			if kernel.PolygonsIntersect(mpoly, r.polygon(sp)) {
				collided = append(collided, sp.layer)
			}
		}
	}

	var before []int
	for i, p := range r.pieces {
		if r.mobile[i] {
			before = append(before, p.layer)
		}
	}
	before = lo.Uniq(before)
	slices.Sort(before)
	rank := make(map[int]int, len(before))
	for k, l := range before {
		rank[l] = k
	}

	lowest, highest := m.LayerRange()
	var base int
	switch dir {
	case Mountain:
		if len(collided) > 0 {
			base = lo.Min(collided) - 1
		} else {
			base = lowest - 1
		}
		base -= len(before) - 1
	default:
		if len(collided) > 0 {
			base = lo.Max(collided) + 1
		} else {
			base = highest + 1
		}
	}

	for i := range r.pieces {
		if r.mobile[i] {
			r.pieces[i].layer = base + rank[r.pieces[i].layer]
		}
	}
}

// build merges the pieces into a new mesh builder, carrying free manual
// vertices through the same side test.
func (r *reflector) build(m *mesh.Mesh) *mesh.Builder {
	b := mesh.NewBuilder().SetCreases(m.Creases())
	for _, p := range r.pieces {
		for _, id := range p.verts {
			at := r.pos(id)
			src := id
			if o, ok := r.origin[id]; ok {
				src = o
			}
			old, _ := m.Vertex(src)
			b.AddVertex(mesh.Vertex{ID: id, X: at.X, Y: at.Y, Manual: old.Manual})
		}
		b.AddFace(mesh.Face{ID: p.id, Vertices: p.verts, Layer: p.layer, Recto: p.recto})
	}
	for _, v := range m.FreeVertices() {
		at := v.Point()
		if r.s.line.SideOf(at) == r.side {
			at = kernel.ReflectAcross(at, r.s.line)
		}
		b.AddVertex(mesh.Vertex{ID: v.ID, X: at.X, Y: at.Y, Manual: true})
	}
	return b
}
