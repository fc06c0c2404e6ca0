package mesh

import (
	"maps"
	"slices"

	"github.com/deadsy/sdfx/sdf"
	"github.com/samber/lo"

	"github.com/Wartets/Origami/pkg/kernel"
)

// DefaultCreaseSpan is the length of a recorded crease as a multiple of the
// paper diagonal, long enough to behave like an infinite line.
const DefaultCreaseSpan = 1000.0

// ---------------------------------------------------------------------------
// Elements
// ---------------------------------------------------------------------------

// Vertex is a point of the paper. Manual vertices were placed by the user
// rather than produced by folding.
type Vertex struct {
	ID     VertexID
	X, Y   float64
	Manual bool
}

// Point returns the vertex position.
func (v Vertex) Point() kernel.Point {
	return kernel.Point{X: v.X, Y: v.Y}
}

// Face is a simple polygon region of paper. Vertices are in boundary order;
// a higher Layer is closer to the viewer. Recto is true while the front of
// the paper is visible.
type Face struct {
	ID       FaceID
	Vertices []VertexID
	Layer    int
	Recto    bool
}

// Crease records a fold line as a very long segment.
type Crease struct {
	P1, P2 kernel.Point
}

// Line returns the crease as an infinite line.
func (c Crease) Line() kernel.Line {
	return kernel.Line{P1: c.P1, P2: c.P2}
}

// Edge is an undirected boundary edge between two vertices, with A < B.
type Edge struct {
	A, B VertexID
}

func makeEdge(a, b VertexID) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// ---------------------------------------------------------------------------
// Mesh
// ---------------------------------------------------------------------------

// Mesh is an immutable paper state. The zero value is an empty mesh.
// Slices returned by accessors must not be modified; face vertex lists are
// shared between successive meshes.
type Mesh struct {
	vertices map[VertexID]Vertex
	order    []VertexID
	faces    []Face
	creases  []Crease
}

// Vertices returns all vertices ordered by id.
func (m *Mesh) Vertices() []Vertex {
	return lo.Map(m.order, func(id VertexID, _ int) Vertex { return m.vertices[id] })
}

// Vertex returns the vertex with the given id.
func (m *Mesh) Vertex(id VertexID) (Vertex, bool) {
	v, ok := m.vertices[id]
	return v, ok
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.order) }

// Faces returns the faces in construction order.
func (m *Mesh) Faces() []Face {
	return slices.Clone(m.faces)
}

// Face returns the face with the given id.
func (m *Mesh) Face(id FaceID) (Face, bool) {
	for _, f := range m.faces {
		if f.ID == id {
			return f, true
		}
	}
	return Face{}, false
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// Creases returns the recorded creases, oldest first.
func (m *Mesh) Creases() []Crease {
	return slices.Clone(m.creases)
}

// Polygon returns the positions of f's vertices. Ids missing from the mesh
// are skipped.
func (m *Mesh) Polygon(f Face) []kernel.Point {
	out := make([]kernel.Point, 0, len(f.Vertices))
	for _, id := range f.Vertices {
		if v, ok := m.vertices[id]; ok {
			out = append(out, v.Point())
		}
	}
	return out
}

// LayerRange returns the lowest and highest face layer, or 0, 0 for a mesh
// without faces.
func (m *Mesh) LayerRange() (lowest, highest int) {
	if len(m.faces) == 0 {
		return 0, 0
	}
	layers := lo.Map(m.faces, func(f Face, _ int) int { return f.Layer })
	return lo.Min(layers), lo.Max(layers)
}

// Extent returns the bounding box of every vertex.
func (m *Mesh) Extent() sdf.Box2 {
	return kernel.Bounds(lo.Map(m.Vertices(), func(v Vertex, _ int) kernel.Point { return v.Point() }))
}

// Diagonal returns the length of the extent's diagonal.
func (m *Mesh) Diagonal() float64 {
	return m.Extent().Size().Length()
}

// Area returns the summed unsigned area of all faces.
func (m *Mesh) Area() float64 {
	return lo.SumBy(m.faces, func(f Face) float64 { return kernel.Area(m.Polygon(f)) })
}

// Edges returns every distinct boundary edge of every face.
func (m *Mesh) Edges() []Edge {
	seen := make(map[Edge]bool)
	var out []Edge
	for _, f := range m.faces {
		n := len(f.Vertices)
		for i, a := range f.Vertices {
			e := makeEdge(a, f.Vertices[(i+1)%n])
			if e.A == e.B || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// Degree returns the number of distinct edge directions leaving the
// position of vertex id. Edges are matched by position rather than id, so
// stacked layers meeting at one point count once per direction.
func (m *Mesh) Degree(id VertexID) int {
	v, ok := m.vertices[id]
	if !ok {
		return 0
	}
	at := v.Point()
	var dirs []kernel.Point
	add := func(to kernel.Point) {
		d := to.Sub(at)
		l := d.Length()
		if l < kernel.Epsilon {
			return
		}
		d = d.MulScalar(1 / l)
		if lo.ContainsBy(dirs, func(o kernel.Point) bool { return kernel.Dist(o, d) < 1e-6 }) {
			return
		}
		dirs = append(dirs, d)
	}
	for _, e := range m.Edges() {
		a, b := m.vertices[e.A].Point(), m.vertices[e.B].Point()
		switch {
		case kernel.Near(a, at):
			add(b)
		case kernel.Near(b, at):
			add(a)
		}
	}
	return len(dirs)
}

// FreeVertices returns the manual vertices not used by any face.
func (m *Mesh) FreeVertices() []Vertex {
	used := m.usedVertices()
	return lo.Filter(m.Vertices(), func(v Vertex, _ int) bool { return v.Manual && !used[v.ID] })
}

func (m *Mesh) usedVertices() map[VertexID]bool {
	used := make(map[VertexID]bool, len(m.vertices))
	for _, f := range m.faces {
		for _, id := range f.Vertices {
			used[id] = true
		}
	}
	return used
}

// WithPoint returns a copy of m with a new manual vertex at p. Faces and
// creases are shared with m.
func (m *Mesh) WithPoint(gen *IDGen, p kernel.Point) (*Mesh, VertexID) {
	b := From(m)
	id := gen.Vertex()
	b.AddVertex(Vertex{ID: id, X: p.X, Y: p.Y, Manual: true})
	return b.Build(), id
}

// Equal reports whether m and o hold the same vertices, faces (in order)
// and creases.
func (m *Mesh) Equal(o *Mesh) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil {
		return false
	}
	if !maps.Equal(m.vertices, o.vertices) || !slices.Equal(m.creases, o.creases) {
		return false
	}
	return slices.EqualFunc(m.faces, o.faces, func(a, b Face) bool {
		return a.ID == b.ID && a.Layer == b.Layer && a.Recto == b.Recto && slices.Equal(a.Vertices, b.Vertices)
	})
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// Builder assembles a new Mesh. It is used once; Build hands its storage to
// the result.
type Builder struct {
	vertices map[VertexID]Vertex
	faces    []Face
	creases  []Crease
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{vertices: make(map[VertexID]Vertex)}
}

// From returns a builder seeded with m's content. Face vertex lists are
// shared, not copied.
func From(m *Mesh) *Builder {
	return &Builder{
		vertices: maps.Clone(m.vertices),
		faces:    slices.Clone(m.faces),
		creases:  slices.Clone(m.creases),
	}
}

// AddVertex adds v, replacing any vertex with the same id.
func (b *Builder) AddVertex(v Vertex) *Builder {
	if b.vertices == nil {
		b.vertices = make(map[VertexID]Vertex)
	}
	b.vertices[v.ID] = v
	return b
}

// AddFace appends f.
func (b *Builder) AddFace(f Face) *Builder {
	b.faces = append(b.faces, f)
	return b
}

// AddCrease appends c.
func (b *Builder) AddCrease(c Crease) *Builder {
	b.creases = append(b.creases, c)
	return b
}

// SetCreases replaces the crease list.
func (b *Builder) SetCreases(cs []Crease) *Builder {
	b.creases = slices.Clone(cs)
	return b
}

// Build returns the finished mesh.
func (b *Builder) Build() *Mesh {
	if b.vertices == nil {
		b.vertices = make(map[VertexID]Vertex)
	}
	order := slices.Sorted(maps.Keys(b.vertices))
	return &Mesh{
		vertices: b.vertices,
		order:    order,
		faces:    b.faces,
		creases:  b.creases,
	}
}

// NewRectangle returns unfolded paper of the given size with its lower-left
// corner at the origin: one counter-clockwise face on layer 0, recto up.
func NewRectangle(gen *IDGen, width, height float64) (*Mesh, error) {
	if width < kernel.Epsilon || height < kernel.Epsilon {
		return nil, kernel.Errorf(kernel.GeometryDegenerate, "new paper",
			"paper size %gx%g must be positive", width, height)
	}
	corners := []kernel.Point{
		kernel.Pt(0, 0), kernel.Pt(width, 0), kernel.Pt(width, height), kernel.Pt(0, height),
	}
	b := NewBuilder()
	ids := make([]VertexID, len(corners))
	for i, c := range corners {
		ids[i] = gen.Vertex()
		b.AddVertex(Vertex{ID: ids[i], X: c.X, Y: c.Y})
	}
	b.AddFace(Face{ID: gen.Face(), Vertices: ids, Layer: 0, Recto: true})
	return b.Build(), nil
}

// NewSquare returns a size×size sheet.
func NewSquare(gen *IDGen, size float64) (*Mesh, error) {
	return NewRectangle(gen, size, size)
}
