package mesh

import "fmt"

// VertexID identifies a vertex for the lifetime of a session.
type VertexID uint64

func (id VertexID) String() string { return fmt.Sprintf("v%d", uint64(id)) }

// FaceID identifies a face. Faces split by a fold get new ids; faces that
// pass through a fold unchanged keep theirs.
type FaceID uint64

func (id FaceID) String() string { return fmt.Sprintf("f%d", uint64(id)) }

// IDGen hands out monotonically increasing ids for vertices and faces from
// a single counter. It is owned by a session, never shared process-wide,
// so id sequences are deterministic and replayable. The zero value is ready
// to use. IDGen is not safe for concurrent use.
type IDGen struct {
	last uint64
}

// NewIDGen returns a generator whose first id is 1.
func NewIDGen() *IDGen {
	return &IDGen{}
}

func (g *IDGen) next() uint64 {
	g.last++
	return g.last
}

// Vertex returns a fresh vertex id.
func (g *IDGen) Vertex() VertexID { return VertexID(g.next()) }

// Face returns a fresh face id.
func (g *IDGen) Face() FaceID { return FaceID(g.next()) }

// Last returns the most recently issued id, or 0.
func (g *IDGen) Last() uint64 { return g.last }

// Observe advances the generator past every id used by m, so ids issued
// after rehydrating or replacing a mesh never collide with existing ones.
func (g *IDGen) Observe(m *Mesh) {
	if m == nil {
		return
	}
	for id := range m.vertices {
		g.last = max(g.last, uint64(id))
	}
	for _, f := range m.faces {
		g.last = max(g.last, uint64(f.ID))
	}
}
