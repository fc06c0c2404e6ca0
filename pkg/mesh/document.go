package mesh

import (
	"encoding/json"
	"fmt"

	"github.com/Wartets/Origami/pkg/kernel"
)

// Document is the structural form of a Mesh exchanged with persistence and
// history collaborators.
type Document struct {
	Vertices []VertexDoc `json:"vertices"`
	Faces    []FaceDoc   `json:"faces"`
	Creases  []CreaseDoc `json:"creases"`
}

// VertexDoc is the structural form of a Vertex.
type VertexDoc struct {
	ID       VertexID `json:"id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	IsManual bool     `json:"isManual"`
}

// FaceDoc is the structural form of a Face.
type FaceDoc struct {
	ID       FaceID     `json:"id"`
	Vertices []VertexID `json:"vertices"`
	Layer    int        `json:"layer"`
	IsRecto  bool       `json:"isRecto"`
}

// PointDoc is a plain coordinate pair.
type PointDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreaseDoc is the structural form of a Crease.
type CreaseDoc struct {
	Endpoint1 PointDoc `json:"endpoint1"`
	Endpoint2 PointDoc `json:"endpoint2"`
}

// Document returns the structural form of m.
func (m *Mesh) Document() Document {
	d := Document{
		Vertices: make([]VertexDoc, 0, len(m.order)),
		Faces:    make([]FaceDoc, 0, len(m.faces)),
		Creases:  make([]CreaseDoc, 0, len(m.creases)),
	}
	for _, v := range m.Vertices() {
		d.Vertices = append(d.Vertices, VertexDoc{ID: v.ID, X: v.X, Y: v.Y, IsManual: v.Manual})
	}
	for _, f := range m.faces {
		d.Faces = append(d.Faces, FaceDoc{
			ID:       f.ID,
			Vertices: append([]VertexID(nil), f.Vertices...),
			Layer:    f.Layer,
			IsRecto:  f.Recto,
		})
	}
	for _, c := range m.creases {
		d.Creases = append(d.Creases, CreaseDoc{
			Endpoint1: PointDoc{X: c.P1.X, Y: c.P1.Y},
			Endpoint2: PointDoc{X: c.P2.X, Y: c.P2.Y},
		})
	}
	return d
}

// FromDocument rehydrates a mesh. Structural and geometric errors are
// reported; warnings are not.
func FromDocument(d Document) (*Mesh, error) {
	b := NewBuilder()
	for _, v := range d.Vertices {
		if _, dup := b.vertices[v.ID]; dup {
			return nil, fmt.Errorf("mesh: duplicate vertex id %s", v.ID)
		}
		b.AddVertex(Vertex{ID: v.ID, X: v.X, Y: v.Y, Manual: v.IsManual})
	}
	for _, f := range d.Faces {
		b.AddFace(Face{
			ID:       f.ID,
			Vertices: append([]VertexID(nil), f.Vertices...),
			Layer:    f.Layer,
			Recto:    f.IsRecto,
		})
	}
	for _, c := range d.Creases {
		b.AddCrease(Crease{
			P1: kernel.Pt(c.Endpoint1.X, c.Endpoint1.Y),
			P2: kernel.Pt(c.Endpoint2.X, c.Endpoint2.Y),
		})
	}
	m := b.Build()
	if res := ValidateAll(m); len(res.Errors) > 0 {
		return nil, fmt.Errorf("mesh: invalid document: %w", res.Errors[0])
	}
	return m, nil
}

// Encode serializes m as indented JSON.
func Encode(m *Mesh) ([]byte, error) {
	data, err := json.MarshalIndent(m.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mesh: encode: %w", err)
	}
	return data, nil
}

// Decode parses JSON produced by Encode.
func Decode(data []byte) (*Mesh, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("mesh: decode: %w", err)
	}
	return FromDocument(d)
}

// MarshalJSON encodes m in its structural form.
func (m *Mesh) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}
