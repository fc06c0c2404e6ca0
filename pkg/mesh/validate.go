package mesh

import (
	"fmt"

	"github.com/Wartets/Origami/pkg/kernel"
)

// ValidationSeverity indicates whether a validation finding makes a mesh
// unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // mesh is corrupt
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. FaceID and
// VertexID are zero when the finding is not tied to one element.
type ValidationError struct {
	FaceID   FaceID
	VertexID VertexID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case e.FaceID != 0:
		return fmt.Sprintf("[%s] face %s: %s", e.Severity, e.FaceID, e.Message)
	case e.VertexID != 0:
		return fmt.Sprintf("[%s] vertex %s: %s", e.Severity, e.VertexID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
}

// ValidationResult bundles errors and warnings from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Validate runs the structural checks and returns every finding. An empty
// slice means the mesh is structurally sound. It never mutates m.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateFaceIDs(m)...)
	errs = append(errs, validateFaceVertices(m)...)
	errs = append(errs, validateIDCollisions(m)...)
	errs = append(errs, validateOrphans(m)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates errors
// from warnings. Geometric checks are skipped for faces that already failed
// structurally.
func ValidateAll(m *Mesh) ValidationResult {
	var result ValidationResult
	broken := make(map[FaceID]bool)
	for _, e := range Validate(m) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
			continue
		}
		result.Errors = append(result.Errors, e)
		if e.FaceID != 0 {
			broken[e.FaceID] = true
		}
	}
	errs, warnings := validateGeometry(m, broken)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warnings...)
	return result
}

// ---------------------------------------------------------------------------
// Tier 1: structural
// ---------------------------------------------------------------------------

func validateFaceIDs(m *Mesh) []ValidationError {
	var errs []ValidationError
	seen := make(map[FaceID]bool, len(m.faces))
	for _, f := range m.faces {
		if f.ID == 0 {
			errs = append(errs, ValidationError{
				Message:  "face has zero id",
				Severity: SeverityError,
			})
			continue
		}
		if seen[f.ID] {
			errs = append(errs, ValidationError{
				FaceID:   f.ID,
				Message:  "duplicate face id",
				Severity: SeverityError,
			})
		}
		seen[f.ID] = true
	}
	return errs
}

// validateFaceVertices checks polygon length, dangling references and
// repeated consecutive vertices (including the closing pair).
func validateFaceVertices(m *Mesh) []ValidationError {
	var errs []ValidationError
	for _, f := range m.faces {
		n := len(f.Vertices)
		if n < 3 {
			errs = append(errs, ValidationError{
				FaceID:   f.ID,
				Message:  fmt.Sprintf("face has %d vertices, need at least 3", n),
				Severity: SeverityError,
			})
		}
		for i, id := range f.Vertices {
			if _, ok := m.vertices[id]; !ok {
				errs = append(errs, ValidationError{
					FaceID:   f.ID,
					Message:  fmt.Sprintf("vertex reference %s does not exist", id),
					Severity: SeverityError,
				})
			}
			if n > 1 && f.Vertices[(i+1)%n] == id {
				errs = append(errs, ValidationError{
					FaceID:   f.ID,
					Message:  fmt.Sprintf("vertex %s repeats consecutively", id),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateIDCollisions flags vertex ids that are also face ids. Ids from a
// single generator never collide, so a collision points at a foreign or
// hand-edited document.
func validateIDCollisions(m *Mesh) []ValidationError {
	var errs []ValidationError
	for _, f := range m.faces {
		if _, ok := m.vertices[VertexID(f.ID)]; ok {
			errs = append(errs, ValidationError{
				FaceID:   f.ID,
				Message:  "face id is also used by a vertex",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func validateOrphans(m *Mesh) []ValidationError {
	var errs []ValidationError
	used := m.usedVertices()
	for _, v := range m.Vertices() {
		if !v.Manual && !used[v.ID] {
			errs = append(errs, ValidationError{
				VertexID: v.ID,
				Message:  "derived vertex is not used by any face",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 2: geometric
// ---------------------------------------------------------------------------

func validateGeometry(m *Mesh, skip map[FaceID]bool) ([]ValidationError, []ValidationError) {
	var errs, warnings []ValidationError
	var sound []Face
	for _, f := range m.faces {
		if skip[f.ID] {
			continue
		}
		poly := m.Polygon(f)
		if kernel.Area(poly) < kernel.Epsilon {
			errs = append(errs, ValidationError{
				FaceID:   f.ID,
				Message:  "face has zero area",
				Severity: SeverityError,
			})
			continue
		}
		if selfIntersecting(poly) {
			errs = append(errs, ValidationError{
				FaceID:   f.ID,
				Message:  "face polygon intersects itself",
				Severity: SeverityError,
			})
			continue
		}
		sound = append(sound, f)
	}
	warnings = append(warnings, validateLayerOverlap(m, sound)...)
	return errs, warnings
}

func selfIntersecting(poly []kernel.Point) bool {
	n := len(poly)
	for i := range n {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			if kernel.SegmentsCross(poly[i], poly[(i+1)%n], poly[j], poly[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// validateLayerOverlap warns about overlapping faces sharing a layer, whose
// stacking order is then undefined.
func validateLayerOverlap(m *Mesh, faces []Face) []ValidationError {
	var warnings []ValidationError
	for i := range faces {
		for j := i + 1; j < len(faces); j++ {
			a, b := faces[i], faces[j]
			if a.Layer != b.Layer {
				continue
			}
			if kernel.PolygonsIntersect(m.Polygon(a), m.Polygon(b)) {
				warnings = append(warnings, ValidationError{
					FaceID:   a.ID,
					Message:  fmt.Sprintf("overlaps face %s on layer %d", b.ID, a.Layer),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return warnings
}
