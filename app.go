package main

import (
	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/config"
	"github.com/Wartets/Origami/pkg/engine"
	"github.com/Wartets/Origami/pkg/mesh"
	"github.com/Wartets/Origami/pkg/stack"
)

// Colors for the two sides of the sheet.
const (
	rectoColor = "#E67E22"
	versoColor = "#F5F0E6"
)

// App evaluates fold scripts and shapes the result for a viewer.
type App struct {
	engine *engine.Engine
}

// FaceData is one face in drawing order.
type FaceData struct {
	ID     mesh.FaceID  `json:"id"`
	Layer  int          `json:"layer"`
	Recto  bool         `json:"isRecto"`
	Color  string       `json:"color"`
	Points [][2]float64 `json:"points"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation. Mesh is nil when the
// script failed.
type EvalResult struct {
	Mesh   *mesh.Document  `json:"mesh"`
	Faces  []FaceData      `json:"faces"`
	Errors []EvalErrorData `json:"errors"`

	folded *mesh.Mesh
}

// NewApp creates an App whose scripts start from cfg.Paper.
func NewApp(cfg config.Config) *App {
	return &App{engine: engine.NewEngine(cfg)}
}

// Evaluate runs a fold script and returns the folded paper with its faces
// ordered back to front.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Faces:  []FaceData{},
		Errors: []EvalErrorData{},
	}

	m, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logging.Logger().Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	doc := m.Document()
	result.Mesh = &doc
	result.folded = m
	for _, p := range stack.Polygons(m) {
		fd := FaceData{
			ID:     p.Face,
			Layer:  p.Layer,
			Recto:  p.Recto,
			Color:  versoColor,
			Points: make([][2]float64, len(p.Points)),
		}
		if p.Recto {
			fd.Color = rectoColor
		}
		for i, pt := range p.Points {
			fd.Points[i] = [2]float64{pt.X, pt.Y}
		}
		result.Faces = append(result.Faces, fd)
	}
	return result
}
