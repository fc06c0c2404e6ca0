package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/mesh"
)

// errSuperseded is returned to a caller whose evaluation finished after a
// newer one had started.
var errSuperseded = errors.New("evaluation superseded by newer request")

// evalResult carries one evaluation out of its goroutine.
type evalResult struct {
	mesh   *mesh.Mesh
	errors []EvalError
	err    error
}

// generations numbers evaluations so only the latest result is delivered.
type generations struct {
	current atomic.Uint64
}

func (g *generations) next() uint64 { return g.current.Add(1) }

// await blocks until ch delivers or ctx ends. An abandoned interpreter keeps
// running in its goroutine; ch must be buffered so it can finish and exit.
func (g *generations) await(ctx context.Context, gen uint64, ch <-chan evalResult) (*mesh.Mesh, []EvalError, error) {
	select {
	case res := <-ch:
		if gen != g.current.Load() {
			return nil, nil, errSuperseded
		}
		return res.mesh, res.errors, res.err
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Logger().Warn("evaluation timed out", "generation", gen)
			return nil, nil, fmt.Errorf("evaluation timed out: %w", err)
		}
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", err)
	}
}
