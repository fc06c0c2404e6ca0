// Package engine provides the Lisp evaluation engine for fold scripts.
// It wraps zygomys in a sandboxed environment and produces the folded
// paper mesh from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/Wartets/Origami/internal/logging"
	"github.com/Wartets/Origami/pkg/config"
	"github.com/Wartets/Origami/pkg/mesh"
	"github.com/Wartets/Origami/pkg/session"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a rejected fold.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for fold scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh session for determinism.
type Engine struct {
	cfg  config.Config
	gens generations
}

// NewEngine creates an Engine. Scripts that never call (paper ...) fold
// the sheet described by cfg.Paper.
func NewEngine(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate takes Lisp source code and produces the folded mesh, giving up
// after the configured evaluation timeout.
//
// Return semantics:
//   - On success: returns mesh + nil errors + nil error
//   - On parse/eval failure: returns nil mesh + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*mesh.Mesh, []EvalError, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout())
	defer cancel()
	return e.EvaluateContext(ctx, source)
}

// EvaluateContext is Evaluate bounded by ctx instead of the configured
// timeout. The interpreter cannot be interrupted; when ctx ends first its
// result is discarded.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*mesh.Mesh, []EvalError, error) {
	gen := e.gens.next()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Logger().Warn("panic during evaluation", "panic", r)
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		m, evalErrs, err := e.evaluate(source)
		ch <- evalResult{mesh: m, errors: evalErrs, err: err}
	}()

	return e.gens.await(ctx, gen, ch)
}

func (e *Engine) timeout() time.Duration {
	if e.cfg.EvalTimeout > 0 {
		return e.cfg.EvalTimeout
	}
	return config.DefaultEvalTimeout
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*mesh.Mesh, []EvalError, error) {
	s, err := session.New(e.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: %w", err)
	}

	// Empty source is a valid program that leaves the paper unfolded.
	if strings.TrimSpace(source) == "" {
		return s.Mesh(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	st := &script{cfg: e.cfg, sess: s}
	registerBuiltins(env, st)

	err = env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	m := st.sess.Mesh()
	_, highest := m.LayerRange()
	logging.Logger().Info("script evaluated",
		"folds", st.folds,
		"faces", m.FaceCount(),
		"creases", len(m.Creases()),
		"max_layer", highest)
	return m, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
