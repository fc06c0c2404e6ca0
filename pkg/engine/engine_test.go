package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Wartets/Origami/pkg/config"
)

func newEngine() *Engine {
	return NewEngine(config.Default())
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := newEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		m, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if m == nil {
			t.Fatal("expected non-nil mesh")
		}
		if m.FaceCount() != 1 || len(m.Creases()) != 0 {
			t.Errorf("expected unfolded paper, got %d faces and %d creases", m.FaceCount(), len(m.Creases()))
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	eng := newEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	m, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if m.FaceCount() != 1 {
		t.Errorf("expected the unfolded sheet, got %d faces", m.FaceCount())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := newEngine()

	// Unmatched paren is a parse error.
	m, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if m != nil {
		t.Fatal("expected nil mesh on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := newEngine()

	m, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if m != nil {
		t.Fatal("expected nil mesh on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := newEngine()
	source := `(fold :axiom 2 :points (list (pt 0 0) (pt 1 0)))`

	first, _, err := eng.Evaluate(source)
	if err != nil || first == nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	for i := 0; i < 5; i++ {
		m, evalErrs, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if !m.Equal(first) {
			t.Errorf("iteration %d: mesh differs from the first evaluation", i)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	var g generations
	gen := g.next()
	ch := make(chan evalResult) // never sends

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = g.await(ctx, gen, ch)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
		if !errors.Is(resultErr, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded in chain, got: %v", resultErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context usually wins the race against the interpreter;
	// either outcome must be well formed.
	m, evalErrs, err := newEngine().EvaluateContext(ctx, `(fold :axiom 2 :points (list (pt 0 0) (pt 1 0)))`)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected Canceled in chain, got: %v", err)
		}
		if m != nil || evalErrs != nil {
			t.Error("expected no result alongside a fatal error")
		}
		return
	}
	if m == nil || m.FaceCount() != 2 {
		t.Errorf("expected the folded sheet, got %v", m)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var g generations
	stale := g.next()
	g.next() // a newer evaluation started

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := g.await(context.Background(), stale, ch)
	if !errors.Is(err, errSuperseded) {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: fold: fold line misses the paper",
			wantLine: 12,
			wantMsg:  "misses the paper",
		},
		{
			name:     "short line format",
			msg:      "line 3: missing paren",
			wantLine: 3,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
