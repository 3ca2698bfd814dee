// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"context"
	"testing"
)

func evalFilter(t *testing.T, src string, b Binding) (bool, error) {
	t.Helper()
	e, err := ParseFilter(src)
	if err != nil {
		t.Fatalf("ParseFilter(%q): %v", src, err)
	}
	ev := NewEvaluator(testStore(t))
	return ev.Eval(context.Background(), b, e)
}

func TestEval_FieldComparison(t *testing.T) {
	b := Binding{"sink": 1}
	ok, err := evalFilter(t, `sink.kind == "sql_exec"`, b)
	if err != nil || !ok {
		t.Errorf("got %v, %v; want true", ok, err)
	}
	ok, err = evalFilter(t, `sink.kind != "sql_exec"`, b)
	if err != nil || ok {
		t.Errorf("got %v, %v; want false", ok, err)
	}
}

func TestEval_LocationPath(t *testing.T) {
	b := Binding{"sink": 1, "src": 0}
	ok, err := evalFilter(t, `sink.location.file == src.location.file && sink.location.start_line > src.location.start_line`, b)
	if err != nil || !ok {
		t.Errorf("got %v, %v; want true", ok, err)
	}
}

func TestEval_ShortCircuit(t *testing.T) {
	// The right operand references an unbound variable; short-circuiting
	// means it is never resolved.
	b := Binding{"src": 0}
	ok, err := evalFilter(t, `src.confidence > 0.5 || ghost.kind == "x"`, b)
	if err != nil || !ok {
		t.Errorf("or short-circuit: got %v, %v; want true", ok, err)
	}
	ok, err = evalFilter(t, `src.confidence > 2.0 && ghost.kind == "x"`, b)
	if err != nil || ok {
		t.Errorf("and short-circuit: got %v, %v; want false", ok, err)
	}
}

func TestEval_UnboundVariableIsBindingError(t *testing.T) {
	_, err := evalFilter(t, `ghost.kind == "x"`, Binding{})
	if err == nil || !asBindingError(err) {
		t.Errorf("unbound variable: got %v, want binding error", err)
	}
}

func TestEval_UnknownFieldIsBindingError(t *testing.T) {
	_, err := evalFilter(t, `src.cvss > 1.0`, Binding{"src": 0})
	if err == nil || !asBindingError(err) {
		t.Errorf("unknown field: got %v, want binding error", err)
	}
}

func TestEval_TypeMismatchIsBindingError(t *testing.T) {
	_, err := evalFilter(t, `src.kind > 3`, Binding{"src": 0})
	if err == nil || !asBindingError(err) {
		t.Errorf("type mismatch: got %v, want binding error", err)
	}
}

func TestEval_UnknownFunctionIsFatal(t *testing.T) {
	_, err := evalFilter(t, `teleport(src, sink)`, Binding{"src": 0, "sink": 1})
	if err == nil || asBindingError(err) {
		t.Errorf("unknown function: got %v, want fatal error", err)
	}
}

func TestEval_Reachable(t *testing.T) {
	b := Binding{"src": 0, "sink": 1, "other": 2}
	ok, err := evalFilter(t, `reachable(src, sink)`, b)
	if err != nil || !ok {
		t.Errorf("src to sink: got %v, %v; want true", ok, err)
	}
	ok, err = evalFilter(t, `reachable(src, other)`, b)
	if err != nil || ok {
		t.Errorf("src to other: got %v, %v; want false", ok, err)
	}
	ok, err = evalFilter(t, `reachable(sink, src)`, b)
	if err != nil || ok {
		t.Errorf("sink to src: got %v, %v; want false", ok, err)
	}
}

func TestEval_Distance(t *testing.T) {
	b := Binding{"src": 0, "sink": 1, "other": 2}
	ok, err := evalFilter(t, `distance(src, sink) == 18`, b)
	if err != nil || !ok {
		t.Errorf("same-file distance: got %v, %v; want true", ok, err)
	}

	// Cross-file distance excludes the binding, it does not fail the rule.
	_, err = evalFilter(t, `distance(src, other) < 5`, b)
	if err == nil || !asBindingError(err) {
		t.Errorf("cross-file distance: got %v, want binding error", err)
	}
}

func TestEval_SameLocation(t *testing.T) {
	b := Binding{"sink": 1, "line": 3, "other": 2}
	ok, err := evalFilter(t, `same_location(sink, line)`, b)
	if err != nil || !ok {
		t.Errorf("overlapping: got %v, %v; want true", ok, err)
	}
	ok, err = evalFilter(t, `same_location(sink, other)`, b)
	if err != nil || ok {
		t.Errorf("different files: got %v, %v; want false", ok, err)
	}
}

func TestEval_CancelledContext(t *testing.T) {
	e, err := ParseFilter(`src.confidence > 0.5`)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	ev := NewEvaluator(testStore(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ev.Eval(ctx, Binding{"src": 0}, e); err == nil {
		t.Error("cancelled context should surface an error")
	}
}
