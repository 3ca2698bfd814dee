// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"context"
	"fmt"
	"strings"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
)

// Expr is a node of a parsed filter expression.
type Expr interface {
	exprNode()
	String() string
}

// BoolOp joins two boolean operands.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
)

// BinaryExpr is a short-circuiting and/or.
type BinaryExpr struct {
	Op          BoolOp
	Left, Right Expr
}

// NotExpr negates its operand.
type NotExpr struct {
	Inner Expr
}

// CmpOp compares two resolved scalars.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpLt
	CmpLte
	CmpGt
	CmpGte
)

// CompareExpr applies CmpOp to two resolved operands.
type CompareExpr struct {
	Op          CmpOp
	Left, Right Expr
}

// PathExpr is a dotted field path rooted at a pattern variable, e.g.
// sink.location.file. A bare variable resolves to its fact identifier.
type PathExpr struct {
	Var    string
	Fields []string
}

// LiteralExpr is a constant scalar.
type LiteralExpr struct {
	Value fact.Value
}

// CallExpr invokes a builtin relational function.
type CallExpr struct {
	Func string
	Args []Expr
}

func (*BinaryExpr) exprNode()  {}
func (*NotExpr) exprNode()     {}
func (*CompareExpr) exprNode() {}
func (*PathExpr) exprNode()    {}
func (*LiteralExpr) exprNode() {}
func (*CallExpr) exprNode()    {}

func (e *BinaryExpr) String() string {
	op := "&&"
	if e.Op == BoolOr {
		op = "||"
	}
	return fmt.Sprintf("(%s %s %s)", e.Left, op, e.Right)
}

func (e *NotExpr) String() string { return "!" + e.Inner.String() }

func (e *CompareExpr) String() string {
	ops := [...]string{"==", "!=", "<", "<=", ">", ">="}
	return fmt.Sprintf("(%s %s %s)", e.Left, ops[e.Op], e.Right)
}

func (e *PathExpr) String() string {
	if len(e.Fields) == 0 {
		return e.Var
	}
	return e.Var + "." + strings.Join(e.Fields, ".")
}

func (e *LiteralExpr) String() string { return e.Value.String() }

func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Func, strings.Join(args, ", "))
}

// Evaluator evaluates filter expressions against binding sets, delegating
// relational builtins to the store's flow and spatial data.
type Evaluator struct {
	store *index.Store
}

// NewEvaluator builds an evaluator over the store.
func NewEvaluator(store *index.Store) *Evaluator {
	return &Evaluator{store: store}
}

// Eval evaluates a boolean expression against one binding set.
//
// And/or short-circuit: the right operand is not touched when the left
// already decides. A *BindingError return means this binding set is excluded;
// any other error is fatal to the rule.
func (ev *Evaluator) Eval(ctx context.Context, b Binding, e Expr) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	switch n := e.(type) {
	case *BinaryExpr:
		left, err := ev.Eval(ctx, b, n.Left)
		if err != nil {
			return false, err
		}
		if n.Op == BoolAnd && !left {
			return false, nil
		}
		if n.Op == BoolOr && left {
			return true, nil
		}
		return ev.Eval(ctx, b, n.Right)

	case *NotExpr:
		inner, err := ev.Eval(ctx, b, n.Inner)
		if err != nil {
			return false, err
		}
		return !inner, nil

	case *CompareExpr:
		return ev.compare(ctx, b, n)

	case *CallExpr:
		v, err := ev.call(ctx, b, n)
		if err != nil {
			return false, err
		}
		if v.Kind() != fact.KindBool {
			return false, fmt.Errorf("%s does not yield a boolean", n)
		}
		return v.Bool(), nil

	case *LiteralExpr:
		if n.Value.Kind() != fact.KindBool {
			return false, bindingErrf(n.String(), "literal is not a boolean")
		}
		return n.Value.Bool(), nil

	case *PathExpr:
		v, err := ev.ResolvePath(b, n)
		if err != nil {
			return false, err
		}
		if v.Kind() != fact.KindBool {
			return false, bindingErrf(n.String(), "path does not yield a boolean")
		}
		return v.Bool(), nil

	default:
		return false, fmt.Errorf("unsupported expression node %T", e)
	}
}

func (ev *Evaluator) compare(ctx context.Context, b Binding, n *CompareExpr) (bool, error) {
	left, err := ev.resolve(ctx, b, n.Left)
	if err != nil {
		return false, err
	}
	right, err := ev.resolve(ctx, b, n.Right)
	if err != nil {
		return false, err
	}

	switch n.Op {
	case CmpEq:
		return left.Equal(right), nil
	case CmpNeq:
		return !left.Equal(right), nil
	}

	// Ordered comparison: numeric against numeric, string against string.
	if left.IsNumeric() && right.IsNumeric() {
		lf, rf := left.AsFloat(), right.AsFloat()
		switch n.Op {
		case CmpLt:
			return lf < rf, nil
		case CmpLte:
			return lf <= rf, nil
		case CmpGt:
			return lf > rf, nil
		case CmpGte:
			return lf >= rf, nil
		}
	}
	if left.Kind() == fact.KindString && right.Kind() == fact.KindString {
		ls, rs := left.Str(), right.Str()
		switch n.Op {
		case CmpLt:
			return ls < rs, nil
		case CmpLte:
			return ls <= rs, nil
		case CmpGt:
			return ls > rs, nil
		case CmpGte:
			return ls >= rs, nil
		}
	}
	return false, bindingErrf(n.String(), "cannot order %s against %s", left.Kind(), right.Kind())
}

// resolve evaluates an operand to a scalar value.
func (ev *Evaluator) resolve(ctx context.Context, b Binding, e Expr) (fact.Value, error) {
	switch n := e.(type) {
	case *LiteralExpr:
		return n.Value, nil
	case *PathExpr:
		return ev.ResolvePath(b, n)
	case *CallExpr:
		return ev.call(ctx, b, n)
	default:
		return fact.Value{}, fmt.Errorf("expression %s is not a scalar operand", e)
	}
}

// ResolvePath follows a dotted path through the binding: the variable names
// a bound fact, location fields go through the location sub-schema, every
// other name reads a category field. A bare variable yields the fact
// identifier itself, which is what the relational builtins consume.
func (ev *Evaluator) ResolvePath(b Binding, p *PathExpr) (fact.Value, error) {
	id, ok := b[p.Var]
	if !ok {
		return fact.Value{}, bindingErrf(p.String(), "unbound variable %q", p.Var)
	}
	f, ok := ev.store.Get(id)
	if !ok {
		return fact.Value{}, fmt.Errorf("%s: binding references unknown fact %d", p, id)
	}

	switch len(p.Fields) {
	case 0:
		return fact.FactValue(id), nil
	case 1:
		v, ok := f.Field(p.Fields[0])
		if !ok {
			return fact.Value{}, bindingErrf(p.String(), "field %q unknown for category %s", p.Fields[0], f.Category())
		}
		return v, nil
	case 2:
		if p.Fields[0] != "location" {
			return fact.Value{}, bindingErrf(p.String(), "field %q has no sub-fields", p.Fields[0])
		}
		v, ok := f.LocationField(p.Fields[1])
		if !ok {
			return fact.Value{}, bindingErrf(p.String(), "location field %q unavailable", p.Fields[1])
		}
		return v, nil
	default:
		return fact.Value{}, bindingErrf(p.String(), "path too deep")
	}
}

// call dispatches the builtin relational functions. Arguments must resolve
// to fact identifiers, i.e. bare pattern variables.
func (ev *Evaluator) call(ctx context.Context, b Binding, n *CallExpr) (fact.Value, error) {
	argID := func(i int) (fact.ID, error) {
		v, err := ev.resolve(ctx, b, n.Args[i])
		if err != nil {
			return 0, err
		}
		if v.Kind() != fact.KindFact {
			return 0, bindingErrf(n.String(), "argument %d is not a fact reference", i+1)
		}
		return v.Fact(), nil
	}
	two := func() (fact.ID, fact.ID, error) {
		if len(n.Args) != 2 {
			return 0, 0, fmt.Errorf("%s takes exactly two arguments", n.Func)
		}
		a, err := argID(0)
		if err != nil {
			return 0, 0, err
		}
		c, err := argID(1)
		if err != nil {
			return 0, 0, err
		}
		return a, c, nil
	}

	switch n.Func {
	case "reachable":
		a, c, err := two()
		if err != nil {
			return fact.Value{}, err
		}
		return fact.BoolValue(ev.store.Reachable(a, c)), nil

	case "distance":
		a, c, err := two()
		if err != nil {
			return fact.Value{}, err
		}
		return ev.lineDistance(n, a, c)

	case "same_location":
		a, c, err := two()
		if err != nil {
			return fact.Value{}, err
		}
		return fact.BoolValue(ev.sameLocation(a, c)), nil

	default:
		return fact.Value{}, fmt.Errorf("unknown function %q", n.Func)
	}
}

// lineDistance is the absolute start-line distance of two facts in the same
// file. Either fact missing a location, or the facts living in different
// files, excludes the binding rather than failing the rule.
func (ev *Evaluator) lineDistance(n *CallExpr, a, b fact.ID) (fact.Value, error) {
	fa, _ := ev.store.Get(a)
	fb, _ := ev.store.Get(b)
	la, okA := fa.Location()
	lb, okB := fb.Location()
	if !okA || !okB {
		return fact.Value{}, bindingErrf(n.String(), "distance requires located facts")
	}
	if la.File != lb.File {
		return fact.Value{}, bindingErrf(n.String(), "facts are in different files")
	}
	d := la.StartLine - lb.StartLine
	if d < 0 {
		d = -d
	}
	return fact.IntValue(int64(d)), nil
}

// sameLocation reports whether two facts sit in the same file with
// overlapping line ranges.
func (ev *Evaluator) sameLocation(a, b fact.ID) bool {
	fa, _ := ev.store.Get(a)
	fb, _ := ev.store.Get(b)
	la, okA := fa.Location()
	lb, okB := fb.Location()
	if !okA || !okB {
		return false
	}
	return la.File == lb.File && la.StartLine <= lb.EndLine && lb.StartLine <= la.EndLine
}
