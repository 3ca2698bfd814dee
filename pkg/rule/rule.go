// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"fmt"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// Op is a field-condition operator.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpContains
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpContains:
		return "contains"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// ParseOp maps the wire name to an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "eq":
		return OpEq, nil
	case "neq":
		return OpNeq, nil
	case "contains":
		return OpContains, nil
	default:
		return OpEq, fmt.Errorf("unknown condition operator %q", s)
	}
}

// Condition restricts a pattern to facts whose field satisfies the operator.
// Contains applies to string fields only.
type Condition struct {
	Field string
	Op    Op
	Value fact.Value
}

// Pattern binds a variable to every fact of one category that passes all
// conditions.
type Pattern struct {
	Var        string
	Category   fact.Category
	Conditions []Condition
}

// Emit is a rule's emission template. Message may contain {path}
// placeholders resolved against the binding set.
type Emit struct {
	Message    string
	Confidence float64
	Metadata   map[string]string
}

// Rule is one parsed, type-checked correlation rule. Filter may be nil.
type Rule struct {
	Name     string
	Severity Severity
	Patterns []Pattern
	Filter   Expr
	Emit     Emit
}

// Validate rejects rules the engine cannot evaluate: empty names, duplicate
// or empty pattern variables, invalid categories, out-of-range confidence.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	seen := make(map[string]bool, len(r.Patterns))
	for i, p := range r.Patterns {
		if p.Var == "" {
			return fmt.Errorf("rule %q: pattern %d has no variable name", r.Name, i)
		}
		if seen[p.Var] {
			return fmt.Errorf("rule %q: duplicate pattern variable %q", r.Name, p.Var)
		}
		seen[p.Var] = true
		if p.Category == fact.CategoryInvalid {
			return fmt.Errorf("rule %q: pattern %q has no category", r.Name, p.Var)
		}
	}
	if r.Emit.Confidence < 0 || r.Emit.Confidence > 1 {
		return fmt.Errorf("rule %q: confidence %v outside [0.0, 1.0]", r.Name, r.Emit.Confidence)
	}
	return nil
}

// Binding maps pattern variable names to fact identifiers for one candidate
// match. Bindings are transient; they never outlive rule evaluation.
type Binding map[string]fact.ID
