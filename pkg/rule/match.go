// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
	"github.com/kraklabs/leviathan/pkg/query"
)

// Matcher executes a rule's patterns against the store and produces every
// complete binding set. It is stateless between calls and safe for
// concurrent use.
type Matcher struct {
	store   *index.Store
	planner *query.Planner
}

// NewMatcher builds a matcher over the store and planner.
func NewMatcher(store *index.Store, planner *query.Planner) *Matcher {
	return &Matcher{store: store, planner: planner}
}

// Match returns every binding set that satisfies all of the rule's patterns.
//
// An empty pattern list yields exactly one empty binding set, so a
// filter-only rule is well-defined. When the filter contains a conjunctive
// same_location over the two pattern variables of a two-pattern rule, the
// co-location is pushed down into a spatial join instead of being filtered
// after a full cross product.
func (m *Matcher) Match(ctx context.Context, r *Rule) ([]Binding, error) {
	if len(r.Patterns) == 0 {
		return []Binding{{}}, nil
	}

	if first, second, ok := spatialPushdown(r); ok {
		return m.matchSpatial(ctx, r, first, second)
	}

	// Most selective pattern first: smaller seed, smaller intermediate
	// binding sets. The sort is stable so equal cardinalities keep
	// declaration order.
	ordered := make([]Pattern, len(r.Patterns))
	copy(ordered, r.Patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return m.store.Stats().Cardinality(ordered[i].Category) < m.store.Stats().Cardinality(ordered[j].Category)
	})

	bindings, err := m.seed(ctx, ordered[0])
	if err != nil {
		return nil, err
	}

	for _, p := range ordered[1:] {
		if len(bindings) == 0 {
			return nil, nil
		}
		bindings, err = m.join(ctx, bindings, p)
		if err != nil {
			return nil, err
		}
	}
	return bindings, nil
}

// seed produces one single-variable binding per fact of the pattern's
// category that passes its conditions.
func (m *Matcher) seed(ctx context.Context, p Pattern) ([]Binding, error) {
	plan := m.planner.Plan(query.CategoryScan(p.Category))
	if plan.Strategy != query.StrategyTypeScan {
		return nil, fmt.Errorf("pattern %q: no plan for category %s", p.Var, p.Category)
	}

	var out []Binding
	for _, id := range m.store.ByCategory(p.Category) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := m.conditionsMatch(id, p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Binding{p.Var: id})
		}
	}
	return out, nil
}

// join extends every existing binding with every fact satisfying the
// pattern: a nested-loop join producing the Cartesian expansion.
func (m *Matcher) join(ctx context.Context, bindings []Binding, p Pattern) ([]Binding, error) {
	var matching []fact.ID
	for _, id := range m.store.ByCategory(p.Category) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := m.conditionsMatch(id, p)
		if err != nil {
			return nil, err
		}
		if ok {
			matching = append(matching, id)
		}
	}

	out := make([]Binding, 0, len(bindings))
	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, id := range matching {
			next := make(Binding, len(b)+1)
			for k, v := range b {
				next[k] = v
			}
			next[p.Var] = id
			out = append(out, next)
		}
	}
	return out, nil
}

// matchSpatial evaluates a two-pattern co-location as a spatial join. The
// planner picks the driving side from cardinalities; each outer fact probes
// the spatial index with its own bounding range.
func (m *Matcher) matchSpatial(ctx context.Context, r *Rule, first, second Pattern) ([]Binding, error) {
	plan := m.planner.Plan(query.SpatialJoin(first.Category, second.Category))

	outer, inner := first, second
	if plan.Outer == second.Category && first.Category != second.Category {
		outer, inner = second, first
	}

	var out []Binding
	for _, oid := range m.store.ByCategory(outer.Category) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := m.conditionsMatch(oid, outer)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		of, _ := m.store.Get(oid)
		loc, hasLoc := of.Location()
		if !hasLoc {
			continue
		}

		for _, iid := range m.store.ByLocation(loc.File, loc.StartLine, loc.EndLine) {
			hit, _ := m.store.Get(iid)
			if hit.Category() != inner.Category {
				continue
			}
			ok, err := m.conditionsMatch(iid, inner)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, Binding{outer.Var: oid, inner.Var: iid})
			}
		}
	}
	return out, nil
}

// conditionsMatch checks every field condition of the pattern against the
// fact. An unknown field is a malformed condition and fails the rule.
func (m *Matcher) conditionsMatch(id fact.ID, p Pattern) (bool, error) {
	f, ok := m.store.Get(id)
	if !ok {
		return false, fmt.Errorf("pattern %q: unknown fact %d", p.Var, id)
	}
	for _, c := range p.Conditions {
		v, ok := f.Field(c.Field)
		if !ok {
			v, ok = f.LocationField(c.Field)
		}
		if !ok {
			return false, fmt.Errorf("pattern %q: field %q unknown for category %s", p.Var, c.Field, p.Category)
		}
		switch c.Op {
		case OpEq:
			if !v.Equal(c.Value) {
				return false, nil
			}
		case OpNeq:
			if v.Equal(c.Value) {
				return false, nil
			}
		case OpContains:
			if v.Kind() != fact.KindString || c.Value.Kind() != fact.KindString {
				return false, fmt.Errorf("pattern %q: contains requires string operands for field %q", p.Var, c.Field)
			}
			if !strings.Contains(v.Str(), c.Value.Str()) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("pattern %q: unsupported operator %v", p.Var, c.Op)
		}
	}
	return true, nil
}

// spatialPushdown reports whether the rule is a two-pattern co-location:
// its filter contains, in a conjunctive position, a same_location call over
// exactly the two pattern variables.
func spatialPushdown(r *Rule) (Pattern, Pattern, bool) {
	if len(r.Patterns) != 2 || r.Filter == nil {
		return Pattern{}, Pattern{}, false
	}
	a, b := r.Patterns[0], r.Patterns[1]
	if conjunctiveSameLocation(r.Filter, a.Var, b.Var) {
		return a, b, true
	}
	return Pattern{}, Pattern{}, false
}

// conjunctiveSameLocation walks and-chains looking for same_location(a, b)
// with bare-variable arguments. Calls under "or" or "not" are not
// push-down-safe: the co-location is not guaranteed to hold there.
func conjunctiveSameLocation(e Expr, varA, varB string) bool {
	switch n := e.(type) {
	case *BinaryExpr:
		if n.Op != BoolAnd {
			return false
		}
		return conjunctiveSameLocation(n.Left, varA, varB) || conjunctiveSameLocation(n.Right, varA, varB)
	case *CallExpr:
		if n.Func != "same_location" || len(n.Args) != 2 {
			return false
		}
		pa, okA := n.Args[0].(*PathExpr)
		pb, okB := n.Args[1].(*PathExpr)
		if !okA || !okB || len(pa.Fields) != 0 || len(pb.Fields) != 0 {
			return false
		}
		return (pa.Var == varA && pb.Var == varB) || (pa.Var == varB && pb.Var == varA)
	default:
		return false
	}
}
