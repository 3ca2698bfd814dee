// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"context"
	"testing"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
	"github.com/kraklabs/leviathan/pkg/query"
)

func newMatcher(t *testing.T, s *index.Store) *Matcher {
	t.Helper()
	return NewMatcher(s, query.NewPlanner(s.Stats(), nil))
}

func TestMatch_EmptyPatternListYieldsIdentity(t *testing.T) {
	m := newMatcher(t, testStore(t))
	bindings, err := m.Match(context.Background(), &Rule{Name: "filter-only"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(bindings) != 1 || len(bindings[0]) != 0 {
		t.Errorf("got %v, want one empty binding set", bindings)
	}
}

func TestMatch_SinglePattern(t *testing.T) {
	m := newMatcher(t, testStore(t))
	r := &Rule{
		Name:     "sinks",
		Patterns: []Pattern{{Var: "s", Category: fact.CategoryTaintSink}},
	}
	bindings, err := m.Match(context.Background(), r)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(bindings) != 2 {
		t.Fatalf("bindings: got %d, want 2", len(bindings))
	}
	if bindings[0]["s"] != 1 || bindings[1]["s"] != 2 {
		t.Errorf("bound facts: got %v", bindings)
	}
}

func TestMatch_Conditions(t *testing.T) {
	m := newMatcher(t, testStore(t))
	r := &Rule{
		Name: "sql-sinks",
		Patterns: []Pattern{{
			Var: "s", Category: fact.CategoryTaintSink,
			Conditions: []Condition{{Field: "kind", Op: OpEq, Value: fact.StringValue("sql_exec")}},
		}},
	}
	bindings, err := m.Match(context.Background(), r)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(bindings) != 1 || bindings[0]["s"] != 1 {
		t.Errorf("got %v, want the sql sink only", bindings)
	}
}

func TestMatch_ContainsCondition(t *testing.T) {
	m := newMatcher(t, testStore(t))
	r := &Rule{
		Name: "query-sources",
		Patterns: []Pattern{{
			Var: "s", Category: fact.CategoryTaintSource,
			Conditions: []Condition{{Field: "expression", Op: OpContains, Value: fact.StringValue("URL.Query")}},
		}},
	}
	bindings, err := m.Match(context.Background(), r)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(bindings) != 1 || bindings[0]["s"] != 0 {
		t.Errorf("got %v", bindings)
	}
}

func TestMatch_UnknownConditionFieldFailsRule(t *testing.T) {
	m := newMatcher(t, testStore(t))
	r := &Rule{
		Name: "bad",
		Patterns: []Pattern{{
			Var: "s", Category: fact.CategoryTaintSink,
			Conditions: []Condition{{Field: "no_such", Op: OpEq, Value: fact.StringValue("x")}},
		}},
	}
	if _, err := m.Match(context.Background(), r); err == nil {
		t.Error("unknown condition field should fail the rule")
	}
}

func TestMatch_TwoPatternCrossProduct(t *testing.T) {
	m := newMatcher(t, testStore(t))
	r := &Rule{
		Name: "pairs",
		Patterns: []Pattern{
			{Var: "src", Category: fact.CategoryTaintSource},
			{Var: "snk", Category: fact.CategoryTaintSink},
		},
	}
	bindings, err := m.Match(context.Background(), r)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// 1 source x 2 sinks.
	if len(bindings) != 2 {
		t.Fatalf("bindings: got %d, want 2", len(bindings))
	}
	for _, b := range bindings {
		if len(b) != 2 {
			t.Errorf("incomplete binding %v", b)
		}
	}
}

func TestMatch_SpatialPushdown(t *testing.T) {
	s := testStore(t)
	planner := query.NewPlanner(s.Stats(), nil)
	m := NewMatcher(s, planner)

	filter, err := ParseFilter(`same_location(snk, u)`)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	r := &Rule{
		Name: "untested-sink",
		Patterns: []Pattern{
			{Var: "snk", Category: fact.CategoryTaintSink},
			{Var: "u", Category: fact.CategoryUncoveredLine},
		},
		Filter: filter,
	}

	bindings, err := m.Match(context.Background(), r)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("bindings: got %v, want one co-located pair", bindings)
	}
	if bindings[0]["snk"] != 1 || bindings[0]["u"] != 3 {
		t.Errorf("binding: got %v", bindings[0])
	}

	decisions := planner.Log().Decisions()
	if len(decisions) != 1 || decisions[0].Strategy != query.StrategySpatialJoin {
		t.Errorf("plan: got %+v, want one spatial join", decisions)
	}
	// One uncovered line against two sinks: the smaller side drives.
	if decisions[0].Outer != fact.CategoryUncoveredLine.String() {
		t.Errorf("outer: got %q", decisions[0].Outer)
	}
}

func TestMatch_CancelledContext(t *testing.T) {
	m := newMatcher(t, testStore(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Rule{
		Name:     "sinks",
		Patterns: []Pattern{{Var: "s", Category: fact.CategoryTaintSink}},
	}
	if _, err := m.Match(ctx, r); err == nil {
		t.Error("cancelled context should abort matching")
	}
}
