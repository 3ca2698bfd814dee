// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"testing"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
)

// testStore builds a small taint scenario shared across tests:
//
//	fact 0  taint_source  api/handler.go:12   kind=http_param
//	fact 1  taint_sink    api/handler.go:30   kind=sql_exec
//	fact 2  taint_sink    api/other.go:8      kind=log_write
//	fact 3  uncovered_line api/handler.go:30
//	fact 4  flow_edge     0 -> 1
func testStore(t *testing.T) *index.Store {
	t.Helper()
	b := fact.NewBuilder()

	add := func(p fact.Payload, opts ...fact.Option) fact.ID {
		id, err := b.Add(p, opts...)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		return id
	}
	at := func(file string, line int) fact.Option {
		return fact.WithLocation(fact.Location{
			File: file, StartLine: line, EndLine: line, StartCol: 1, EndCol: 80,
		})
	}

	src := add(fact.TaintSource{Kind: "http_param", Expression: `r.URL.Query().Get("id")`},
		at("api/handler.go", 12), fact.WithConfidence(0.9))
	sink := add(fact.TaintSink{Kind: "sql_exec", CallSite: "db.Query"}, at("api/handler.go", 30))
	add(fact.TaintSink{Kind: "log_write", CallSite: "log.Printf"}, at("api/other.go", 8))
	add(fact.UncoveredLine{}, at("api/handler.go", 30))
	add(fact.FlowEdge{From: src, To: sink})

	s, err := index.NewStore(b.Build(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestRuleValidate(t *testing.T) {
	valid := Rule{
		Name: "r",
		Patterns: []Pattern{
			{Var: "a", Category: fact.CategoryTaintSink},
		},
		Emit: Emit{Message: "m", Confidence: 0.5},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid rule: %v", err)
	}

	dup := valid
	dup.Patterns = []Pattern{
		{Var: "a", Category: fact.CategoryTaintSink},
		{Var: "a", Category: fact.CategoryTaintSource},
	}
	if err := dup.Validate(); err == nil {
		t.Error("duplicate variable should fail validation")
	}

	noName := valid
	noName.Name = ""
	if err := noName.Validate(); err == nil {
		t.Error("empty name should fail validation")
	}

	badConfidence := valid
	badConfidence.Emit.Confidence = 1.5
	if err := badConfidence.Validate(); err == nil {
		t.Error("confidence above 1.0 should fail validation")
	}
}
