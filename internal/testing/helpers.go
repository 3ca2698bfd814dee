// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package testing

import (
	"strings"
	"testing"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
	"github.com/kraklabs/leviathan/pkg/rule"
)

// SetupTestStore builds an indexed store from seeded facts.
// The seed callback receives a fresh arena builder; the resulting arena is
// indexed and the store returned ready for queries.
//
// Example:
//
//	store := testing.SetupTestStore(t, func(b *fact.Builder) {
//	    testing.AddSink(t, b, "sql_exec", "db.Query", "api/handler.go", 30)
//	})
func SetupTestStore(t *testing.T, seed func(b *fact.Builder)) *index.Store {
	t.Helper()

	b := fact.NewBuilder()
	if seed != nil {
		seed(b)
	}

	store, err := index.NewStore(b.Build(), nil)
	if err != nil {
		t.Fatalf("failed to build test store: %v", err)
	}
	return store
}

// AddSource adds a taint source fact with a single-line location.
func AddSource(t *testing.T, b *fact.Builder, kind, expression, file string, line int) fact.ID {
	t.Helper()

	id, err := b.Add(
		fact.TaintSource{Kind: kind, Expression: expression},
		fact.WithLocation(lineLocation(file, line)),
	)
	if err != nil {
		t.Fatalf("failed to add taint source: %v", err)
	}
	return id
}

// AddSink adds a taint sink fact with a single-line location.
func AddSink(t *testing.T, b *fact.Builder, kind, callSite, file string, line int) fact.ID {
	t.Helper()

	id, err := b.Add(
		fact.TaintSink{Kind: kind, CallSite: callSite},
		fact.WithLocation(lineLocation(file, line)),
	)
	if err != nil {
		t.Fatalf("failed to add taint sink: %v", err)
	}
	return id
}

// AddUncovered adds an uncovered-line fact at the given position.
func AddUncovered(t *testing.T, b *fact.Builder, file string, line int) fact.ID {
	t.Helper()

	id, err := b.Add(
		fact.UncoveredLine{Hits: 0},
		fact.WithLocation(lineLocation(file, line)),
	)
	if err != nil {
		t.Fatalf("failed to add uncovered line: %v", err)
	}
	return id
}

// AddVulnerability adds an advisory fact without a location.
func AddVulnerability(t *testing.T, b *fact.Builder, advisory, pkg, severity string, cvss float64) fact.ID {
	t.Helper()

	id, err := b.Add(fact.Vulnerability{
		Advisory: advisory,
		Package:  pkg,
		Severity: severity,
		CVSS:     cvss,
	})
	if err != nil {
		t.Fatalf("failed to add vulnerability: %v", err)
	}
	return id
}

// AddEdge connects two previously added facts with a flow edge.
func AddEdge(t *testing.T, b *fact.Builder, from, to fact.ID) fact.ID {
	t.Helper()

	id, err := b.Add(fact.FlowEdge{From: from, To: to})
	if err != nil {
		t.Fatalf("failed to add flow edge: %v", err)
	}
	return id
}

// LoadRules parses a YAML rule set from a string, failing the test on error.
func LoadRules(t *testing.T, yaml string) []rule.Rule {
	t.Helper()

	rules, err := rule.Load(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("failed to load test rules: %v", err)
	}
	return rules
}

func lineLocation(file string, line int) fact.Location {
	return fact.Location{
		File:      file,
		StartLine: line,
		EndLine:   line,
		StartCol:  1,
		EndCol:    1,
	}
}
