// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"strings"
	"testing"

	"github.com/kraklabs/leviathan/pkg/fact"
)

const sampleRuleSet = `
rules:
  - name: tainted-sql
    severity: high
    match:
      - var: src
        category: taint_source
        where:
          - field: kind
            op: eq
            value: http_param
      - var: snk
        category: taint_sink
        where:
          - field: call_site
            op: contains
            value: Query
    filter: "reachable(src, snk) && src.confidence >= 0.5"
    emit:
      message: "untrusted {src.kind} reaches {snk.call_site}"
      confidence: 0.8
      metadata:
        cwe: "89"
  - name: vulnerable-dependency
    severity: critical
    match:
      - var: v
        category: vulnerability
        where:
          - field: cvss
            op: neq
            value: 0
    emit:
      message: "{v.package} is affected by {v.advisory}"
      confidence: 1.0
`

func TestLoad_ParsesRuleSet(t *testing.T) {
	rules, err := Load(strings.NewReader(sampleRuleSet))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}

	r := rules[0]
	if r.Name != "tainted-sql" || r.Severity != SeverityHigh {
		t.Errorf("head: got %q/%v", r.Name, r.Severity)
	}
	if len(r.Patterns) != 2 {
		t.Fatalf("patterns: got %d", len(r.Patterns))
	}
	if r.Patterns[0].Category != fact.CategoryTaintSource {
		t.Errorf("pattern category: got %v", r.Patterns[0].Category)
	}
	cond := r.Patterns[1].Conditions[0]
	if cond.Field != "call_site" || cond.Op != OpContains || cond.Value.Str() != "Query" {
		t.Errorf("condition: got %+v", cond)
	}
	if r.Filter == nil {
		t.Fatal("filter not parsed")
	}
	if r.Emit.Metadata["cwe"] != "89" {
		t.Errorf("metadata: got %v", r.Emit.Metadata)
	}

	if rules[1].Severity != SeverityCritical {
		t.Errorf("second severity: got %v", rules[1].Severity)
	}
}

func TestLoad_RejectsBadSeverity(t *testing.T) {
	doc := `
rules:
  - name: x
    severity: catastrophic
    emit: {message: m, confidence: 1.0}
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Error("unknown severity should fail")
	}
}

func TestLoad_RejectsBadFilter(t *testing.T) {
	doc := `
rules:
  - name: x
    severity: low
    filter: "a &&"
    emit: {message: m, confidence: 1.0}
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Error("unparsable filter should fail")
	}
}

func TestLoad_RejectsUnknownCategory(t *testing.T) {
	doc := `
rules:
  - name: x
    severity: low
    match:
      - var: a
        category: mystery
    emit: {message: m, confidence: 1.0}
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Error("unknown category should fail")
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	doc := `
rules:
  - name: x
    severity: low
    surprise: true
    emit: {message: m, confidence: 1.0}
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Error("unknown keys should fail")
	}
}

func TestLoad_EmptySetFails(t *testing.T) {
	if _, err := Load(strings.NewReader("rules: []")); err == nil {
		t.Error("empty rule set should fail")
	}
}
