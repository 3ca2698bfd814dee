// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package fact

import (
	"strings"
	"testing"
)

const sampleDocument = `{
  "extractor": {"name": "taint-go", "version": "1.4.0", "extracted_at": "2026-08-01T12:00:00Z"},
  "facts": [
    {
      "label": "src",
      "category": "taint_source",
      "kind": "http_param",
      "expression": "r.URL.Query().Get(\"id\")",
      "location": {"file": "api/handler.go", "start_line": 12, "end_line": 12, "start_col": 9, "end_col": 40},
      "confidence": 0.95
    },
    {
      "label": "sink",
      "category": "taint_sink",
      "kind": "sql_exec",
      "call_site": "db.Query",
      "location": {"file": "api/handler.go", "start_line": 30, "end_line": 30, "start_col": 2, "end_col": 25}
    },
    {"category": "flow_edge", "from": "src", "to": "sink", "flow_id": "f1"}
  ]
}`

func TestDecode_BuildsArena(t *testing.T) {
	arena, err := Decode(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if arena.Len() != 3 {
		t.Fatalf("arena length: got %d, want 3", arena.Len())
	}

	src, _ := arena.Get(0)
	if src.Category() != CategoryTaintSource {
		t.Errorf("fact 0 category: got %v", src.Category())
	}
	if src.Confidence() != 0.95 {
		t.Errorf("fact 0 confidence: got %v", src.Confidence())
	}
	if src.Provenance().Extractor != "taint-go" {
		t.Errorf("provenance extractor: got %q", src.Provenance().Extractor)
	}

	edge, _ := arena.Get(2)
	payload, ok := edge.Payload().(FlowEdge)
	if !ok {
		t.Fatalf("fact 2 payload: got %T", edge.Payload())
	}
	if payload.From != 0 || payload.To != 1 {
		t.Errorf("edge endpoints: got %d -> %d, want 0 -> 1", payload.From, payload.To)
	}
}

func TestDecode_ForwardLabelReference(t *testing.T) {
	doc := `{
	  "extractor": {"name": "x", "version": "1", "extracted_at": "2026-01-01T00:00:00Z"},
	  "facts": [
	    {"category": "flow_edge", "from": "a", "to": "b"},
	    {"label": "a", "category": "taint_source", "kind": "env", "expression": "os.Getenv"},
	    {"label": "b", "category": "taint_sink", "kind": "exec", "call_site": "exec.Command"}
	  ]
	}`
	arena, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	edge, _ := arena.Get(0)
	payload := edge.Payload().(FlowEdge)
	if payload.From != 1 || payload.To != 2 {
		t.Errorf("edge endpoints: got %d -> %d, want 1 -> 2", payload.From, payload.To)
	}
}

func TestDecode_UnknownLabelFails(t *testing.T) {
	doc := `{
	  "extractor": {"name": "x", "version": "1", "extracted_at": "2026-01-01T00:00:00Z"},
	  "facts": [{"category": "flow_edge", "from": "ghost", "to": "ghost"}]
	}`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Error("unknown edge label should fail")
	}
}

func TestDecode_DuplicateLabelFails(t *testing.T) {
	doc := `{
	  "extractor": {"name": "x", "version": "1", "extracted_at": "2026-01-01T00:00:00Z"},
	  "facts": [
	    {"label": "dup", "category": "uncovered_line"},
	    {"label": "dup", "category": "uncovered_line"}
	  ]
	}`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Error("duplicate label should fail")
	}
}

func TestDecode_UnknownCategoryFails(t *testing.T) {
	doc := `{
	  "extractor": {"name": "x", "version": "1", "extracted_at": "2026-01-01T00:00:00Z"},
	  "facts": [{"category": "mystery"}]
	}`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Error("unknown category should fail")
	}
}

func TestDecode_UnknownFieldFails(t *testing.T) {
	doc := `{
	  "extractor": {"name": "x", "version": "1", "extracted_at": "2026-01-01T00:00:00Z"},
	  "facts": [{"category": "uncovered_line", "surprise": true}]
	}`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Error("unknown document field should fail")
	}
}
