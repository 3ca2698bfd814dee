// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/rule"
)

// TestSARIF verifies the report structure: one run, one reportingDescriptor
// per distinct rule, and one result per finding with its physical location.
func TestSARIF(t *testing.T) {
	res := &rule.Result{
		RunID: "9f6e0c2a",
		Findings: []rule.Finding{
			{
				Rule:     "tainted-sql",
				Severity: rule.SeverityHigh,
				Message:  "untrusted http_param reaches db.Query at api/handler.go:30",
				Location: &fact.Location{File: "api/handler.go", StartLine: 30, EndLine: 30},
			},
			{
				Rule:     "tainted-sql",
				Severity: rule.SeverityHigh,
				Message:  "untrusted http_param reaches db.Query at api/other.go:8",
				Location: &fact.Location{File: "api/other.go", StartLine: 8, EndLine: 8},
			},
			{
				Rule:     "uncovered-sink",
				Severity: rule.SeverityMedium,
				Message:  "uncovered sink at api/handler.go:30",
				Location: &fact.Location{File: "api/handler.go", StartLine: 30, EndLine: 30},
			},
		},
	}

	var buf bytes.Buffer
	if err := SARIF(&buf, res); err != nil {
		t.Fatalf("SARIF failed: %v", err)
	}

	output := buf.String()

	// Must be valid JSON
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("SARIF output is not valid JSON: %v", err)
	}

	if !strings.Contains(output, `"version": "2.1.0"`) {
		t.Errorf("Missing SARIF version, got: %s", output)
	}
	if !strings.Contains(output, `"Leviathan"`) {
		t.Errorf("Missing tool name, got: %s", output)
	}

	// Rule descriptors: tainted-sql appears twice in findings but must be
	// declared once; both IDs present.
	if got := strings.Count(output, `"id": "tainted-sql"`); got != 1 {
		t.Errorf("Expected 1 tainted-sql descriptor, got %d", got)
	}
	if !strings.Contains(output, `"id": "uncovered-sink"`) {
		t.Errorf("Missing uncovered-sink descriptor, got: %s", output)
	}

	// Results with messages and locations
	if !strings.Contains(output, "untrusted http_param reaches db.Query at api/handler.go:30") {
		t.Errorf("Missing finding message, got: %s", output)
	}
	if !strings.Contains(output, `"uri": "api/other.go"`) {
		t.Errorf("Missing artifact URI, got: %s", output)
	}
	if !strings.Contains(output, `"startLine": 8`) {
		t.Errorf("Missing start line, got: %s", output)
	}

	// Severity mapping
	if !strings.Contains(output, `"level": "error"`) {
		t.Errorf("Expected high severity mapped to error level, got: %s", output)
	}
	if !strings.Contains(output, `"level": "warning"`) {
		t.Errorf("Expected medium severity mapped to warning level, got: %s", output)
	}
}

// TestSARIF_NoLocation verifies that findings without a source location are
// still emitted as results.
func TestSARIF_NoLocation(t *testing.T) {
	res := &rule.Result{
		RunID: "abc",
		Findings: []rule.Finding{
			{
				Rule:     "orphan-flow",
				Severity: rule.SeverityLow,
				Message:  "flow edge with no located endpoints",
			},
		},
	}

	var buf bytes.Buffer
	if err := SARIF(&buf, res); err != nil {
		t.Fatalf("SARIF failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "flow edge with no located endpoints") {
		t.Errorf("Missing locationless result, got: %s", output)
	}
	if !strings.Contains(output, `"level": "note"`) {
		t.Errorf("Expected low severity mapped to note level, got: %s", output)
	}
}

// TestSARIF_EmptyResult verifies an empty run still yields a well-formed report.
func TestSARIF_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := SARIF(&buf, &rule.Result{RunID: "empty"}); err != nil {
		t.Fatalf("SARIF failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("SARIF output is not valid JSON: %v", err)
	}
	if _, ok := doc["runs"]; !ok {
		t.Errorf("Missing runs array, got: %s", buf.String())
	}
}
