// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package testing provides test helpers for Leviathan integration tests.
//
// This package wraps arena construction and index building with seeding
// utilities, so tests can assemble a realistic fact store in a few lines.
//
// # Quick Start
//
// Use SetupTestStore to build an indexed store from seeded facts:
//
//	func TestMyFeature(t *testing.T) {
//	    store := testing.SetupTestStore(t, func(b *fact.Builder) {
//	        src := testing.AddSource(t, b, "http_param", `r.URL.Query().Get("id")`, "api/handler.go", 12)
//	        snk := testing.AddSink(t, b, "sql_exec", "db.Query", "api/handler.go", 30)
//	        testing.AddEdge(t, b, src, snk)
//	    })
//
//	    // Store is ready with type, spatial, and flow indices built
//	    ids := store.ByCategory(fact.CategoryTaintSink)
//	    require.Len(t, ids, 1)
//	}
//
// # Seeding Test Data
//
// The package provides helpers for inserting common fact categories:
//   - AddSource: add a taint source at a location
//   - AddSink: add a taint sink at a location
//   - AddUncovered: add an uncovered-line fact
//   - AddVulnerability: add an advisory fact
//   - AddEdge: connect two facts with a flow edge
//
// # Rules
//
// LoadRules parses a YAML rule set from a string, failing the test on error:
//
//	rules := testing.LoadRules(t, `
//	rules:
//	  - name: tainted-sql
//	    severity: high
//	    ...
//	`)
package testing
