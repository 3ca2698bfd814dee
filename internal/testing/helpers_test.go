// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// TestSetupTestStore verifies the store is built with all indices.
func TestSetupTestStore(t *testing.T) {
	store := SetupTestStore(t, nil)

	require.NotNil(t, store)
	assert.Equal(t, 0, store.Arena().Len(), "Should start with no facts")
	assert.Empty(t, store.ByCategory(fact.CategoryTaintSink))
}

// TestAddSource verifies source seeding and field resolution.
func TestAddSource(t *testing.T) {
	var src fact.ID
	store := SetupTestStore(t, func(b *fact.Builder) {
		src = AddSource(t, b, "http_param", `r.URL.Query().Get("id")`, "api/handler.go", 12)
	})

	f, ok := store.Get(src)
	require.True(t, ok)

	kind, ok := f.Field("kind")
	require.True(t, ok)
	assert.Equal(t, "http_param", kind.Str())

	loc, ok := f.Location()
	require.True(t, ok)
	assert.Equal(t, "api/handler.go", loc.File)
	assert.Equal(t, 12, loc.StartLine)
}

// TestAddEdge verifies flow edges feed the flow index.
func TestAddEdge(t *testing.T) {
	var src, snk fact.ID
	store := SetupTestStore(t, func(b *fact.Builder) {
		src = AddSource(t, b, "http_param", "input()", "a.go", 1)
		snk = AddSink(t, b, "sql_exec", "db.Query", "a.go", 2)
		AddEdge(t, b, src, snk)
	})

	assert.True(t, store.Reachable(src, snk))
	assert.False(t, store.Reachable(snk, src))
}

// TestLoadRules verifies YAML rule parsing.
func TestLoadRules(t *testing.T) {
	rules := LoadRules(t, `
rules:
  - name: any-sink
    severity: medium
    match:
      - var: snk
        category: taint_sink
    emit:
      message: "sink at {snk.location.file}"
`)

	require.Len(t, rules, 1)
	assert.Equal(t, "any-sink", rules[0].Name)
	require.Len(t, rules[0].Patterns, 1)
	assert.Equal(t, "snk", rules[0].Patterns[0].Var)
}
