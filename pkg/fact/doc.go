// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package fact defines the immutable observation model of the Leviathan
// correlation core.
//
// A Fact is an atomic observation produced by an external extractor: a taint
// source, a taint sink, an uncovered line, a dependency, a vulnerability, or
// a data-flow edge connecting two other facts. Facts are immutable after
// construction and expose only getters.
//
// Facts live in an Arena: a contiguous, append-only collection that assigns
// dense integer identifiers at build time. Identifiers are stable for the
// lifetime of one arena and are never reused. All downstream indices store
// identifiers, not fact copies, so sharing an arena across goroutines is safe
// once it is built.
//
// # Building an arena
//
//	b := fact.NewBuilder()
//	src, _ := b.Add(fact.TaintSource{Kind: "user_input", Expression: "r.URL.Query"},
//	    fact.WithLocation(fact.Location{File: "handler.go", StartLine: 10, StartCol: 3, EndLine: 10, EndCol: 28}),
//	    fact.WithConfidence(0.9),
//	    fact.WithFlowID("chain-1"),
//	)
//	arena := b.Build()
//	f, ok := arena.Get(src)
//
// The JSON interchange codec in this package decodes the extractor exchange
// format into an arena; see Decode.
package fact
