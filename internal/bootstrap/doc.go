// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package bootstrap handles Leviathan session setup.
//
// This internal package wires the pieces a CLI command needs before it can
// evaluate rules: loading the extractor fact document, loading the YAML rule
// set, and assembling the indexed store plus engine. It translates low-level
// load failures into structured errors with exit codes, so commands only have
// to print them.
//
// # Session Workflow
//
// A typical workflow for an evaluation command:
//
//	// Load the fact document and build indices
//	session, err := bootstrap.OpenSession(bootstrap.SessionConfig{
//	    FactsPath: "facts.json",
//	    RulesPath: "rules.yaml",
//	}, logger)
//	if err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
//
//	// Evaluate
//	result, err := session.Engine.Evaluate(ctx, session.Rules)
//
// # Validation
//
// OpenSession enforces the fact document soft limit from the contract
// package before decoding, so a runaway extractor output fails fast with a
// clear message instead of exhausting memory.
package bootstrap
