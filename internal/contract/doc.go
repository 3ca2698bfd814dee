// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package contract provides validation constants and utilities for Leviathan.
//
// This internal package contains resource-limit constants and validation
// functions shared by the CLI and the evaluation engine.
//
// # Fact Document Limits
//
// Leviathan enforces a soft limit on fact document size to prevent memory
// exhaustion when loading extractor output:
//
//	// Default limit is 256 MiB
//	limit := contract.FactDocumentLimitBytes()
//
//	// Validate a document before decoding
//	result := contract.ValidateFactDocumentSize(info.Size())
//	if !result.OK {
//	    log.Printf("Validation failed: %s", result.Message)
//	}
//
// # Configuration via Environment
//
// The soft limit can be adjusted via the LEVIATHAN_FACTS_LIMIT_BYTES
// environment variable. This is useful for memory-constrained environments
// or when analyzing very large codebases:
//
//	export LEVIATHAN_FACTS_LIMIT_BYTES=67108864  # 64 MiB
//
// If the environment variable is not set or invalid, the default limit
// of 256 MiB (DefaultFactDocumentLimitBytes) is used.
//
// # Constants
//
// The package exports these constants:
//
//   - DefaultFactDocumentLimitBytes: Baseline fact document limit (256 MiB)
//   - RuleNameMaxBytes: Maximum length for rule names (128 bytes)
//   - DefaultMaxPatternsPerRule: Join-depth limit per rule (8 patterns,
//     overridable via LEVIATHAN_MAX_PATTERNS_PER_RULE)
package contract
