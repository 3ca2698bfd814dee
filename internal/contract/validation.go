// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultFactDocumentLimitBytes is the baseline soft limit for fact
	// document size.
	DefaultFactDocumentLimitBytes = 256 << 20 // 256 MiB

	// RuleNameMaxBytes is the maximum length for a rule name.
	RuleNameMaxBytes = 128

	// DefaultMaxPatternsPerRule bounds the join depth of a single rule.
	// Each extra pattern multiplies the candidate binding space.
	DefaultMaxPatternsPerRule = 8
)

// MaxPatternsPerRule returns the effective pattern-count limit per rule.
// Controlled via env LEVIATHAN_MAX_PATTERNS_PER_RULE; falls back to
// DefaultMaxPatternsPerRule.
func MaxPatternsPerRule() int {
	if v := os.Getenv("LEVIATHAN_MAX_PATTERNS_PER_RULE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxPatternsPerRule
}

// FactDocumentLimitBytes returns the effective soft limit for fact document
// size. Controlled via env LEVIATHAN_FACTS_LIMIT_BYTES; falls back to
// DefaultFactDocumentLimitBytes.
func FactDocumentLimitBytes() int64 {
	if v := os.Getenv("LEVIATHAN_FACTS_LIMIT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultFactDocumentLimitBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateFactDocumentSize checks a fact document's byte size against the
// soft limit before it is decoded into an arena.
func ValidateFactDocumentSize(size int64) *ValidationResult {
	if size > FactDocumentLimitBytes() {
		return &ValidationResult{
			OK:      false,
			Message: "fact document exceeds soft limit",
		}
	}
	return &ValidationResult{OK: true}
}

// ValidateRuleName checks a rule name against the length limit.
func ValidateRuleName(name string) *ValidationResult {
	if len(name) > RuleNameMaxBytes {
		return &ValidationResult{
			OK:      false,
			Message: "rule name exceeds length limit",
		}
	}
	return &ValidationResult{OK: true}
}

// ValidatePatternCount checks a rule's pattern count against the join-depth
// limit.
func ValidatePatternCount(count int) *ValidationResult {
	if count > MaxPatternsPerRule() {
		return &ValidationResult{
			OK:      false,
			Message: "rule exceeds pattern count limit",
		}
	}
	return &ValidationResult{OK: true}
}
