// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/leviathan/internal/contract"
	"github.com/kraklabs/leviathan/internal/errors"
	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
	"github.com/kraklabs/leviathan/pkg/rule"
)

// SessionConfig holds configuration for opening an evaluation session.
type SessionConfig struct {
	// FactsPath is the path to the extractor fact document (JSON).
	FactsPath string

	// RulesPath is the path to the YAML rule set.
	RulesPath string

	// Engine holds the resource limits for the run. Zero fields fall back
	// to rule.DefaultConfig values.
	Engine rule.Config
}

// Session holds everything an evaluation command needs.
type Session struct {
	Store  *index.Store
	Engine *rule.Engine
	Rules  []rule.Rule
}

// OpenSession loads facts and rules and assembles the engine.
//
// The function:
//  1. Validates the fact document size against the contract soft limit
//  2. Decodes the document into an immutable arena
//  3. Builds the type, spatial, and flow indices
//  4. Loads and validates the rule set
//
// Errors are returned as *errors.UserError so callers can surface them with
// the right exit code.
func OpenSession(config SessionConfig, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("bootstrap.session.open.start",
		"facts", config.FactsPath,
		"rules", config.RulesPath,
	)

	arena, err := LoadFacts(config.FactsPath)
	if err != nil {
		return nil, err
	}

	store, err := index.NewStore(arena, logger)
	if err != nil {
		return nil, errors.NewFactsError(
			"Cannot index fact document",
			fmt.Sprintf("%s: %v", config.FactsPath, err),
			"Re-run the extractor that produced the document",
			err,
		)
	}

	rules, err := LoadRules(config.RulesPath)
	if err != nil {
		return nil, err
	}

	engine := rule.NewEngine(store, config.Engine, logger)

	logger.Info("bootstrap.session.open.success",
		"facts", arena.Len(),
		"rules", len(rules),
	)

	return &Session{
		Store:  store,
		Engine: engine,
		Rules:  rules,
	}, nil
}

// LoadFacts reads and decodes a fact document into an arena.
func LoadFacts(path string) (*fact.Arena, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewFactsError(
			"Cannot read fact document",
			fmt.Sprintf("%s: %v", path, err),
			"Check the --facts path",
			err,
		)
	}
	if result := contract.ValidateFactDocumentSize(info.Size()); !result.OK {
		return nil, errors.NewFactsError(
			"Fact document too large",
			fmt.Sprintf("%s is %d bytes, limit is %d", path, info.Size(), contract.FactDocumentLimitBytes()),
			"Raise LEVIATHAN_FACTS_LIMIT_BYTES or split the extractor output",
			nil,
		)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFactsError(
			"Cannot read fact document",
			fmt.Sprintf("%s: %v", path, err),
			"Check the --facts path and file permissions",
			err,
		)
	}
	defer func() { _ = f.Close() }()

	arena, err := fact.Decode(f)
	if err != nil {
		return nil, errors.NewFactsError(
			"Cannot decode fact document",
			fmt.Sprintf("%s: %v", path, err),
			"Re-run the extractor that produced the document",
			err,
		)
	}
	return arena, nil
}

// LoadRules reads and validates a YAML rule set.
func LoadRules(path string) ([]rule.Rule, error) {
	rules, err := rule.LoadFile(path)
	if err != nil {
		return nil, errors.NewRulesError(
			"Cannot load rule set",
			fmt.Sprintf("%s: %v", path, err),
			"Fix the rule set and retry; 'leviathan rules --validate' shows details",
			err,
		)
	}
	for _, r := range rules {
		if result := contract.ValidateRuleName(r.Name); !result.OK {
			return nil, errors.NewRulesError(
				"Cannot load rule set",
				fmt.Sprintf("%s: rule %q: %s", path, r.Name, result.Message),
				"Shorten the rule name",
				nil,
			)
		}
		if result := contract.ValidatePatternCount(len(r.Patterns)); !result.OK {
			return nil, errors.NewRulesError(
				"Cannot load rule set",
				fmt.Sprintf("%s: rule %q: %s (%d patterns, limit %d)",
					path, r.Name, result.Message, len(r.Patterns), contract.MaxPatternsPerRule()),
				"Split the rule, or raise LEVIATHAN_MAX_PATTERNS_PER_RULE",
				nil,
			)
		}
	}
	return rules, nil
}
