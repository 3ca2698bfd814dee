// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package main implements the Leviathan CLI for evaluating correlation rules
// over extractor fact documents.
//
// Usage:
//
//	leviathan init                     Create .leviathan/engine.yaml configuration
//	leviathan evaluate [--json]        Evaluate rules over a fact document
//	leviathan rules --validate         Validate a rule set without evaluating
//	leviathan completion bash          Generate shell completion script
package main

import (
	"flag"
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds flags shared by all commands.
type GlobalFlags struct {
	// JSON switches all command output to machine-readable JSON.
	JSON bool

	// Quiet suppresses progress output. Auto-set when JSON is.
	Quiet bool

	// NoColor disables colored output.
	NoColor bool

	// Verbose raises log verbosity; 1 enables debug logging.
	Verbose int
}

// main is the entry point for the Leviathan CLI.
//
// It parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --config: Path to .leviathan/engine.yaml configuration file
//
// Commands:
//   - init: Create .leviathan/engine.yaml configuration
//   - evaluate: Evaluate a rule set over a fact document
//   - rules: Inspect and validate rule sets
//   - completion: Generate shell completion scripts
func main() {
	// Global flags
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .leviathan/engine.yaml (default: ./.leviathan/engine.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Leviathan - Static Analysis Correlation Engine

Leviathan correlates facts produced by independent static-analysis
extractors (taint tracking, coverage, dependency audit) and evaluates
declarative rules over them. Rules combine category patterns with filter
expressions over field values, reachability, and source proximity, and
emit findings with severities and interpolated messages.

Usage:
  leviathan <command> [options]

Commands:
  init          Create .leviathan/engine.yaml configuration
  evaluate      Evaluate a rule set over a fact document
  rules         Inspect and validate rule sets
  version       Show version and exit
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
  --config      Path to .leviathan/engine.yaml
  --version     Show version and exit

Examples:
  leviathan init                               Create default configuration
  leviathan evaluate --facts facts.json --rules rules.yaml
  leviathan evaluate --facts facts.json --rules rules.yaml --json
  leviathan evaluate --facts facts.json --rules rules.yaml --sarif out.sarif
  leviathan rules --validate --rules rules.yaml
  leviathan rules --categories                 List known fact categories
  leviathan completion bash                    Generate bash completion script

Getting Started:
  1. Create configuration:     leviathan init
  2. Produce a fact document:  run your extractors
  3. Evaluate rules:           leviathan evaluate --facts facts.json --rules rules.yaml

Exit Codes:
  0   Clean run (findings may still be reported)
  2   Fact document error
  3   Rule set error
  5   Every rule failed
  6   Run completed but some rules failed

Environment Variables:
  LEVIATHAN_FACTS_LIMIT_BYTES   Fact document soft size limit (default 256 MiB)

For detailed command help: leviathan <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("leviathan version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "evaluate":
		runEvaluate(cmdArgs, *configPath)
	case "rules":
		runRules(cmdArgs, *configPath)
	case "completion":
		runCompletion(cmdArgs)
	case "version":
		fmt.Printf("leviathan version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
