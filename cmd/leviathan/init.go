// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	uerrors "github.com/kraklabs/leviathan/internal/errors"
	"github.com/kraklabs/leviathan/internal/ui"
)

// runInit executes the 'init' CLI command, creating a .leviathan/engine.yaml
// configuration file with the default engine bounds.
//
// Flags:
//   - --force: Overwrite existing configuration
//   - --facts: Default fact document path for 'evaluate'
//   - --rules: Default rule set path for 'evaluate'
//
// Examples:
//
//	leviathan init
//	leviathan init --facts out/facts.json --rules rules/leviathan.yaml
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	factsPath := fs.String("facts", "", "Default fact document path")
	rulesPath := fs.String("rules", "", "Default rule set path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: leviathan init [options]

Creates .leviathan/engine.yaml with the default engine bounds:
rule_timeout 1s, max_findings_per_rule 2000, workers one per CPU.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		uerrors.FatalError(uerrors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s is already present", configPath),
			"Use --force to overwrite",
		), false)
	}

	cfg := DefaultConfig()
	cfg.Facts = *factsPath
	cfg.Rules = *rulesPath

	if err := SaveConfig(configPath, cfg); err != nil {
		uerrors.FatalError(uerrors.NewConfigError(
			"Cannot write configuration",
			err.Error(),
			"Check directory permissions",
			err,
		), false)
	}

	ui.Successf("Created %s", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  leviathan evaluate --facts facts.json --rules rules.yaml")
	fmt.Println("  leviathan rules --categories")
}
