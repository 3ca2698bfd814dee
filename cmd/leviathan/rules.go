// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/leviathan/internal/bootstrap"
	uerrors "github.com/kraklabs/leviathan/internal/errors"
	"github.com/kraklabs/leviathan/internal/output"
	"github.com/kraklabs/leviathan/internal/ui"
	"github.com/kraklabs/leviathan/pkg/fact"
)

// RuleInfo represents one rule for JSON output.
type RuleInfo struct {
	Name     string   `json:"name"`
	Severity string   `json:"severity"`
	Patterns []string `json:"patterns"`
	Filter   string   `json:"filter,omitempty"`
}

// runRules executes the 'rules' CLI command, inspecting and validating
// rule sets without evaluating them.
//
// Flags:
//   - --rules: Rule set path (default from config)
//   - --validate: Only validate; print a summary and exit
//   - --categories: List the known fact categories and exit
//   - --json: Output as JSON
//
// Examples:
//
//	leviathan rules --rules rules.yaml            List rules with patterns
//	leviathan rules --validate --rules rules.yaml Validate without evaluating
//	leviathan rules --categories                  List known fact categories
func runRules(args []string, configPath string) {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	rulesPath := fs.String("rules", "", "Rule set path (YAML)")
	validate := fs.Bool("validate", false, "Validate the rule set and exit")
	categories := fs.Bool("categories", false, "List known fact categories and exit")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: leviathan rules [options]

Inspects and validates YAML rule sets. Validation covers everything
'evaluate' would reject: YAML structure, categories, operators, filter
expression syntax, and duplicate pattern variables.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  leviathan rules --rules rules.yaml
  leviathan rules --validate --rules rules.yaml
  leviathan rules --categories
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *categories {
		if *jsonOutput {
			names := make([]string, 0)
			for _, c := range fact.Categories() {
				names = append(names, c.String())
			}
			if err := output.JSON(map[string][]string{"categories": names}); err != nil {
				uerrors.FatalError(err, true)
			}
			return
		}
		ui.SubHeader("Categories:")
		for _, c := range fact.Categories() {
			fmt.Printf("  %s\n", c)
		}
		return
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		uerrors.FatalError(uerrors.NewConfigError(
			"Cannot load Leviathan configuration",
			err.Error(),
			"Run 'leviathan init' to regenerate a default configuration",
			err,
		), *jsonOutput)
	}
	if *rulesPath == "" {
		*rulesPath = cfg.Rules
	}
	if *rulesPath == "" {
		uerrors.FatalError(uerrors.NewInputError(
			"Missing rule set path",
			"No --rules flag and no default in .leviathan/engine.yaml",
			"Pass --rules rules.yaml",
		), *jsonOutput)
	}

	rules, err := bootstrap.LoadRules(*rulesPath)
	if err != nil {
		uerrors.FatalError(err, *jsonOutput)
	}

	if *validate {
		if *jsonOutput {
			if err := output.JSON(map[string]any{"valid": true, "rules": len(rules)}); err != nil {
				uerrors.FatalError(err, true)
			}
			return
		}
		ui.Successf("%s: %d rules valid", *rulesPath, len(rules))
		return
	}

	if *jsonOutput {
		infos := make([]RuleInfo, 0, len(rules))
		for _, r := range rules {
			info := RuleInfo{Name: r.Name, Severity: r.Severity.String()}
			for _, p := range r.Patterns {
				info.Patterns = append(info.Patterns, fmt.Sprintf("%s:%s", p.Var, p.Category))
			}
			if r.Filter != nil {
				info.Filter = r.Filter.String()
			}
			infos = append(infos, info)
		}
		if err := output.JSON(map[string]any{"rules": infos}); err != nil {
			uerrors.FatalError(err, true)
		}
		return
	}

	ui.Header("Rules")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tNAME\tPATTERNS\tFILTER")
	for _, r := range rules {
		patterns := ""
		for i, p := range r.Patterns {
			if i > 0 {
				patterns += ", "
			}
			patterns += fmt.Sprintf("%s:%s", p.Var, p.Category)
		}
		filter := "-"
		if r.Filter != nil {
			filter = r.Filter.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ui.SeverityText(r.Severity.String()), r.Name, patterns, filter)
	}
	_ = w.Flush()
	fmt.Printf("\n%s %s rules\n", ui.Label("Total:"), ui.CountText(len(rules)))
}
