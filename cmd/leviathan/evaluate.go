// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/leviathan/internal/bootstrap"
	uerrors "github.com/kraklabs/leviathan/internal/errors"
	"github.com/kraklabs/leviathan/internal/output"
	"github.com/kraklabs/leviathan/internal/ui"
	"github.com/kraklabs/leviathan/pkg/rule"
)

// EvaluateResult represents the evaluation outcome for JSON output.
type EvaluateResult struct {
	RunID    string            `json:"run_id"`
	Findings []FindingJSON     `json:"findings"`
	Stats    EvaluateStatsJSON `json:"stats"`
}

// FindingJSON is the JSON shape of one finding.
type FindingJSON struct {
	Rule       string            `json:"rule"`
	Severity   string            `json:"severity"`
	Message    string            `json:"message"`
	Confidence float64           `json:"confidence"`
	File       string            `json:"file,omitempty"`
	StartLine  int               `json:"start_line,omitempty"`
	EndLine    int               `json:"end_line,omitempty"`
	Related    []uint32          `json:"related,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// EvaluateStatsJSON is the JSON shape of run statistics.
type EvaluateStatsJSON struct {
	TotalRules    int             `json:"total_rules"`
	Succeeded     int             `json:"succeeded"`
	Failed        int             `json:"failed"`
	TotalFindings int             `json:"total_findings"`
	DurationMS    int64           `json:"duration_ms"`
	Rules         []RuleStatsJSON `json:"rules"`
}

// RuleStatsJSON is the JSON shape of per-rule statistics.
type RuleStatsJSON struct {
	Rule       string `json:"rule"`
	DurationMS int64  `json:"duration_ms"`
	Findings   int    `json:"findings"`
	Error      string `json:"error,omitempty"`
}

// runEvaluate executes the 'evaluate' CLI command, correlating a fact
// document against a YAML rule set.
//
// It loads the fact document, builds the indices, evaluates every rule in
// parallel under the configured resource bounds, and prints the findings.
//
// Flags:
//   - --facts: Fact document path (default from config)
//   - --rules: Rule set path (default from config)
//   - --json: Output results as JSON
//   - --sarif: Also write a SARIF 2.1.0 report to the given path
//   - --workers: Parallel rule evaluation width (default: one per CPU)
//   - --timeout: Per-rule wall-clock budget (default: from config)
//   - --max-findings: Per-rule findings cap (default: from config)
//   - --no-color: Disable colored output
//   - --debug: Enable debug logging
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
//
// Examples:
//
//	leviathan evaluate --facts facts.json --rules rules.yaml
//	leviathan evaluate --facts facts.json --rules rules.yaml --json
//	leviathan evaluate --facts facts.json --rules rules.yaml --sarif out.sarif
//	leviathan evaluate --facts facts.json --rules rules.yaml --timeout 5s --workers 4
func runEvaluate(args []string, configPath string) {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	factsPath := fs.String("facts", "", "Fact document path (JSON)")
	rulesPath := fs.String("rules", "", "Rule set path (YAML)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	sarifPath := fs.String("sarif", "", "Write a SARIF 2.1.0 report to this path")
	workers := fs.Int("workers", 0, "Parallel rule evaluation width (0 = one per CPU)")
	timeout := fs.Duration("timeout", 0, "Per-rule wall-clock budget (0 = config default)")
	maxFindings := fs.Int("max-findings", 0, "Per-rule findings cap (0 = config default)")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: leviathan evaluate [options]

Evaluates a YAML rule set over an extractor fact document and reports
findings. Rules that fail (timeout, findings cap, bad field names) are
reported as warnings; findings from the surviving rules are still printed.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  leviathan evaluate --facts facts.json --rules rules.yaml
  leviathan evaluate --facts facts.json --rules rules.yaml --sarif out.sarif
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	globals := GlobalFlags{JSON: *jsonOutput, Quiet: *jsonOutput, NoColor: *noColor}
	ui.InitColors(*noColor)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		uerrors.FatalError(uerrors.NewConfigError(
			"Cannot load Leviathan configuration",
			err.Error(),
			"Run 'leviathan init' to regenerate a default configuration",
			err,
		), globals.JSON)
	}

	if *factsPath == "" {
		*factsPath = cfg.Facts
	}
	if *rulesPath == "" {
		*rulesPath = cfg.Rules
	}
	if *factsPath == "" || *rulesPath == "" {
		uerrors.FatalError(uerrors.NewInputError(
			"Missing input paths",
			"Both a fact document and a rule set are required",
			"Pass --facts and --rules, or set defaults in .leviathan/engine.yaml",
		), globals.JSON)
	}

	// Setup logging
	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Start Prometheus metrics endpoint (optional)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	engineCfg := cfg.RuleConfig()
	if *workers > 0 {
		engineCfg.Workers = *workers
	}
	if *timeout > 0 {
		engineCfg.RuleTimeout = *timeout
	}
	if *maxFindings > 0 {
		engineCfg.MaxFindingsPerRule = *maxFindings
	}

	progress := NewProgressConfig(globals)
	spinner := NewSpinner(progress, phaseDescription("loading"))

	session, err := bootstrap.OpenSession(bootstrap.SessionConfig{
		FactsPath: *factsPath,
		RulesPath: *rulesPath,
		Engine:    engineCfg,
	}, logger)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		uerrors.FatalError(err, globals.JSON)
	}

	result, evalErr := session.Engine.Evaluate(ctx, session.Rules)
	if evalErr != nil && !errors.Is(evalErr, rule.ErrAllRulesFailed) {
		uerrors.FatalError(uerrors.NewInternalError(
			"Evaluation aborted",
			evalErr.Error(),
			"This is a bug. Please report it at github.com/kraklabs/leviathan/issues",
			evalErr,
		), globals.JSON)
	}

	if *sarifPath != "" {
		if err := output.SARIFToFile(*sarifPath, result); err != nil {
			uerrors.FatalError(uerrors.NewInternalError(
				"Cannot write SARIF report",
				err.Error(),
				"Check the --sarif path and file permissions",
				err,
			), globals.JSON)
		}
	}

	if globals.JSON {
		if err := output.JSON(toEvaluateResult(result)); err != nil {
			uerrors.FatalError(err, true)
		}
	} else {
		printFindings(result)
	}

	switch {
	case errors.Is(evalErr, rule.ErrAllRulesFailed):
		uerrors.FatalError(uerrors.NewEvaluationError(
			"Evaluation produced no results",
			fmt.Sprintf("All %d rules failed", result.Stats.TotalRules),
			"Inspect the per-rule errors; a shared cause is usually a bad field name",
			evalErr,
		), globals.JSON)
	case result.Stats.Failed > 0:
		os.Exit(uerrors.ExitPartial)
	}
}

// printFindings renders the human-readable findings report.
func printFindings(result *rule.Result) {
	ui.Header("Leviathan Findings")
	fmt.Printf("%s %s\n\n", ui.Label("Run ID:"), ui.DimText(result.RunID))

	if len(result.Findings) == 0 {
		ui.Success("No findings")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEVERITY\tRULE\tLOCATION\tMESSAGE")
		for i := range result.Findings {
			f := &result.Findings[i]
			loc := "-"
			if f.Location != nil {
				loc = f.Location.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				ui.SeverityText(f.Severity.String()), f.Rule, loc, f.Message)
		}
		_ = w.Flush()
	}

	fmt.Println()
	for _, rs := range result.Stats.Rules {
		if rs.Err != nil {
			ui.Warningf("rule %q failed: %v", rs.Rule, rs.Err)
		}
	}

	fmt.Printf("%s %s findings, %s/%s rules succeeded in %s\n",
		ui.Label("Summary:"),
		ui.CountText(result.Stats.TotalFindings),
		ui.CountText(result.Stats.Succeeded),
		ui.CountText(result.Stats.TotalRules),
		result.Stats.Duration.Round(time.Millisecond),
	)
}

// toEvaluateResult converts an engine result into its JSON shape.
func toEvaluateResult(result *rule.Result) *EvaluateResult {
	out := &EvaluateResult{
		RunID:    result.RunID,
		Findings: make([]FindingJSON, 0, len(result.Findings)),
		Stats: EvaluateStatsJSON{
			TotalRules:    result.Stats.TotalRules,
			Succeeded:     result.Stats.Succeeded,
			Failed:        result.Stats.Failed,
			TotalFindings: result.Stats.TotalFindings,
			DurationMS:    result.Stats.Duration.Milliseconds(),
			Rules:         make([]RuleStatsJSON, 0, len(result.Stats.Rules)),
		},
	}

	for i := range result.Findings {
		f := &result.Findings[i]
		fj := FindingJSON{
			Rule:       f.Rule,
			Severity:   f.Severity.String(),
			Message:    f.Message,
			Confidence: f.Confidence,
			Metadata:   f.Metadata,
		}
		if f.Location != nil {
			fj.File = f.Location.File
			fj.StartLine = f.Location.StartLine
			fj.EndLine = f.Location.EndLine
		}
		for _, id := range f.Related {
			fj.Related = append(fj.Related, uint32(id))
		}
		out.Findings = append(out.Findings, fj)
	}

	for _, rs := range result.Stats.Rules {
		rj := RuleStatsJSON{
			Rule:       rs.Rule,
			DurationMS: rs.Duration.Milliseconds(),
			Findings:   rs.Findings,
		}
		if rs.Err != nil {
			rj.Error = rs.Err.Error()
		}
		out.Stats.Rules = append(out.Stats.Rules, rj)
	}

	return out
}
