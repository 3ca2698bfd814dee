// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package output

import (
	"fmt"
	"io"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/kraklabs/leviathan/pkg/rule"
)

// SARIF writes an evaluation result as a SARIF 2.1.0 report.
//
// Each distinct rule name in the findings becomes a reportingDescriptor,
// and each finding becomes one result with its message, level, and physical
// location. Findings without a location are emitted without a location block
// rather than being dropped.
//
// SARIF output lets Leviathan findings feed code-scanning UIs (GitHub code
// scanning, VS Code SARIF viewers) without a bespoke importer.
func SARIF(w io.Writer, res *rule.Result) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("SARIF report creation failed: %w", err)
	}

	run := sarif.NewRunWithInformationURI("Leviathan", "https://github.com/kraklabs/leviathan")

	seen := make(map[string]bool)
	for i := range res.Findings {
		f := &res.Findings[i]
		level := severityToSarifLevel(f.Severity)

		if !seen[f.Rule] {
			seen[f.Rule] = true
			run.AddRule(f.Rule).
				WithDescription(f.Rule).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: level,
				})
		}

		result := sarif.NewRuleResult(f.Rule).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(level)

		if f.Location != nil {
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Location.File)).
					WithRegion(sarif.NewRegion().
						WithStartLine(f.Location.StartLine).
						WithEndLine(f.Location.EndLine)),
			)
			result = result.WithLocations([]*sarif.Location{location})
		}

		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}

// SARIFToFile writes the result as SARIF to the given path, creating or
// truncating the file.
func SARIFToFile(path string, res *rule.Result) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("cannot write SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()
	return SARIF(file, res)
}

// severityToSarifLevel maps rule severities onto the three SARIF levels.
func severityToSarifLevel(s rule.Severity) string {
	switch s {
	case rule.SeverityCritical, rule.SeverityHigh:
		return "error"
	case rule.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
