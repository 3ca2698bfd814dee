// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the Leviathan CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for different error categories.
//
// # Usage Example
//
// Creating and displaying errors:
//
//	err := errors.NewFactsError(
//	    "Cannot load fact document",
//	    "facts.json contains a flow edge referencing the unknown label 'sink'",
//	    "Re-run the extractor, or check that every edge endpoint is labeled",
//	    underlyingErr,
//	)
//	if err != nil {
//	    // Simple approach: print and exit with colored output
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	Error: Cannot load fact document
//	Cause: facts.json contains a flow edge referencing the unknown label 'sink'
//	Fix:   Re-run the extractor, or check that every edge endpoint is labeled
//
// For JSON output use ToJSON(), which yields {"error": ..., "cause": ...,
// "fix": ..., "exit_code": ...}.
//
// # Exit Codes
//
// The package defines semantic exit codes following Unix conventions:
//   - ExitSuccess (0): Successful execution, no failed rules
//   - ExitConfig (1): Configuration errors (missing/invalid config)
//   - ExitFacts (2): Fact document errors (unreadable, malformed, dangling edges)
//   - ExitRules (3): Rule set errors (unparsable filter, unknown category)
//   - ExitInput (4): Invalid user input (bad arguments, validation errors)
//   - ExitEvaluation (5): Every rule failed to evaluate
//   - ExitPartial (6): Run completed but some rules failed (findings still reported)
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing/invalid config files).
	ExitConfig = 1

	// ExitFacts indicates fact document errors (unreadable file, malformed
	// JSON, unknown categories, dangling flow edges).
	ExitFacts = 2

	// ExitRules indicates rule set errors (bad YAML, unparsable filter
	// expressions, unknown categories or operators).
	ExitRules = 3

	// ExitInput indicates invalid user input (bad arguments, validation errors).
	ExitInput = 4

	// ExitEvaluation indicates that every rule in the run failed, so nothing
	// could be evaluated. Distinct from a clean run with zero findings.
	ExitEvaluation = 5

	// ExitPartial indicates a completed run in which some rules failed.
	// Findings from the surviving rules are still reported.
	ExitPartial = 6

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error that caused this error (optional).
	// This enables error wrapping and compatibility with errors.Is/As.
	Err error
}

// Error implements the error interface.
//
// It returns a simple error message string. If an underlying error is present,
// it appends that error's message for context.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Use this for errors related to missing, invalid, or malformed configuration files.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load Leviathan configuration",
//	    "The config file .leviathan/engine.yaml is malformed",
//	    "Run 'leviathan init' to regenerate a default configuration",
//	    nil,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitConfig,
		Err:      err,
	}
}

// NewFactsError creates a fact document error with exit code ExitFacts.
//
// Use this for errors loading or decoding the extractor fact document:
// unreadable files, malformed JSON, unknown categories, or flow edges that
// reference unknown labels.
//
// Example:
//
//	return NewFactsError(
//	    "Cannot load fact document",
//	    "facts.json: flow_edge fact 12 references unknown label 'sink'",
//	    "Re-run the extractor that produced the document",
//	    err,
//	)
func NewFactsError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitFacts,
		Err:      err,
	}
}

// NewRulesError creates a rule set error with exit code ExitRules.
//
// Use this for errors loading the YAML rule set: unparsable filter
// expressions, unknown categories or operators, duplicate pattern variables.
//
// Example:
//
//	return NewRulesError(
//	    "Cannot load rule set",
//	    "rules.yaml: rule 3 (\"tainted-sql\"): filter: position 18: expected \")\"",
//	    "Fix the filter expression and retry",
//	    err,
//	)
func NewRulesError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitRules,
		Err:      err,
	}
}

// NewInputError creates an input validation error with exit code ExitInput.
//
// Use this for errors related to invalid user input, such as bad command-line
// arguments or failed validation checks. Input errors typically do not wrap
// an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "Invalid worker count",
//	    "--workers must be a positive integer",
//	    "Use e.g. --workers 4, or omit the flag for the hardware default",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInput,
		Err:      nil, // Input errors typically don't wrap underlying errors
	}
}

// NewEvaluationError creates an all-rules-failed error with exit code
// ExitEvaluation.
//
// Use this when a run produced no usable results because every rule failed;
// callers must be able to tell this apart from a clean run with no findings.
//
// Example:
//
//	return NewEvaluationError(
//	    "Evaluation produced no results",
//	    "All 12 rules failed (see warnings above)",
//	    "Inspect the per-rule errors; a shared cause is usually a bad field name",
//	    err,
//	)
func NewEvaluationError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitEvaluation,
		Err:      err,
	}
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program, such as
// assertion failures, unexpected nil values, or unhandled error cases.
// Internal errors should be reported to the maintainers.
//
// Example:
//
//	return NewInternalError(
//	    "Unexpected nil store",
//	    "The index build returned no store and no error",
//	    "This is a bug. Please report it at github.com/kraklabs/leviathan/issues",
//	    err,
//	)
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInternal,
		Err:      err,
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter.
//
// Example output:
//
//	Error: Cannot load rule set
//	Cause: rules.yaml contains an unknown category "mystery"
//	Fix:   Check the category against 'leviathan rules --categories'
//
// Empty Cause or Fix fields are omitted from the output.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting to ensure thread safety.
func (e *UserError) Format(noColor bool) string {
	// Save and restore global color state to avoid side effects
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
//
// This structure is suitable for machine consumption and integrates with
// CLI commands that support --json output mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
//
// Fields with empty values (Cause, Fix) are omitted from JSON output
// using the omitempty tag.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code.
//
// If the error is a UserError, it uses Format() for colored output or
// ToJSON() for JSON mode. For non-UserError types, it prints a simple
// error message and exits with ExitInternal.
//
// This function never returns - it always calls os.Exit().
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encode error is intentionally ignored since we're about to exit.
			// If JSON encoding fails, the program will still exit with the correct code.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	// Fallback for non-UserError
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
