// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"errors"
	"fmt"
)

// ErrAllRulesFailed marks a run in which not a single rule completed.
// Callers use it to tell "no findings because the code is clean" from
// "no findings because nothing could be evaluated".
var ErrAllRulesFailed = errors.New("all rules failed")

// BindingError is a recoverable evaluation failure local to one binding set:
// an unbound variable, a field unknown for the fact's category, a type
// mismatch in a comparison, or a distance across files. The binding set is
// excluded from the result; the rule keeps evaluating.
type BindingError struct {
	Path   string
	Detail string
}

func (e *BindingError) Error() string {
	if e.Path == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Detail)
}

func bindingErrf(path, format string, args ...interface{}) *BindingError {
	return &BindingError{Path: path, Detail: fmt.Sprintf(format, args...)}
}

// asBindingError reports whether err is recoverable at binding granularity.
func asBindingError(err error) bool {
	var be *BindingError
	return errors.As(err, &be)
}

// TooManyFindingsError aborts a rule whose evaluation exceeded the findings
// cap. The rule is recorded as failed and contributes zero findings; this is
// an abort, not a truncation.
type TooManyFindingsError struct {
	Rule  string
	Limit int
}

func (e *TooManyFindingsError) Error() string {
	return fmt.Sprintf("rule %q exceeded the findings cap of %d", e.Rule, e.Limit)
}
