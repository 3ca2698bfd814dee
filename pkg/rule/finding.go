// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"sort"
	"strings"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// Finding is the immutable output of one satisfied rule binding.
type Finding struct {
	Rule       string
	Severity   Severity
	Message    string
	Confidence float64
	Location   *fact.Location
	Related    []fact.ID
	Metadata   map[string]string
}

// findingBuilder turns satisfying binding sets into findings.
type findingBuilder struct {
	ev *Evaluator
}

// build produces exactly one finding for the binding set, or a *BindingError
// when a template placeholder does not resolve (the finding is dropped, never
// emitted with the raw placeholder).
//
// The location comes from the first bound fact carrying one, in
// pattern-declaration order. Severity and confidence are the rule's static
// declaration.
func (fb *findingBuilder) build(r *Rule, b Binding) (Finding, error) {
	msg, err := fb.interpolate(r.Emit.Message, b)
	if err != nil {
		return Finding{}, err
	}

	f := Finding{
		Rule:       r.Name,
		Severity:   r.Severity,
		Message:    msg,
		Confidence: r.Emit.Confidence,
		Related:    relatedIDs(b),
	}
	if len(r.Emit.Metadata) > 0 {
		f.Metadata = make(map[string]string, len(r.Emit.Metadata))
		for k, v := range r.Emit.Metadata {
			f.Metadata[k] = v
		}
	}

	for _, p := range r.Patterns {
		id, ok := b[p.Var]
		if !ok {
			continue
		}
		bound, ok := fb.ev.store.Get(id)
		if !ok {
			continue
		}
		if loc, hasLoc := bound.Location(); hasLoc {
			f.Location = &loc
			break
		}
	}
	return f, nil
}

// interpolate substitutes every {path} placeholder with its resolved value.
func (fb *findingBuilder) interpolate(template string, b Binding) (string, error) {
	var sb strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		sb.WriteString(rest[:open])

		ref := rest[open+1 : open+closing]
		rest = rest[open+closing+1:]

		path, err := parseTemplatePath(ref)
		if err != nil {
			return "", err
		}
		v, err := fb.ev.ResolvePath(b, path)
		if err != nil {
			return "", err
		}
		sb.WriteString(v.String())
	}
}

// parseTemplatePath parses the inside of a {placeholder}.
func parseTemplatePath(ref string) (*PathExpr, error) {
	parts := strings.Split(strings.TrimSpace(ref), ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, bindingErrf(ref, "empty template placeholder")
	}
	for _, p := range parts {
		if p == "" {
			return nil, bindingErrf(ref, "malformed template placeholder")
		}
	}
	return &PathExpr{Var: parts[0], Fields: parts[1:]}, nil
}

// relatedIDs collects the bound fact identifiers in ascending order.
func relatedIDs(b Binding) []fact.ID {
	out := make([]fact.ID, 0, len(b))
	for _, id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
