// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// ruleFile is the on-disk rule set layout.
type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name     string        `yaml:"name"`
	Severity Severity      `yaml:"severity"`
	Match    []patternSpec `yaml:"match"`
	Filter   string        `yaml:"filter"`
	Emit     emitSpec      `yaml:"emit"`
}

type patternSpec struct {
	Var      string          `yaml:"var"`
	Category string          `yaml:"category"`
	Where    []conditionSpec `yaml:"where"`
}

type conditionSpec struct {
	Field string      `yaml:"field"`
	Op    string      `yaml:"op"`
	Value interface{} `yaml:"value"`
}

type emitSpec struct {
	Message    string            `yaml:"message"`
	Confidence float64           `yaml:"confidence"`
	Metadata   map[string]string `yaml:"metadata"`
}

// Load reads a YAML rule set, parses every filter expression, and validates
// each rule. Any invalid rule fails the whole load: a rule set is either
// fully usable or rejected.
func Load(r io.Reader) ([]Rule, error) {
	var file ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rule set is empty")
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		r, err := spec.toRule()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, spec.Name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadFile reads a rule set from disk.
func LoadFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule set: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (s *ruleSpec) toRule() (Rule, error) {
	r := Rule{
		Name:     s.Name,
		Severity: s.Severity,
		Emit: Emit{
			Message:    s.Emit.Message,
			Confidence: s.Emit.Confidence,
			Metadata:   s.Emit.Metadata,
		},
	}

	for _, ps := range s.Match {
		cat, err := fact.ParseCategory(ps.Category)
		if err != nil {
			return Rule{}, fmt.Errorf("pattern %q: %w", ps.Var, err)
		}
		p := Pattern{Var: ps.Var, Category: cat}
		for _, cs := range ps.Where {
			op, err := ParseOp(cs.Op)
			if err != nil {
				return Rule{}, fmt.Errorf("pattern %q, field %q: %w", ps.Var, cs.Field, err)
			}
			v, err := scalarValue(cs.Value)
			if err != nil {
				return Rule{}, fmt.Errorf("pattern %q, field %q: %w", ps.Var, cs.Field, err)
			}
			p.Conditions = append(p.Conditions, Condition{Field: cs.Field, Op: op, Value: v})
		}
		r.Patterns = append(r.Patterns, p)
	}

	if s.Filter != "" {
		expr, err := ParseFilter(s.Filter)
		if err != nil {
			return Rule{}, fmt.Errorf("filter: %w", err)
		}
		r.Filter = expr
	}

	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// scalarValue maps a decoded YAML scalar to the evaluator's value type.
func scalarValue(v interface{}) (fact.Value, error) {
	switch x := v.(type) {
	case string:
		return fact.StringValue(x), nil
	case bool:
		return fact.BoolValue(x), nil
	case int:
		return fact.IntValue(int64(x)), nil
	case int64:
		return fact.IntValue(x), nil
	case float64:
		return fact.FloatValue(x), nil
	case nil:
		return fact.Value{}, fmt.Errorf("condition value is missing")
	default:
		return fact.Value{}, fmt.Errorf("unsupported condition value type %T", v)
	}
}
