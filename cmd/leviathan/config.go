// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/leviathan/pkg/rule"
)

// Config is the on-disk engine configuration, stored at
// .leviathan/engine.yaml in the repository root.
type Config struct {
	// Facts is the default fact document path for 'evaluate'.
	Facts string `yaml:"facts,omitempty"`

	// Rules is the default rule set path for 'evaluate'.
	Rules string `yaml:"rules,omitempty"`

	// Engine holds the resource limits for evaluation runs.
	Engine EngineConfig `yaml:"engine"`
}

// Duration wraps time.Duration so the YAML form is human-readable
// ("1s", "500ms") instead of nanosecond integers.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Accepts duration strings and
// plain integers (interpreted as nanoseconds).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// EngineConfig mirrors the engine's resource bounds in YAML form.
type EngineConfig struct {
	// RuleTimeout is the wall-clock budget of a single rule, e.g. "1s".
	RuleTimeout Duration `yaml:"rule_timeout"`

	// MaxFindingsPerRule aborts rules that exceed it.
	MaxFindingsPerRule int `yaml:"max_findings_per_rule"`

	// Workers is the parallel rule evaluation width. Zero means one
	// worker per CPU.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a configuration with stock engine bounds.
func DefaultConfig() *Config {
	d := rule.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			RuleTimeout:        Duration(d.RuleTimeout),
			MaxFindingsPerRule: d.MaxFindingsPerRule,
			Workers:            0,
		},
	}
}

// RuleConfig converts the YAML engine section into engine bounds.
// Zero fields fall back to the engine defaults.
func (c *Config) RuleConfig() rule.Config {
	return rule.Config{
		RuleTimeout:        time.Duration(c.Engine.RuleTimeout),
		MaxFindingsPerRule: c.Engine.MaxFindingsPerRule,
		Workers:            c.Engine.Workers,
	}
}

// ConfigDir returns the Leviathan configuration directory for a repo root.
func ConfigDir(root string) string {
	return filepath.Join(root, ".leviathan")
}

// ConfigPath returns the configuration file path for a repo root.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), "engine.yaml")
}

// LoadConfig reads the configuration from the given path, or from
// ./.leviathan/engine.yaml when path is empty. A missing file is not an
// error: the defaults are returned so 'evaluate' works without 'init'.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to the given path, creating the
// .leviathan directory if needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
