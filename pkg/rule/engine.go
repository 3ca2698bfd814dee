// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
	"github.com/kraklabs/leviathan/pkg/query"
)

// Config bounds one evaluation run.
type Config struct {
	// RuleTimeout is the wall-clock budget of a single rule.
	RuleTimeout time.Duration

	// MaxFindingsPerRule aborts a rule that exceeds it. Protects the run
	// against runaway cross products.
	MaxFindingsPerRule int

	// Workers is the parallel rule evaluation width.
	Workers int
}

// DefaultConfig returns the stock resource bounds.
func DefaultConfig() Config {
	return Config{
		RuleTimeout:        time.Second,
		MaxFindingsPerRule: 2000,
		Workers:            runtime.GOMAXPROCS(0),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RuleTimeout <= 0 {
		c.RuleTimeout = d.RuleTimeout
	}
	if c.MaxFindingsPerRule <= 0 {
		c.MaxFindingsPerRule = d.MaxFindingsPerRule
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// RuleStats records one rule's outcome.
type RuleStats struct {
	Rule     string
	Duration time.Duration
	Findings int
	Err      error
}

// EvalStats aggregates one run.
type EvalStats struct {
	TotalRules    int
	Succeeded     int
	Failed        int
	TotalFindings int
	Duration      time.Duration
	Rules         []RuleStats
}

// Result is the outcome of one evaluation run. It is always populated, even
// when every rule failed.
type Result struct {
	RunID    string
	Findings []Finding
	Stats    EvalStats
}

// Engine evaluates rule sets against one immutable store.
type Engine struct {
	store   *index.Store
	planner *query.Planner
	matcher *Matcher
	ev      *Evaluator
	builder *findingBuilder
	cfg     Config
	logger  *slog.Logger
}

// NewEngine builds an engine over the store. The store is shared by
// reference across workers; it is never mutated during evaluation.
func NewEngine(store *index.Store, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	engMetrics.init()
	planner := query.NewPlanner(store.Stats(), logger)
	ev := NewEvaluator(store)
	return &Engine{
		store:   store,
		planner: planner,
		matcher: NewMatcher(store, planner),
		ev:      ev,
		builder: &findingBuilder{ev: ev},
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// Planner exposes the engine's planner, mainly for its decision log.
func (e *Engine) Planner() *query.Planner { return e.planner }

// ruleOutcome is one rule's result, written into a per-rule slot so the
// aggregation step needs no synchronization beyond the worker join.
type ruleOutcome struct {
	findings []Finding
	stats    RuleStats
}

// Evaluate runs every rule in parallel, each under the per-rule timeout and
// findings cap, and aggregates deterministically.
//
// Per-rule failures never abort siblings; they land in the rule's stats
// record. The result is always returned. When every rule failed the error is
// ErrAllRulesFailed so callers can tell an evaluable-but-clean run from a
// run where nothing could be evaluated.
func (e *Engine) Evaluate(ctx context.Context, rules []Rule) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	e.logger.Info("engine.evaluate.start",
		"run_id", runID,
		"rules", len(rules),
		"facts", e.store.Stats().Total(),
		"workers", e.cfg.Workers,
	)

	outcomes := make([]ruleOutcome, len(rules))

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i := range rules {
		i := i
		g.Go(func() error {
			outcomes[i] = e.evaluateRule(ctx, &rules[i])
			return nil
		})
	}
	_ = g.Wait()

	// Aggregation is single-threaded: the orchestrator is the only mutator
	// of the run-level result.
	res := &Result{RunID: runID}
	res.Stats.TotalRules = len(rules)
	for i := range outcomes {
		o := &outcomes[i]
		res.Stats.Rules = append(res.Stats.Rules, o.stats)
		if o.stats.Err != nil {
			res.Stats.Failed++
			engMetrics.rulesFailed.Inc()
			e.logger.Warn("engine.rule.failed",
				"run_id", runID,
				"rule", o.stats.Rule,
				"error", o.stats.Err.Error(),
				"duration_ms", o.stats.Duration.Milliseconds(),
			)
			continue
		}
		res.Stats.Succeeded++
		res.Findings = append(res.Findings, o.findings...)
	}
	res.Stats.TotalFindings = len(res.Findings)
	sortFindings(res.Findings)

	res.Stats.Duration = time.Since(start)
	engMetrics.findingsEmitted.Add(float64(res.Stats.TotalFindings))
	engMetrics.runDuration.Observe(res.Stats.Duration.Seconds())
	e.logger.Info("engine.evaluate.complete",
		"run_id", runID,
		"succeeded", res.Stats.Succeeded,
		"failed", res.Stats.Failed,
		"findings", res.Stats.TotalFindings,
		"duration_ms", res.Stats.Duration.Milliseconds(),
	)

	if len(rules) > 0 && res.Stats.Failed == len(rules) {
		return res, ErrAllRulesFailed
	}
	return res, nil
}

// evaluateRule runs one rule under its own deadline: match, filter, build,
// capped. Cancellation is cooperative; the matcher and evaluator check the
// context at loop boundaries, so a timed-out rule stops consuming CPU.
func (e *Engine) evaluateRule(ctx context.Context, r *Rule) ruleOutcome {
	start := time.Now()
	engMetrics.rulesEvaluated.Inc()

	rctx, cancel := context.WithTimeout(ctx, e.cfg.RuleTimeout)
	defer cancel()

	findings, err := e.runRule(rctx, r)
	elapsed := time.Since(start)
	engMetrics.ruleDuration.Observe(elapsed.Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("rule %q timed out after %v", r.Name, e.cfg.RuleTimeout)
			engMetrics.rulesTimedOut.Inc()
		}
		var capped *TooManyFindingsError
		if errors.As(err, &capped) {
			engMetrics.rulesCapped.Inc()
		}
		return ruleOutcome{stats: RuleStats{Rule: r.Name, Duration: elapsed, Err: err}}
	}

	return ruleOutcome{
		findings: findings,
		stats:    RuleStats{Rule: r.Name, Duration: elapsed, Findings: len(findings)},
	}
}

func (e *Engine) runRule(ctx context.Context, r *Rule) ([]Finding, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	bindings, err := e.matcher.Match(ctx, r)
	if err != nil {
		return nil, err
	}
	engMetrics.bindingsMatched.Add(float64(len(bindings)))

	var findings []Finding
	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if r.Filter != nil {
			ok, err := e.ev.Eval(ctx, b, r.Filter)
			if err != nil {
				if asBindingError(err) {
					engMetrics.bindingsExcluded.Inc()
					continue
				}
				return nil, err
			}
			if !ok {
				engMetrics.bindingsExcluded.Inc()
				continue
			}
		}

		f, err := e.builder.build(r, b)
		if err != nil {
			if asBindingError(err) {
				engMetrics.bindingsExcluded.Inc()
				continue
			}
			return nil, err
		}
		findings = append(findings, f)
		if len(findings) > e.cfg.MaxFindingsPerRule {
			return nil, &TooManyFindingsError{Rule: r.Name, Limit: e.cfg.MaxFindingsPerRule}
		}
	}
	return findings, nil
}

// sortFindings fixes the aggregate order: rule name, then location, then
// message, then related identifiers. Worker scheduling never shows through.
func sortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := &fs[i], &fs[j]
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		af, bf := locKey(a), locKey(b)
		if af.file != bf.file {
			return af.file < bf.file
		}
		if af.line != bf.line {
			return af.line < bf.line
		}
		if a.Message != b.Message {
			return a.Message < b.Message
		}
		return lessIDs(a.Related, b.Related)
	})
}

type sortLoc struct {
	file string
	line int
}

func locKey(f *Finding) sortLoc {
	if f.Location == nil {
		return sortLoc{}
	}
	return sortLoc{file: f.Location.File, line: f.Location.StartLine}
}

func lessIDs(a, b []fact.ID) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
