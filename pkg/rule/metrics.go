// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rule

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsEngine holds Prometheus metrics for rule evaluation.
type metricsEngine struct {
	once sync.Once

	// Rules
	rulesEvaluated prometheus.Counter
	rulesFailed    prometheus.Counter
	rulesTimedOut  prometheus.Counter
	rulesCapped    prometheus.Counter

	// Findings
	findingsEmitted  prometheus.Counter
	bindingsMatched  prometheus.Counter
	bindingsExcluded prometheus.Counter

	// Durations
	ruleDuration prometheus.Histogram
	runDuration  prometheus.Histogram
}

var engMetrics metricsEngine

func (m *metricsEngine) init() {
	m.once.Do(func() {
		m.rulesEvaluated = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_rules_evaluated_total", Help: "Rules evaluated"})
		m.rulesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_rules_failed_total", Help: "Rules that failed evaluation"})
		m.rulesTimedOut = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_rules_timeout_total", Help: "Rules aborted by the per-rule timeout"})
		m.rulesCapped = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_rules_capped_total", Help: "Rules aborted by the findings cap"})

		m.findingsEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_findings_total", Help: "Findings emitted by succeeded rules"})
		m.bindingsMatched = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_bindings_matched_total", Help: "Binding sets produced by pattern matching"})
		m.bindingsExcluded = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_eng_bindings_excluded_total", Help: "Binding sets excluded by filter or unresolved template"})

		buckets := []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
		m.ruleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "lev_eng_rule_seconds", Help: "Duration of one rule's evaluation", Buckets: buckets})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "lev_eng_run_seconds", Help: "Duration of a whole evaluation run", Buckets: buckets})

		prometheus.MustRegister(
			m.rulesEvaluated, m.rulesFailed, m.rulesTimedOut, m.rulesCapped,
			m.findingsEmitted, m.bindingsMatched, m.bindingsExcluded,
			m.ruleDuration, m.runDuration,
		)
	})
}
