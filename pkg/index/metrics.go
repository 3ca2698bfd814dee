// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIndex holds Prometheus metrics for index construction and queries.
type metricsIndex struct {
	once sync.Once

	// Build
	factsIndexed  prometheus.Counter
	spatialLeaves prometheus.Counter
	flowEdges     prometheus.Counter
	buildDuration prometheus.Histogram

	// Queries
	spatialQueries prometheus.Counter
	spatialHits    prometheus.Counter
	flowQueries    prometheus.Counter
}

var idxMetrics metricsIndex

func (m *metricsIndex) init() {
	m.once.Do(func() {
		m.factsIndexed = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_idx_facts_indexed_total", Help: "Facts indexed at store build"})
		m.spatialLeaves = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_idx_spatial_entries_total", Help: "Location-bearing facts in the spatial tree"})
		m.flowEdges = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_idx_flow_edges_total", Help: "Edges in the flow graph"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
		m.buildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "lev_idx_build_seconds", Help: "Duration of store construction", Buckets: buckets})

		m.spatialQueries = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_idx_spatial_queries_total", Help: "Spatial range queries served"})
		m.spatialHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_idx_spatial_hits_total", Help: "Facts returned by spatial queries"})
		m.flowQueries = prometheus.NewCounter(prometheus.CounterOpts{Name: "lev_idx_flow_queries_total", Help: "Flow reachability queries served"})

		prometheus.MustRegister(
			m.factsIndexed, m.spatialLeaves, m.flowEdges,
			m.buildDuration,
			m.spatialQueries, m.spatialHits, m.flowQueries,
		)
	})
}
