// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import (
	"log/slog"
	"time"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// Store bundles the arena with the indices built over it. A Store is
// immutable after construction and safe for concurrent readers.
type Store struct {
	arena   *fact.Arena
	types   *typeIndex
	spatial *spatialTree
	flow    *flowGraph
	stats   *Stats
	logger  *slog.Logger
}

// NewStore builds every index over the arena in one pass sequence.
// It fails when a flow-edge fact references an identifier outside the arena.
func NewStore(arena *fact.Arena, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idxMetrics.init()
	start := time.Now()

	types := buildTypeIndex(arena)
	spatial := buildSpatialTree(arena)
	flow, err := buildFlowGraph(arena)
	if err != nil {
		return nil, err
	}
	stats := computeStats(arena, types)

	elapsed := time.Since(start)
	idxMetrics.factsIndexed.Add(float64(arena.Len()))
	idxMetrics.spatialLeaves.Add(float64(spatial.size()))
	idxMetrics.flowEdges.Add(float64(flow.edgeCount()))
	idxMetrics.buildDuration.Observe(elapsed.Seconds())

	logger.Info("index.build.complete",
		"facts", arena.Len(),
		"spatial_entries", spatial.size(),
		"flow_edges", flow.edgeCount(),
		"categories", len(types.byCategory),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &Store{
		arena:   arena,
		types:   types,
		spatial: spatial,
		flow:    flow,
		stats:   stats,
		logger:  logger,
	}, nil
}

// Arena returns the underlying fact arena.
func (s *Store) Arena() *fact.Arena { return s.arena }

// Stats returns the statistics computed at build time.
func (s *Store) Stats() *Stats { return s.stats }

// Get returns the fact with the given identifier.
func (s *Store) Get(id fact.ID) (*fact.Fact, bool) {
	return s.arena.Get(id)
}

// ByCategory returns the identifiers of every fact with the given category,
// in ascending identifier order. The slice is owned by the store.
func (s *Store) ByCategory(c fact.Category) []fact.ID {
	return s.types.ids(c)
}

// ByLocation returns the identifiers of every location-bearing fact whose
// line range intersects [startLine, endLine] in the given file, in ascending
// identifier order.
func (s *Store) ByLocation(file string, startLine, endLine int) []fact.ID {
	out := s.spatial.query(file, startLine, endLine)
	idxMetrics.spatialQueries.Inc()
	idxMetrics.spatialHits.Add(float64(len(out)))
	return out
}

// ReachableFrom returns every fact reachable from src through one or more
// flow edges, in ascending identifier order.
func (s *Store) ReachableFrom(src fact.ID) []fact.ID {
	idxMetrics.flowQueries.Inc()
	return s.flow.reachableFrom(src)
}

// Reachable reports whether dst is reachable from src through one or more
// flow edges.
func (s *Store) Reachable(src, dst fact.ID) bool {
	idxMetrics.flowQueries.Inc()
	return s.flow.reachable(src, dst)
}

// ShortestPath returns the minimum number of flow edges from src to dst,
// or -1 when dst is unreachable. Distance from a fact to itself is zero.
func (s *Store) ShortestPath(src, dst fact.ID) int {
	idxMetrics.flowQueries.Inc()
	return s.flow.shortestPath(src, dst)
}
