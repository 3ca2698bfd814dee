// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import "github.com/kraklabs/leviathan/pkg/fact"

// Stats holds per-category cardinality and selectivity, computed once when
// the store is built. The query planner probes these to order joins; they
// are never recomputed per query.
type Stats struct {
	total       int
	cardinality map[fact.Category]int
}

// computeStats derives statistics from a built type index.
func computeStats(arena *fact.Arena, types *typeIndex) *Stats {
	s := &Stats{
		total:       arena.Len(),
		cardinality: make(map[fact.Category]int, len(types.byCategory)),
	}
	for c, ids := range types.byCategory {
		s.cardinality[c] = len(ids)
	}
	return s
}

// Total returns the total number of facts in the arena.
func (s *Stats) Total() int { return s.total }

// Cardinality returns the number of facts of a category.
func (s *Stats) Cardinality(c fact.Category) int {
	return s.cardinality[c]
}

// Selectivity returns the fraction of all facts that carry the category,
// in [0.0, 1.0]. An empty arena reports zero for every category.
func (s *Stats) Selectivity(c fact.Category) float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.cardinality[c]) / float64(s.total)
}
