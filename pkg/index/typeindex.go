// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import "github.com/kraklabs/leviathan/pkg/fact"

// typeIndex maps each category to the identifiers of its facts.
// Lists are kept in identifier order: the arena is iterated in identifier
// order at build time, so appends preserve it, and later scans touch the
// arena sequentially.
type typeIndex struct {
	byCategory map[fact.Category][]fact.ID
}

// buildTypeIndex indexes every fact in the arena by category.
func buildTypeIndex(arena *fact.Arena) *typeIndex {
	idx := &typeIndex{
		byCategory: make(map[fact.Category][]fact.ID),
	}
	arena.Each(func(f *fact.Fact) bool {
		c := f.Category()
		idx.byCategory[c] = append(idx.byCategory[c], f.ID())
		return true
	})
	return idx
}

// ids returns the identifier list for a category. The returned slice is
// owned by the index; callers must not modify it.
func (t *typeIndex) ids(c fact.Category) []fact.ID {
	return t.byCategory[c]
}

// cardinality returns the precomputed count for a category.
func (t *typeIndex) cardinality(c fact.Category) int {
	return len(t.byCategory[c])
}
