// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import (
	"hash/fnv"
	"sort"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// hashPath maps a file path to the 64-bit key embedded in spatial volumes.
// It is a variable so tests can substitute a colliding hash and exercise the
// collision filter.
var hashPath = func(path string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return h.Sum64()
}

// volume is the bounding key of one location-bearing fact: the hashed file
// identity plus the inclusive line/column bounds.
type volume struct {
	fileKey  uint64
	startLine, endLine int32
	startCol, endCol   int32
}

// spatialEntry pairs a fact identifier with its volume. The raw file path is
// retained so queries can reject facts whose hashed key collides with the
// probe file but whose path differs.
type spatialEntry struct {
	id   fact.ID
	vol  volume
	file string
}

// spatialNode is one node of the balanced bounding-volume tree. Nodes are
// stored in a flat slice; leaves reference a contiguous range of entries.
type spatialNode struct {
	minKey, maxKey   uint64
	minLine, maxLine int32

	// left/right index child nodes; -1 marks a leaf.
	left, right int32

	// start/end bound the entry range of a leaf.
	start, end int32
}

// spatialLeafSize caps entries per leaf. Small enough to keep descent
// effective, large enough to avoid pointer-chasing overhead.
const spatialLeafSize = 8

// spatialTree is a static balanced tree over the volumes of all
// location-bearing facts. It is built once and never mutated.
type spatialTree struct {
	entries []spatialEntry
	nodes   []spatialNode
	root    int32
}

// buildSpatialTree collects every location-bearing fact and builds the tree.
// Entries are sorted by (fileKey, startLine, startCol, id) before the
// balanced split so that sibling subtrees cover disjoint key ranges.
func buildSpatialTree(arena *fact.Arena) *spatialTree {
	t := &spatialTree{root: -1}

	arena.Each(func(f *fact.Fact) bool {
		loc, ok := f.Location()
		if !ok {
			return true
		}
		t.entries = append(t.entries, spatialEntry{
			id:   f.ID(),
			file: loc.File,
			vol: volume{
				fileKey:   hashPath(loc.File),
				startLine: int32(loc.StartLine),
				endLine:   int32(loc.EndLine),
				startCol:  int32(loc.StartCol),
				endCol:    int32(loc.EndCol),
			},
		})
		return true
	})

	if len(t.entries) == 0 {
		return t
	}

	sort.Slice(t.entries, func(i, j int) bool {
		a, b := &t.entries[i], &t.entries[j]
		if a.vol.fileKey != b.vol.fileKey {
			return a.vol.fileKey < b.vol.fileKey
		}
		if a.vol.startLine != b.vol.startLine {
			return a.vol.startLine < b.vol.startLine
		}
		if a.vol.startCol != b.vol.startCol {
			return a.vol.startCol < b.vol.startCol
		}
		return a.id < b.id
	})

	t.root = t.build(0, int32(len(t.entries)))
	return t
}

// build constructs the subtree covering entries [start, end) and returns its
// node index. The split is by position in the sorted order, which keeps the
// tree balanced regardless of volume distribution.
func (t *spatialTree) build(start, end int32) int32 {
	node := spatialNode{left: -1, right: -1, start: start, end: end}
	node.minKey, node.maxKey = t.entries[start].vol.fileKey, t.entries[start].vol.fileKey
	node.minLine, node.maxLine = t.entries[start].vol.startLine, t.entries[start].vol.endLine
	for i := start + 1; i < end; i++ {
		v := &t.entries[i].vol
		if v.fileKey < node.minKey {
			node.minKey = v.fileKey
		}
		if v.fileKey > node.maxKey {
			node.maxKey = v.fileKey
		}
		if v.startLine < node.minLine {
			node.minLine = v.startLine
		}
		if v.endLine > node.maxLine {
			node.maxLine = v.endLine
		}
	}

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node)

	if end-start > spatialLeafSize {
		mid := start + (end-start)/2
		left := t.build(start, mid)
		right := t.build(mid, end)
		t.nodes[idx].left = left
		t.nodes[idx].right = right
		t.nodes[idx].start = -1
		t.nodes[idx].end = -1
	}
	return idx
}

// query returns the identifiers of all facts whose volume intersects the
// (file, line range) probe, in ascending identifier order. Hash collisions
// across different files are filtered by comparing the real path.
func (t *spatialTree) query(file string, startLine, endLine int) []fact.ID {
	if t.root < 0 || endLine < startLine {
		return nil
	}
	key := hashPath(file)
	lo, hi := int32(startLine), int32(endLine)

	var out []fact.ID
	t.descend(t.root, key, lo, hi, file, &out)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// descend walks the subtree rooted at n, pruning nodes whose key range or
// line range cannot intersect the probe.
func (t *spatialTree) descend(n int32, key uint64, lo, hi int32, file string, out *[]fact.ID) {
	node := &t.nodes[n]
	if key < node.minKey || key > node.maxKey || hi < node.minLine || lo > node.maxLine {
		return
	}
	if node.left < 0 {
		for i := node.start; i < node.end; i++ {
			e := &t.entries[i]
			if e.vol.fileKey != key || e.vol.endLine < lo || e.vol.startLine > hi {
				continue
			}
			// Hashed keys can collide across files; the probe is only a
			// candidate match until the real path agrees.
			if e.file != file {
				continue
			}
			*out = append(*out, e.id)
		}
		return
	}
	t.descend(node.left, key, lo, hi, file, out)
	t.descend(node.right, key, lo, hi, file, out)
}

// size returns the number of indexed location-bearing facts.
func (t *spatialTree) size() int { return len(t.entries) }
