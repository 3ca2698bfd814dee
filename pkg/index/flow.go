// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import (
	"fmt"
	"sort"

	"github.com/kraklabs/leviathan/pkg/fact"
)

// flowGraph is the directed graph induced by flow-edge facts. Nodes are the
// facts referenced as endpoints; edges carry no weight. Adjacency lists are
// sorted so traversals visit successors in a fixed order.
type flowGraph struct {
	succ map[fact.ID][]fact.ID
}

// buildFlowGraph collects every flow-edge fact into an adjacency map.
// An edge endpoint that names no fact in the arena is a construction error:
// the arena is the closed world the graph is defined over.
func buildFlowGraph(arena *fact.Arena) (*flowGraph, error) {
	g := &flowGraph{succ: make(map[fact.ID][]fact.ID)}

	var err error
	arena.Each(func(f *fact.Fact) bool {
		edge, ok := f.Payload().(fact.FlowEdge)
		if !ok {
			return true
		}
		if _, ok := arena.Get(edge.From); !ok {
			err = fmt.Errorf("flow edge %d: unknown source fact %d", f.ID(), edge.From)
			return false
		}
		if _, ok := arena.Get(edge.To); !ok {
			err = fmt.Errorf("flow edge %d: unknown target fact %d", f.ID(), edge.To)
			return false
		}
		g.succ[edge.From] = append(g.succ[edge.From], edge.To)
		return true
	})
	if err != nil {
		return nil, err
	}

	for _, ids := range g.succ {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return g, nil
}

// reachableFrom returns every fact reachable from src by one or more edges,
// in ascending identifier order. Traversal is breadth-first with a visited
// set, so cyclic graphs terminate. src itself is reported only when it sits
// on a cycle back to itself.
func (g *flowGraph) reachableFrom(src fact.ID) []fact.ID {
	visited := make(map[fact.ID]bool)
	queue := append([]fact.ID(nil), g.succ[src]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, g.succ[id]...)
	}

	out := make([]fact.ID, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// reachable reports whether dst is reachable from src by one or more edges.
func (g *flowGraph) reachable(src, dst fact.ID) bool {
	visited := make(map[fact.ID]bool)
	queue := append([]fact.ID(nil), g.succ[src]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == dst {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, g.succ[id]...)
	}
	return false
}

// shortestPath returns the minimum number of edges on a path from src to dst,
// or -1 when no path exists. A fact is at distance zero from itself.
func (g *flowGraph) shortestPath(src, dst fact.ID) int {
	if src == dst {
		return 0
	}

	type hop struct {
		id   fact.ID
		dist int
	}
	visited := map[fact.ID]bool{src: true}
	queue := []hop{{id: src, dist: 0}}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		for _, next := range g.succ[h.id] {
			if next == dst {
				return h.dist + 1
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, hop{id: next, dist: h.dist + 1})
		}
	}
	return -1
}

// edgeCount returns the total number of edges in the graph.
func (g *flowGraph) edgeCount() int {
	n := 0
	for _, ids := range g.succ {
		n += len(ids)
	}
	return n
}
