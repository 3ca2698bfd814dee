// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package index

import (
	"testing"

	"github.com/kraklabs/leviathan/pkg/fact"
)

func mustAdd(t *testing.T, b *fact.Builder, p fact.Payload, opts ...fact.Option) fact.ID {
	t.Helper()
	id, err := b.Add(p, opts...)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return id
}

func mustStore(t *testing.T, arena *fact.Arena) *Store {
	t.Helper()
	s, err := NewStore(arena, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func loc(file string, start, end int) fact.Option {
	return fact.WithLocation(fact.Location{
		File: file, StartLine: start, EndLine: end, StartCol: 1, EndCol: 1,
	})
}

func TestStats_CardinalitiesSumToTotal(t *testing.T) {
	b := fact.NewBuilder()
	mustAdd(t, b, fact.TaintSource{Kind: "env", Expression: "os.Getenv"})
	mustAdd(t, b, fact.TaintSource{Kind: "arg", Expression: "os.Args"})
	mustAdd(t, b, fact.TaintSink{Kind: "exec", CallSite: "exec.Command"})
	mustAdd(t, b, fact.UncoveredLine{}, loc("a.go", 3, 3))
	mustAdd(t, b, fact.Vulnerability{Advisory: "GHSA-1", Package: "p", Severity: "low", CVSS: 2.0})

	s := mustStore(t, b.Build())

	sum := 0
	var totalSelectivity float64
	for _, c := range fact.Categories() {
		sum += s.Stats().Cardinality(c)
		totalSelectivity += s.Stats().Selectivity(c)
	}
	if sum != s.Stats().Total() {
		t.Errorf("cardinality sum: got %d, want %d", sum, s.Stats().Total())
	}
	if totalSelectivity < 0.999 || totalSelectivity > 1.001 {
		t.Errorf("selectivity sum: got %v, want 1.0", totalSelectivity)
	}
}

func TestStats_EmptyArena(t *testing.T) {
	s := mustStore(t, fact.NewBuilder().Build())
	if s.Stats().Total() != 0 {
		t.Errorf("total: got %d", s.Stats().Total())
	}
	if sel := s.Stats().Selectivity(fact.CategoryTaintSource); sel != 0 {
		t.Errorf("selectivity on empty arena: got %v, want 0", sel)
	}
}

func TestByCategory_OrderedByIdentifier(t *testing.T) {
	b := fact.NewBuilder()
	mustAdd(t, b, fact.TaintSink{Kind: "sql", CallSite: "db.Query"})
	mustAdd(t, b, fact.TaintSource{Kind: "env", Expression: "os.Getenv"})
	mustAdd(t, b, fact.TaintSink{Kind: "exec", CallSite: "exec.Command"})

	s := mustStore(t, b.Build())
	sinks := s.ByCategory(fact.CategoryTaintSink)
	if len(sinks) != 2 || sinks[0] != 0 || sinks[1] != 2 {
		t.Errorf("sink identifiers: got %v, want [0 2]", sinks)
	}
	if got := s.ByCategory(fact.CategoryDependency); len(got) != 0 {
		t.Errorf("absent category: got %v, want empty", got)
	}
}

func TestByLocation_NoFalseNegatives(t *testing.T) {
	b := fact.NewBuilder()
	inside := mustAdd(t, b, fact.UncoveredLine{}, loc("pkg/a.go", 10, 12))
	touchLow := mustAdd(t, b, fact.UncoveredLine{}, loc("pkg/a.go", 5, 10))
	touchHigh := mustAdd(t, b, fact.UncoveredLine{}, loc("pkg/a.go", 12, 20))
	mustAdd(t, b, fact.UncoveredLine{}, loc("pkg/a.go", 1, 4))
	mustAdd(t, b, fact.UncoveredLine{}, loc("pkg/a.go", 21, 30))
	mustAdd(t, b, fact.UncoveredLine{}, loc("pkg/b.go", 10, 12))
	mustAdd(t, b, fact.Dependency{Name: "noloc", Version: "1"})

	s := mustStore(t, b.Build())
	got := s.ByLocation("pkg/a.go", 10, 12)
	want := []fact.ID{inside, touchLow, touchHigh}
	if len(got) != len(want) {
		t.Fatalf("ByLocation: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ByLocation: got %v, want %v", got, want)
		}
	}
}

func TestByLocation_LargeFileScan(t *testing.T) {
	b := fact.NewBuilder()
	var want []fact.ID
	for line := 1; line <= 200; line++ {
		id := mustAdd(t, b, fact.UncoveredLine{}, loc("big.go", line, line))
		if line >= 50 && line <= 75 {
			want = append(want, id)
		}
	}
	for line := 1; line <= 200; line += 3 {
		mustAdd(t, b, fact.UncoveredLine{}, loc("other.go", line, line))
	}

	s := mustStore(t, b.Build())
	got := s.ByLocation("big.go", 50, 75)
	if len(got) != len(want) {
		t.Fatalf("hit count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hit %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestByLocation_HashCollisionFiltered(t *testing.T) {
	orig := hashPath
	hashPath = func(string) uint64 { return 42 }
	defer func() { hashPath = orig }()

	b := fact.NewBuilder()
	a := mustAdd(t, b, fact.UncoveredLine{}, loc("left.go", 5, 5))
	mustAdd(t, b, fact.UncoveredLine{}, loc("right.go", 5, 5))

	s := mustStore(t, b.Build())
	got := s.ByLocation("left.go", 1, 10)
	if len(got) != 1 || got[0] != a {
		t.Errorf("collision filter: got %v, want [%d]", got, a)
	}
}

func flowArena(t *testing.T) (*Store, []fact.ID) {
	t.Helper()
	b := fact.NewBuilder()
	// Four nodes wired a -> b -> c -> a (cycle) and b -> d.
	var nodes []fact.ID
	for i := 0; i < 4; i++ {
		nodes = append(nodes, mustAdd(t, b, fact.TaintSource{Kind: "n", Expression: "x"}))
	}
	mustAdd(t, b, fact.FlowEdge{From: nodes[0], To: nodes[1]})
	mustAdd(t, b, fact.FlowEdge{From: nodes[1], To: nodes[2]})
	mustAdd(t, b, fact.FlowEdge{From: nodes[2], To: nodes[0]})
	mustAdd(t, b, fact.FlowEdge{From: nodes[1], To: nodes[3]})
	return mustStore(t, b.Build()), nodes
}

func TestReachableFrom_CycleTerminates(t *testing.T) {
	s, nodes := flowArena(t)
	got := s.ReachableFrom(nodes[0])
	// From a: b, c, d, and a itself via the cycle.
	if len(got) != 4 {
		t.Fatalf("reachable set: got %v", got)
	}
	for i, want := range nodes {
		if got[i] != want {
			t.Fatalf("reachable set: got %v, want %v", got, nodes)
		}
	}
}

func TestReachable_Directionality(t *testing.T) {
	s, nodes := flowArena(t)
	if !s.Reachable(nodes[0], nodes[3]) {
		t.Error("d should be reachable from a")
	}
	if s.Reachable(nodes[3], nodes[0]) {
		t.Error("a should not be reachable from d")
	}
}

func TestShortestPath_Distances(t *testing.T) {
	s, nodes := flowArena(t)
	if d := s.ShortestPath(nodes[0], nodes[0]); d != 0 {
		t.Errorf("self distance: got %d, want 0", d)
	}
	if d := s.ShortestPath(nodes[0], nodes[3]); d != 2 {
		t.Errorf("a to d: got %d, want 2", d)
	}
	if d := s.ShortestPath(nodes[3], nodes[1]); d != -1 {
		t.Errorf("d to b: got %d, want -1", d)
	}
	if d := s.ShortestPath(nodes[1], nodes[0]); d != 2 {
		t.Errorf("b to a around the cycle: got %d, want 2", d)
	}
}

func TestNewStore_RejectsDanglingEdge(t *testing.T) {
	b := fact.NewBuilder()
	n := mustAdd(t, b, fact.TaintSource{Kind: "env", Expression: "x"})
	mustAdd(t, b, fact.FlowEdge{From: n, To: 99})
	if _, err := NewStore(b.Build(), nil); err == nil {
		t.Error("edge to unknown fact should fail store construction")
	}
}
