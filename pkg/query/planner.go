// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"fmt"
	"log/slog"

	"github.com/kraklabs/leviathan/pkg/fact"
	"github.com/kraklabs/leviathan/pkg/index"
)

// ShapeKind enumerates the abstract query shapes the planner understands.
type ShapeKind int

const (
	// ShapeUnknown is the zero value; it plans as a full scan.
	ShapeUnknown ShapeKind = iota

	// ShapeCategoryScan reads every fact of one category.
	ShapeCategoryScan

	// ShapeSpatialJoin co-locates two categories on overlapping source
	// ranges.
	ShapeSpatialJoin

	// ShapeFlowJoin follows flow edges from one category up to a maximum
	// depth.
	ShapeFlowJoin
)

// Shape is a declarative description of the index access a rule needs.
// For joins, First and Second carry the categories in the order the rule
// declared them; that order is the deterministic tie-break.
type Shape struct {
	Kind     ShapeKind
	First    fact.Category
	Second   fact.Category
	MaxDepth int
}

// CategoryScan describes a single-category read.
func CategoryScan(c fact.Category) Shape {
	return Shape{Kind: ShapeCategoryScan, First: c}
}

// SpatialJoin describes a two-category co-location join, categories in
// declaration order.
func SpatialJoin(first, second fact.Category) Shape {
	return Shape{Kind: ShapeSpatialJoin, First: first, Second: second}
}

// FlowJoin describes reachability from a category bounded by depth.
// A depth of zero means unbounded.
func FlowJoin(from fact.Category, maxDepth int) Shape {
	return Shape{Kind: ShapeFlowJoin, First: from, MaxDepth: maxDepth}
}

// Strategy is the execution strategy a plan commits to.
type Strategy int

const (
	// StrategyFullScan iterates the whole arena. It exists as the
	// correctness baseline for shapes no index covers.
	StrategyFullScan Strategy = iota

	// StrategyTypeScan reads one category's identifier list.
	StrategyTypeScan

	// StrategySpatialJoin drives spatial probes from the outer category
	// into the inner one.
	StrategySpatialJoin

	// StrategyFlowJoin seeds from the type index and walks flow edges.
	StrategyFlowJoin
)

func (s Strategy) String() string {
	switch s {
	case StrategyTypeScan:
		return "type_scan"
	case StrategySpatialJoin:
		return "spatial_join"
	case StrategyFlowJoin:
		return "flow_join"
	default:
		return "full_scan"
	}
}

// Plan is the planner's commitment for one shape: the strategy, and for
// joins the outer (driving) and inner categories.
type Plan struct {
	Strategy Strategy
	Outer    fact.Category
	Inner    fact.Category
	MaxDepth int
	Reason   string
}

// Planner selects plans from build-time statistics. It holds no per-query
// state beyond the decision log and is safe for concurrent use.
type Planner struct {
	stats  *index.Stats
	log    *DecisionLog
	logger *slog.Logger
}

// NewPlanner builds a planner over the store's statistics.
func NewPlanner(stats *index.Stats, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{stats: stats, log: NewDecisionLog(), logger: logger}
}

// Log returns the planner's decision log.
func (p *Planner) Log() *DecisionLog { return p.log }

// Plan selects a strategy and join order for the shape. Every decision is
// appended to the decision log.
func (p *Planner) Plan(shape Shape) Plan {
	var plan Plan
	switch shape.Kind {
	case ShapeCategoryScan:
		plan = Plan{
			Strategy: StrategyTypeScan,
			Outer:    shape.First,
			Reason:   fmt.Sprintf("type index covers %s (cardinality %d)", shape.First, p.stats.Cardinality(shape.First)),
		}

	case ShapeSpatialJoin:
		plan = p.planSpatial(shape)

	case ShapeFlowJoin:
		plan = Plan{
			Strategy: StrategyFlowJoin,
			Outer:    shape.First,
			MaxDepth: shape.MaxDepth,
			Reason:   fmt.Sprintf("flow index seeds from %s", shape.First),
		}

	default:
		plan = Plan{
			Strategy: StrategyFullScan,
			Reason:   "no index supports this shape",
		}
	}

	p.log.record(shape, plan)
	p.logger.Debug("planner.decision",
		"strategy", plan.Strategy.String(),
		"outer", plan.Outer.String(),
		"inner", plan.Inner.String(),
		"reason", plan.Reason,
	)
	return plan
}

// planSpatial drives the join from the smaller-cardinality category: fewer
// outer rows means fewer spatial probes against the larger side. Equal
// cardinalities keep declaration order.
func (p *Planner) planSpatial(shape Shape) Plan {
	first := p.stats.Cardinality(shape.First)
	second := p.stats.Cardinality(shape.Second)

	outer, inner := shape.First, shape.Second
	reason := fmt.Sprintf("%s (%d) <= %s (%d), declaration order kept",
		shape.First, first, shape.Second, second)
	if second < first {
		outer, inner = shape.Second, shape.First
		reason = fmt.Sprintf("%s (%d) < %s (%d), join reordered",
			shape.Second, second, shape.First, first)
	}

	return Plan{
		Strategy: StrategySpatialJoin,
		Outer:    outer,
		Inner:    inner,
		Reason:   reason,
	}
}
