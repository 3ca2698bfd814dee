// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package query

import "sync"

// Decision is one recorded planning choice.
type Decision struct {
	Shape    Shape
	Strategy Strategy
	Outer    string
	Inner    string
	Reason   string
}

// DecisionLog records every plan the planner emits. Rules plan concurrently,
// so appends are mutex-guarded; reads copy the slice.
type DecisionLog struct {
	mu        sync.Mutex
	decisions []Decision
}

// NewDecisionLog returns an empty log.
func NewDecisionLog() *DecisionLog {
	return &DecisionLog{}
}

func (l *DecisionLog) record(shape Shape, plan Plan) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisions = append(l.decisions, Decision{
		Shape:    shape,
		Strategy: plan.Strategy,
		Outer:    plan.Outer.String(),
		Inner:    plan.Inner.String(),
		Reason:   plan.Reason,
	})
}

// Decisions returns a copy of all recorded decisions in arrival order.
func (l *DecisionLog) Decisions() []Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Decision, len(l.decisions))
	copy(out, l.decisions)
	return out
}

// Len returns the number of recorded decisions.
func (l *DecisionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.decisions)
}
