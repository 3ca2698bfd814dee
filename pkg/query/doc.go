// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package query plans index access for rule evaluation.
//
// A Planner turns an abstract query shape (category scan, spatial
// co-location of two categories, flow reachability) into an execution plan:
// which index to drive from and, for joins, which side is outer. Decisions
// are cost-based on the cardinality statistics computed at store build and
// are recorded in a DecisionLog so tests and operators can verify join
// ordering.
package query
