// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package index builds and serves the query indices of the Leviathan
// correlation core.
//
// A Store is constructed exactly once from a fact arena and is read-only
// afterward, so rule-evaluation goroutines share it without locking. It
// bundles four structures:
//
//   - the type index: category → ordered fact identifiers;
//   - the spatial index: a balanced bounding-volume tree over
//     (hashed file identity, line, column) ranges;
//   - the flow index: a directed graph derived from flow-edge facts,
//     with cycle-safe reachability and unweighted shortest paths;
//   - statistics: per-category cardinality and selectivity, computed at
//     build time and probed by the query planner.
//
// All indices store fact identifiers, never fact copies. Spatial queries
// embed a hash of the file path in the volume key and therefore re-check the
// real path on every hit to filter hash collisions.
package index
