// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package rule defines correlation rules and evaluates them against an
// indexed fact store.
//
// A Rule names its patterns (category plus field conditions), an optional
// filter expression, and an emission template. The Matcher produces every
// binding of pattern variables to fact identifiers that satisfies all
// patterns; the Evaluator filters bindings with short-circuit boolean
// semantics and the reachable/distance/same_location builtins; the finding
// builder interpolates the template into one Finding per surviving binding.
//
// The Engine runs all rules in parallel under per-rule timeouts and a
// per-rule findings cap, and aggregates findings and statistics
// deterministically: the same rules over the same facts produce the same
// result regardless of worker count.
package rule
