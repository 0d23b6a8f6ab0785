// Package relock implements stability-aware lock-file recomputation.
//
// # Overview
//
// Given the canonical trees of a previous and a current lock file (built by
// locktree), the [Differ] produces a mixed tree in which every required
// subtree is either the current resolution verbatim or the entire previous
// subtree - never a partial splice below the decision point:
//
//   - a dependency absent from the previous requires map is adopted from the
//     current tree (new dependency);
//   - a requirement range that moved at major or minor granularity is adopted
//     from the current tree (deliberate update, must propagate);
//   - a patch-level range change, or a name matching a configured
//     project-module pattern, is re-examined one level deeper, keeping the
//     previously locked resolution for the node itself;
//   - an identical range keeps the previous subtree wholesale, even if a
//     transitive upstream update would otherwise have moved it.
//
// The last branch is the stability guarantee: untouched requirement ranges
// keep their previously locked resolution.
//
// The [Runner] wires the full pipeline - build both trees, diff, hoist,
// assemble - with caching, logging, and observability hooks, the single entry
// point shared by the CLI and the HTTP service.
package relock
