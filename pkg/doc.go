// Package pkg provides the core libraries for the relock lock file pipeline.
//
// # Overview
//
// Relock recomputes dependency lock files with stability guarantees: ranges
// that did not move keep their previously locked resolutions, new dependencies
// and deliberate upgrades adopt the current resolution. The pkg directory is
// organized into three main areas:
//
//  1. [lockfile], [locktree] - Input documents and canonical tree construction
//  2. [relock], [hoist] - The re-locking pipeline (diff, hoist, assemble)
//  3. [cache], [snapshot], [render], [observability] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through relock:
//
//	Previous + Current Lock Snapshot
//	         ↓
//	    [locktree] package (canonical trees + content signatures)
//	         ↓
//	    [relock] package (stability-aware diff)
//	         ↓
//	    [hoist] package (flatten to shallowest conflict-free placement)
//	         ↓
//	    [relock] package (assemble + deterministic serialization)
//	         ↓
//	    package-lock.json output
//
// # Quick Start
//
// Relock a current snapshot against a previous one:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/relock/pkg/cache"
//	    "github.com/matzehuels/relock/pkg/lockfile"
//	    "github.com/matzehuels/relock/pkg/relock"
//	)
//
//	prev, _ := lockfile.ReadSnapshotFile("previous-lock.json")
//	curr, _ := lockfile.ReadSnapshotFile("package-lock.json")
//
//	runner := relock.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Relock(context.Background(), relock.Options{
//	    Previous: prev,
//	    Current:  curr,
//	})
//	os.Stdout.Write(result.Output)
//
// # Main Packages
//
// [lockfile] - The wire formats: lock snapshots (input), assembled lock files
// (output), package manifests, and deterministic JSON serialization.
//
// [locktree] - Canonical dependency trees built from nested lock documents via
// deepest-prefix resolution, with SHA-256 content signatures over subtrees and
// cycle truncation.
//
// [relock] - The pipeline itself: the stability-aware differ with its decision
// log, the orchestrating Runner, project module matching, and lock file
// assembly from placements.
//
// [hoist] - Flattening of the diffed tree: every package variant moves to the
// shallowest position where it conflicts with no other version of itself.
//
// [cache] - Result caching behind a small interface, with file, Redis, and
// null implementations plus retry helpers.
//
// [snapshot] - Persistence of previous snapshots per project, with file and
// MongoDB stores.
//
// [render] - Graphviz DOT and SVG rendering of canonical trees.
//
// [observability] - Pluggable hooks around pipeline stages, cache access, and
// HTTP handling.
//
// [errors] - Structured errors with stable machine-readable codes shared
// across the CLI and the HTTP service.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/relock/...   # Specific package
//
// [lockfile]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/lockfile
// [locktree]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/locktree
// [relock]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/relock
// [hoist]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/hoist
// [cache]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/cache
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/snapshot
// [render]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/relock/pkg/buildinfo
package pkg
