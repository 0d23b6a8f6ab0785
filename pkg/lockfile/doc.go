// Package lockfile provides the JSON document model for npm-style lock files
// and project manifests.
//
// # Overview
//
// Three document shapes live here:
//
//   - [Snapshot]: a lock file as the relock pipeline consumes it - top-level
//     name, version, a requires map synthesized from the manifest's declared
//     ranges, and a nested dependencies map where each entry may itself carry
//     version, requires, and nested dependencies (locally-overridden
//     resolutions).
//   - [Lockfile]: the assembled output document - name, version,
//     lockfileVersion 1, the literal requires: true flag, and a fully nested
//     dependencies map.
//   - [Manifest]: a package.json with declared dependency ranges, used to
//     synthesize the top-level requires map on bootstrap.
//
// # Determinism
//
// Writing a document is byte-for-byte reproducible: Go's JSON encoder sorts
// map keys, documents are indented with two spaces, and output ends with a
// trailing newline. Two runs over identical input produce identical bytes,
// which is what makes lock files diffable and cacheable.
//
// # Boundary
//
// This package performs no range resolution and no integrity verification;
// it only reads, validates, and writes documents. The algorithmic work
// happens in locktree, relock, and hoist.
package lockfile
