// Package cache provides result caching for the relock pipeline.
//
// A relock run is a pure function of its inputs (previous snapshot, current
// snapshot, project-module patterns), so the assembled lock file can be
// cached under a key derived from input hashes. Backends:
//   - file: directory-based cache for CLI usage
//   - redis: shared cache for service deployments
//   - null: caching disabled
package cache

import (
	"context"
	"slices"
	"time"
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A non-positive TTL stores the
	// value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per cached object type.
const (
	// TTLResult is the lifetime of an assembled lock-file result.
	TTLResult = 24 * time.Hour

	// TTLSnapshot is the lifetime of a cached input snapshot body.
	TTLSnapshot = 7 * 24 * time.Hour
)

// ResultKeyOpts are the non-snapshot inputs that affect a relock result.
type ResultKeyOpts struct {
	ProjectModules []string
}

// Keyer generates cache keys for the different cached object types.
type Keyer interface {
	// ResultKey generates a key for an assembled lock-file result from the
	// content hashes of both input snapshots.
	ResultKey(prevHash, currHash string, opts ResultKeyOpts) string

	// SnapshotKey generates a key for a stored snapshot body.
	SnapshotKey(hash string) string
}

// DefaultKeyer generates deterministic hash-based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResultKey generates a key for an assembled lock-file result. Pattern order
// does not change what a run produces, so patterns are sorted before they
// enter the digest.
func (k *DefaultKeyer) ResultKey(prevHash, currHash string, opts ResultKeyOpts) string {
	fields := []string{prevHash, currHash}
	fields = append(fields, slices.Sorted(slices.Values(opts.ProjectModules))...)
	return hashKey("result", fields...)
}

// SnapshotKey generates a key for a stored snapshot body.
func (k *DefaultKeyer) SnapshotKey(hash string) string {
	return "snapshot:" + hash
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, so
// different users or contexts get separate cache namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(prevHash, currHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(prevHash, currHash, opts)
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(hash string) string {
	return k.prefix + k.inner.SnapshotKey(hash)
}
