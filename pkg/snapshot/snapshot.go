// Package snapshot persists locked snapshots between runs.
//
// A relock run diffs the current lock document against the previously locked
// one. The store keeps that previous document per project so the CLI and the
// service can fetch it without the caller wiring files around. Backends:
//   - file: JSON files in a config directory for CLI usage
//   - mongo: MongoDB collection for service deployments
package snapshot

import (
	"context"

	"github.com/matzehuels/relock/pkg/lockfile"
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves the stored snapshot for a project.
	// Returns a SNAPSHOT_NOT_FOUND error when none exists.
	Get(ctx context.Context, project string) (*lockfile.Snapshot, error)

	// Set stores the snapshot for a project, replacing any existing one.
	Set(ctx context.Context, project string, snap *lockfile.Snapshot) error

	// Delete removes the stored snapshot for a project.
	// Deleting an absent snapshot is not an error.
	Delete(ctx context.Context, project string) error

	// List returns the project names with a stored snapshot, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
