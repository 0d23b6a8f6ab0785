package snapshot

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
)

// FileStore keeps one JSON file per project in a directory.
// Safe for concurrent use within a single process.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// An empty dir defaults to ~/.config/relock/snapshots (per the platform's
// user config directory). The directory is created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "relock", "snapshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Get retrieves the stored snapshot for a project.
func (s *FileStore) Get(ctx context.Context, project string) (*lockfile.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(project))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot for %q", project)
	}
	if err != nil {
		return nil, err
	}
	snap, err := lockfile.ReadSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "stored snapshot for %q", project)
	}
	return snap, nil
}

// Set stores the snapshot for a project, replacing any existing one.
func (s *FileStore) Set(ctx context.Context, project string, snap *lockfile.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lockfile.WriteFile(snap, s.path(project))
}

// Delete removes the stored snapshot for a project.
func (s *FileStore) Delete(ctx context.Context, project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(project))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the project names with a stored snapshot, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var projects []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		project, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		projects = append(projects, project)
	}
	slices.Sort(projects)
	return projects, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// path maps a project name to its file. Names are escaped so scoped package
// names like @acme/app stay single path segments.
func (s *FileStore) path(project string) string {
	return filepath.Join(s.dir, url.PathEscape(project)+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
