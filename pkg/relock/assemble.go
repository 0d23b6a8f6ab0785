package relock

import (
	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/hoist"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/locktree"
)

// Assemble materializes a placement tree into an output lock file, pulling
// full package metadata from the version store. Every placed package must
// have a record; a missing record means the pipeline stages disagree about
// which packages exist, which is a bug, not bad input.
func Assemble(placement *hoist.PlacementNode, store *locktree.VersionStore, name, version string) (*lockfile.Lockfile, error) {
	deps, err := assembleChildren(placement, store)
	if err != nil {
		return nil, err
	}
	return &lockfile.Lockfile{
		Name:            name,
		Version:         version,
		LockfileVersion: lockfile.CurrentLockfileVersion,
		Requires:        true,
		Dependencies:    deps,
	}, nil
}

func assembleChildren(p *hoist.PlacementNode, store *locktree.VersionStore) (map[string]*lockfile.Entry, error) {
	if len(p.Children) == 0 {
		return nil, nil
	}
	out := make(map[string]*lockfile.Entry, len(p.Children))
	for name, child := range p.Children {
		rec, ok := store.Lookup(child.Tag())
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal,
				"no version record for placed package %s", child.Tag())
		}
		entry := rec.Clone()
		nested, err := assembleChildren(child, store)
		if err != nil {
			return nil, err
		}
		entry.Dependencies = nested
		out[name] = entry
	}
	return out, nil
}
