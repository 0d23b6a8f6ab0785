package locktree

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
)

// PathSeparator joins the sequence of names from the root down to a nested
// lock entry into a lock-path key.
const PathSeparator = "|"

// CycleFunc is called when a circular requirement is truncated. path is the
// lock-path of the entry being re-entered, requiredFrom the lock-path of the
// node whose requires edge closed the cycle. Cycles are a recognized, bounded
// case, not an error: the cyclic edge resolves to an empty dependency list
// and the rest of the tree stays correct.
type CycleFunc func(path, requiredFrom string)

// Builder walks one raw lock snapshot and produces its canonical tree.
//
// All caches - the lock-path index, the per-path memo table, the in-progress
// set for cycle detection, and the signature index - are owned by the builder
// and scoped to a single Build call universe. A builder must not be reused
// across independent runs.
type Builder struct {
	snap    *lockfile.Snapshot
	store   *VersionStore
	onCycle CycleFunc

	entries  map[string]*lockfile.Entry // lock-path -> raw entry
	built    map[string]*Node           // lock-path -> finished node
	building map[string]bool            // lock-paths currently being expanded
	subtrees map[string][]*Node         // signature -> dependency sequence
}

// NewBuilder creates a builder over the given snapshot. Version records are
// written into store, which may be shared with other builders in the same run
// (later records for the same name@version overwrite earlier ones). onCycle
// may be nil.
func NewBuilder(snap *lockfile.Snapshot, store *VersionStore, onCycle CycleFunc) *Builder {
	if store == nil {
		store = NewVersionStore()
	}
	b := &Builder{
		snap:     snap,
		store:    store,
		onCycle:  onCycle,
		entries:  make(map[string]*lockfile.Entry),
		built:    make(map[string]*Node),
		building: make(map[string]bool),
		subtrees: make(map[string][]*Node),
	}
	for name, entry := range snap.Dependencies {
		b.index(name, entry)
	}
	return b
}

// index enumerates every lock-path in the raw document. This captures every
// place a locally-overridden version can appear in the nested lock layout,
// not just the flat root-level list.
func (b *Builder) index(path string, entry *lockfile.Entry) {
	b.entries[path] = entry
	for name, child := range entry.Dependencies {
		b.index(path+PathSeparator+name, child)
	}
}

// Store returns the version store records are written into.
func (b *Builder) Store() *VersionStore {
	return b.store
}

// Subtrees returns the signature index built so far: for every computed
// signature, the dependency sequence it identifies. Shared subtrees are
// registered once and reused by reference within this build.
func (b *Builder) Subtrees() map[string][]*Node {
	return b.subtrees
}

// Build produces the canonical tree for the snapshot's top-level requires.
// The returned root is the synthetic root node (empty name) carrying the
// snapshot's requires map and one child per entry.
//
// Build fails with a MISSING_MODULE error when any requires entry, at any
// depth, cannot be resolved to a lock entry: the input document is then
// internally inconsistent with its own requirements and no partial tree is
// returned.
func (b *Builder) Build() (*Node, error) {
	root := &Node{Requires: maps.Clone(b.snap.Requires)}
	deps, err := b.buildDeps("", b.snap.Requires)
	if err != nil {
		return nil, err
	}
	root.Dependencies = deps
	root.Signature = Signature(deps)
	b.subtrees[root.Signature] = deps
	return root, nil
}

// buildDeps builds one child per requires entry, iterating names in sorted
// order so that sibling order is canonical.
func (b *Builder) buildDeps(fromPath string, requires map[string]string) ([]*Node, error) {
	if len(requires) == 0 {
		return nil, nil
	}
	deps := make([]*Node, 0, len(requires))
	for _, name := range slices.Sorted(maps.Keys(requires)) {
		child, err := b.buildChild(fromPath, name)
		if err != nil {
			return nil, err
		}
		deps = append(deps, child)
	}
	return deps, nil
}

// buildChild resolves one requires edge and builds (or reuses) the node for
// its target.
func (b *Builder) buildChild(fromPath, name string) (*Node, error) {
	lockPath, entry, err := b.resolve(fromPath, name)
	if err != nil {
		return nil, err
	}

	// Cycle check compares resolved lock-paths: re-entering a path that is
	// still being expanded truncates this edge to an empty dependency list.
	if b.building[lockPath] {
		if b.onCycle != nil {
			b.onCycle(lockPath, fromPath)
		}
		return &Node{
			Name:      name,
			Version:   entry.Version,
			Requires:  maps.Clone(entry.Requires),
			Signature: Signature(nil),
		}, nil
	}

	// A shared subtree is computed once and reused by reference for every
	// requirer within this tree.
	if node, ok := b.built[lockPath]; ok {
		return node, nil
	}

	b.building[lockPath] = true
	defer delete(b.building, lockPath)

	b.store.Record(name, entry)

	node := &Node{
		Name:     name,
		Version:  entry.Version,
		Requires: maps.Clone(entry.Requires),
	}
	deps, err := b.buildDeps(lockPath, entry.Requires)
	if err != nil {
		return nil, err
	}
	node.Dependencies = deps
	node.Signature = Signature(deps)
	b.subtrees[node.Signature] = deps
	b.built[lockPath] = node
	return node, nil
}

// resolve searches for the lock entry satisfying a requires edge: from the
// deepest prefix of fromPath outward, the first prefix|name that names an
// indexed entry wins. This mirrors Node-style module resolution - the nearest
// enclosing override, falling back to a hoisted root entry.
func (b *Builder) resolve(fromPath, name string) (string, *lockfile.Entry, error) {
	prefix := fromPath
	for {
		candidate := name
		if prefix != "" {
			candidate = prefix + PathSeparator + name
		}
		if entry, ok := b.entries[candidate]; ok {
			return candidate, entry, nil
		}
		if prefix == "" {
			break
		}
		if i := strings.LastIndex(prefix, PathSeparator); i >= 0 {
			prefix = prefix[:i]
		} else {
			prefix = ""
		}
	}
	from := fromPath
	if from == "" {
		from = "the root"
	}
	return "", nil, errors.New(errors.ErrCodeMissingModule, "cannot resolve %q required from %s", name, from)
}
