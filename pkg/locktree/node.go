package locktree

import (
	"maps"

	"github.com/matzehuels/relock/pkg/lockfile"
)

// Node is one package in a canonical dependency tree. The synthetic root
// node has an empty Name; every other node names a resolved package.
//
// Dependencies holds one child per entry in Requires, in the canonical
// (sorted-key) iteration order of Requires. Signature is a pure function of
// the Dependencies content, computed bottom-up by the [Builder].
type Node struct {
	Name         string
	Version      string
	Requires     map[string]string
	Dependencies []*Node
	Signature    string
}

// Tag returns the name@version identity string.
func (n *Node) Tag() string {
	return n.Name + "@" + n.Version
}

// IsRoot reports whether this is the synthetic root node.
func (n *Node) IsRoot() bool {
	return n.Name == ""
}

// Dependency returns the child with the given name, or nil.
func (n *Node) Dependency(name string) *Node {
	for _, d := range n.Dependencies {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Clone returns a deep copy of the subtree rooted at n. Trees handed across
// pipeline stages are cloned rather than aliased, so no node is ever shared
// between two trees that may be modified independently.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:      n.Name,
		Version:   n.Version,
		Requires:  maps.Clone(n.Requires),
		Signature: n.Signature,
	}
	if n.Dependencies != nil {
		out.Dependencies = make([]*Node, len(n.Dependencies))
		for i, d := range n.Dependencies {
			out.Dependencies[i] = d.Clone()
		}
	}
	return out
}

// Count returns the number of package nodes in the subtree, excluding the
// synthetic root.
func (n *Node) Count() int {
	total := 0
	if !n.IsRoot() {
		total++
	}
	for _, d := range n.Dependencies {
		total += d.Count()
	}
	return total
}

// VersionStore is the side table of full package metadata keyed by
// name@version. It is populated while canonical trees are built and is the
// source of truth when the final lock file is reassembled, so metadata is
// never duplicated between tree nodes and records.
type VersionStore struct {
	records map[string]*lockfile.Entry
}

// NewVersionStore creates an empty store.
func NewVersionStore() *VersionStore {
	return &VersionStore{records: make(map[string]*lockfile.Entry)}
}

// Record stores the entry's metadata (minus its nested dependencies) under
// name@version. A later record for the same key overwrites the earlier one;
// entries for the same key are expected to be identical and divergence is
// not validated.
func (s *VersionStore) Record(name string, entry *lockfile.Entry) {
	s.records[name+"@"+entry.Version] = entry.Record()
}

// Lookup returns the record for a name@version tag.
func (s *VersionStore) Lookup(tag string) (*lockfile.Entry, bool) {
	rec, ok := s.records[tag]
	return rec, ok
}

// Len returns the number of distinct name@version records.
func (s *VersionStore) Len() int {
	return len(s.records)
}
