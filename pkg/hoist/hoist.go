package hoist

import (
	"slices"
	"strings"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/locktree"
)

// Module is one distinct variant (name, version, signature) encountered
// anywhere in the input tree. Two modules with the same name but a different
// version or signature are distinct and may occupy different placement nodes
// simultaneously.
type Module struct {
	Name      string
	Version   string
	Signature string

	// Depth is the minimum nesting depth at which the variant occurs.
	Depth int
	// Paths is every consumer path (sequence of names from the root) at
	// which this exact variant is required, in discovery order.
	Paths [][]string
}

// Tag returns the name@version identity string.
func (m *Module) Tag() string {
	return m.Name + "@" + m.Version
}

// key identifies a variant in the collection index.
func (m *Module) key() string {
	return m.Name + "|" + m.Version + "|" + m.Signature
}

// PlacementNode is a node of the hoisted tree. Children are keyed by name:
// a placement node holds at most one variant per name slot.
type PlacementNode struct {
	Name      string
	Version   string
	Signature string
	Children  map[string]*PlacementNode
}

// NewPlacementRoot returns an empty placement tree root.
func NewPlacementRoot() *PlacementNode {
	return &PlacementNode{Children: make(map[string]*PlacementNode)}
}

// Tag returns the name@version identity string.
func (p *PlacementNode) Tag() string {
	return p.Name + "@" + p.Version
}

// Count returns the number of placed packages in the subtree, excluding the
// root.
func (p *PlacementNode) Count() int {
	total := 0
	if p.Name != "" {
		total++
	}
	for _, c := range p.Children {
		total += c.Count()
	}
	return total
}

// Hoist computes the deduplicated, minimally-nested placement tree for the
// given canonical tree.
func Hoist(root *locktree.Node) (*PlacementNode, error) {
	modules := Collect(root)
	placement := NewPlacementRoot()
	for _, m := range modules {
		for _, path := range m.Paths {
			if err := place(placement, m, path); err != nil {
				return nil, err
			}
		}
	}
	return placement, nil
}

// Collect indexes every variant occurrence in the tree and returns the
// modules in deterministic placement order: ascending minimum depth, ties
// broken by descending occurrence count, remaining ties lexicographically by
// the first occurrence path concatenated with the module name.
func Collect(root *locktree.Node) []*Module {
	index := make(map[string]*Module)
	var modules []*Module

	var walk func(n *locktree.Node, path []string)
	walk = func(n *locktree.Node, path []string) {
		for _, dep := range n.Dependencies {
			key := dep.Name + "|" + dep.Version + "|" + dep.Signature
			m, ok := index[key]
			if !ok {
				m = &Module{
					Name:      dep.Name,
					Version:   dep.Version,
					Signature: dep.Signature,
					Depth:     len(path),
				}
				index[key] = m
				modules = append(modules, m)
			}
			if len(path) < m.Depth {
				m.Depth = len(path)
			}
			m.Paths = append(m.Paths, slices.Clone(path))
			walk(dep, append(path, dep.Name))
		}
	}
	walk(root, nil)

	slices.SortStableFunc(modules, func(a, b *Module) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		if len(a.Paths) != len(b.Paths) {
			return len(b.Paths) - len(a.Paths)
		}
		return strings.Compare(sortKey(a), sortKey(b))
	})
	return modules
}

// sortKey is the final tie-breaker: the first occurrence path joined with
// the module name, which is total and reproducible because tree traversal
// order is canonical.
func sortKey(m *Module) string {
	return strings.Join(append(slices.Clone(m.Paths[0]), m.Name), locktree.PathSeparator)
}

// place walks the placement tree from the root along the consumer path,
// inserting the variant into the shallowest free name slot. A slot occupied
// by the same variant is a no-op; a slot occupied by a different variant
// forces a descent one level along the remaining path. Each retry consumes
// one path segment, so the loop terminates within the path's length; running
// out of path, or descending into a missing node, is a structural conflict.
func place(root *PlacementNode, m *Module, path []string) error {
	cur := root
	for i := 0; ; i++ {
		existing, occupied := cur.Children[m.Name]
		if !occupied {
			cur.Children[m.Name] = &PlacementNode{
				Name:      m.Name,
				Version:   m.Version,
				Signature: m.Signature,
				Children:  make(map[string]*PlacementNode),
			}
			return nil
		}
		if existing.Version == m.Version && existing.Signature == m.Signature {
			return nil
		}
		if i >= len(path) {
			return errors.New(errors.ErrCodeUnresolvablePath,
				"no free slot for %s along %s", m.Tag(), strings.Join(path, locktree.PathSeparator))
		}
		next, ok := cur.Children[path[i]]
		if !ok {
			return errors.New(errors.ErrCodeUnresolvablePath,
				"placement path %s missing node %q for %s", strings.Join(path, locktree.PathSeparator), path[i], m.Tag())
		}
		cur = next
	}
}
