package hoist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/locktree"
)

// tree builds a canonical tree from an inline snapshot.
func tree(t *testing.T, requires map[string]string, deps map[string]*lockfile.Entry) *locktree.Node {
	t.Helper()
	root, err := locktree.NewBuilder(&lockfile.Snapshot{
		Name:         "app",
		Version:      "1.0.0",
		Requires:     requires,
		Dependencies: deps,
	}, nil, nil).Build()
	require.NoError(t, err)
	return root
}

func TestHoistFlattensSharedVariant(t *testing.T) {
	// a and b both require the identical shared variant: one placement
	// entry, hoisted to the root.
	root := tree(t,
		map[string]string{"a": "^1.0.0", "b": "^1.0.0"},
		map[string]*lockfile.Entry{
			"a":      {Version: "1.0.0", Requires: map[string]string{"shared": "^1.0.0"}},
			"b":      {Version: "1.0.0", Requires: map[string]string{"shared": "^1.0.0"}},
			"shared": {Version: "1.2.3"},
		},
	)

	placement, err := Hoist(root)
	require.NoError(t, err)

	require.Contains(t, placement.Children, "shared")
	assert.Equal(t, "shared@1.2.3", placement.Children["shared"].Tag())
	assert.Empty(t, placement.Children["a"].Children, "a keeps no nested copy")
	assert.Empty(t, placement.Children["b"].Children, "b keeps no nested copy")
	assert.Equal(t, 3, placement.Count())
}

func TestHoistIncompatibleVariantsCoexist(t *testing.T) {
	// a requires c@2, b carries a nested override c@3. The shallower c@2 is
	// hoisted to the root; c@3 stays nested under b.
	root := tree(t,
		map[string]string{"a": "^1.0.0", "b": "^1.0.0"},
		map[string]*lockfile.Entry{
			"a": {Version: "1.0.0", Requires: map[string]string{"c": "^2.0.0"}},
			"b": {
				Version:  "1.0.0",
				Requires: map[string]string{"c": "^3.0.0"},
				Dependencies: map[string]*lockfile.Entry{
					"c": {Version: "3.0.0"},
				},
			},
			"c": {Version: "2.0.1"},
		},
	)

	placement, err := Hoist(root)
	require.NoError(t, err)

	require.Contains(t, placement.Children, "c")
	require.Contains(t, placement.Children["b"].Children, "c")

	hoisted := placement.Children["c"]
	nested := placement.Children["b"].Children["c"]
	versions := []string{hoisted.Version, nested.Version}
	assert.ElementsMatch(t, []string{"2.0.1", "3.0.0"}, versions, "both variants must coexist")
	assert.NotContains(t, placement.Children["a"].Children, "c", "a resolves to the hoisted variant")
}

func TestCollectOrder(t *testing.T) {
	root := tree(t,
		map[string]string{"a": "^1.0.0"},
		map[string]*lockfile.Entry{
			"a": {Version: "1.0.0", Requires: map[string]string{"c": "^2.0.0", "d": "^1.0.0"}},
			"c": {Version: "2.0.1", Requires: map[string]string{"d": "^1.0.0"}},
			"d": {Version: "1.0.0"},
		},
	)

	modules := Collect(root)
	require.Len(t, modules, 3)

	// a is the only depth-0 module; d occurs twice so it precedes c at depth 1.
	assert.Equal(t, "a@1.0.0", modules[0].Tag())
	assert.Equal(t, "d@1.0.0", modules[1].Tag())
	assert.Equal(t, "c@2.0.1", modules[2].Tag())

	assert.Equal(t, 0, modules[0].Depth)
	assert.Equal(t, 1, modules[1].Depth)
	assert.Len(t, modules[1].Paths, 2, "every occurrence path is tracked")
}

func TestCollectDistinctVariantsSameName(t *testing.T) {
	root := tree(t,
		map[string]string{"a": "^1.0.0", "b": "^1.0.0"},
		map[string]*lockfile.Entry{
			"a": {Version: "1.0.0", Requires: map[string]string{"c": "^2.0.0"}},
			"b": {
				Version:  "1.0.0",
				Requires: map[string]string{"c": "^3.0.0"},
				Dependencies: map[string]*lockfile.Entry{
					"c": {Version: "3.0.0"},
				},
			},
			"c": {Version: "2.0.1"},
		},
	)

	modules := Collect(root)
	var cs []*Module
	for _, m := range modules {
		if m.Name == "c" {
			cs = append(cs, m)
		}
	}
	require.Len(t, cs, 2, "same name with different versions are distinct modules")
}

func TestHoistDeterminism(t *testing.T) {
	build := func() *PlacementNode {
		root := tree(t,
			map[string]string{"a": "^1.0.0", "b": "^1.0.0", "c": "^1.0.0"},
			map[string]*lockfile.Entry{
				"a": {Version: "1.0.0", Requires: map[string]string{"x": "^1.0.0"}},
				"b": {Version: "1.0.0", Requires: map[string]string{"x": "^1.0.0"}},
				"c": {
					Version:  "1.0.0",
					Requires: map[string]string{"x": "^2.0.0"},
					Dependencies: map[string]*lockfile.Entry{
						"x": {Version: "2.0.0"},
					},
				},
				"x": {Version: "1.0.0"},
			},
		)
		placement, err := Hoist(root)
		require.NoError(t, err)
		return placement
	}

	first := build()
	for range 5 {
		next := build()
		assert.Equal(t, flatten(first, ""), flatten(next, ""), "placement must be reproducible")
	}
}

// flatten renders a placement tree as a sorted-ish path->tag map for
// comparison.
func flatten(p *PlacementNode, prefix string) map[string]string {
	out := make(map[string]string)
	for name, child := range p.Children {
		key := prefix + "/" + name
		out[key] = child.Tag()
		for k, v := range flatten(child, key) {
			out[k] = v
		}
	}
	return out
}

func TestPlaceConflictDescends(t *testing.T) {
	placement := NewPlacementRoot()

	a := &Module{Name: "a", Version: "1.0.0", Signature: "s1", Paths: [][]string{nil}}
	require.NoError(t, place(placement, a, nil))

	x1 := &Module{Name: "x", Version: "1.0.0", Signature: "sx1"}
	require.NoError(t, place(placement, x1, []string{"a"}))

	// Different variant of x required under a: root slot is taken, so it
	// descends to a.
	x2 := &Module{Name: "x", Version: "2.0.0", Signature: "sx2"}
	require.NoError(t, place(placement, x2, []string{"a"}))

	assert.Equal(t, "1.0.0", placement.Children["x"].Version)
	assert.Equal(t, "2.0.0", placement.Children["a"].Children["x"].Version)
}

func TestPlaceMissingPathNode(t *testing.T) {
	placement := NewPlacementRoot()
	require.NoError(t, place(placement, &Module{Name: "x", Version: "1.0.0", Signature: "s1"}, nil))

	// Conflicting variant whose consumer path was never placed: structural
	// inconsistency, reported with the offending path.
	err := place(placement, &Module{Name: "x", Version: "2.0.0", Signature: "s2"}, []string{"ghost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvablePath), "got %v", err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestPlaceExhaustedPath(t *testing.T) {
	placement := NewPlacementRoot()
	require.NoError(t, place(placement, &Module{Name: "x", Version: "1.0.0", Signature: "s1"}, nil))

	// Same-name different variant with an empty consumer path has nowhere
	// left to descend.
	err := place(placement, &Module{Name: "x", Version: "2.0.0", Signature: "s2"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvablePath))
}
