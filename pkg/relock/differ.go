package relock

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/locktree"
)

// Action describes what the differ did with one required dependency edge.
type Action string

const (
	// ActionAdopt takes the current subtree as-is.
	ActionAdopt Action = "adopt"
	// ActionKeep carries the entire previous subtree over unchanged.
	ActionKeep Action = "keep"
	// ActionRecurse re-examines the dependency one level deeper instead of
	// deciding wholesale.
	ActionRecurse Action = "recurse"
)

// Decision records one branch choice for operator review.
type Decision struct {
	Path      []string `json:"path"`
	Name      string   `json:"name"`
	PrevRange string   `json:"prevRange,omitempty"`
	CurrRange string   `json:"currRange"`
	Action    Action   `json:"action"`
	Reason    string   `json:"reason"`
}

// Location renders the decision's position as a lock-path.
func (d Decision) Location() string {
	return strings.Join(append(slices.Clone(d.Path), d.Name), locktree.PathSeparator)
}

// Differ mixes a previous and a current canonical tree according to the
// stability policy. A differ is single-use: it accumulates the decision log
// for the one Diff call it serves.
type Differ struct {
	projects  *Matcher
	decisions []Decision
}

// NewDiffer creates a differ with the given project-module matcher, which
// may be nil when no patterns are configured.
func NewDiffer(projects *Matcher) *Differ {
	return &Differ{projects: projects}
}

// Decisions returns the decision log of the last Diff call, in the order
// decisions were made.
func (d *Differ) Decisions() []Decision {
	return d.decisions
}

// Diff produces the mixed tree for the given previous and current canonical
// trees (same logical root). The result has the shape of the current tree,
// but any given subtree is either the current version verbatim or the entire
// previous subtree. Chosen subtrees are deep-copied, so the inputs and the
// output never alias nodes.
func (d *Differ) Diff(prev, curr *locktree.Node) (*locktree.Node, error) {
	return d.diffNode(nil, prev, curr)
}

func (d *Differ) diffNode(path []string, prev, curr *locktree.Node) (*locktree.Node, error) {
	// A node reached via the recurse branch keeps its previously locked
	// resolution: only its children are re-decided. Adopting the current
	// version here would let a patch-only range bump move the resolution,
	// which is exactly what the stability policy rules out. Requires follows
	// the current tree because the child set is rebuilt from it below.
	out := &locktree.Node{
		Name:     curr.Name,
		Version:  prev.Version,
		Requires: maps.Clone(curr.Requires),
	}

	for _, name := range slices.Sorted(maps.Keys(curr.Requires)) {
		currChild := curr.Dependency(name)
		if currChild == nil {
			return nil, errors.New(errors.ErrCodeUnresolvablePath,
				"current tree has no node for %q at %s", name, location(path))
		}
		currRange := curr.Requires[name]
		prevRange, had := prev.Requires[name]
		childPath := append(slices.Clone(path), name)

		switch {
		case !had:
			d.record(path, name, "", currRange, ActionAdopt, "new dependency")
			out.Dependencies = append(out.Dependencies, currChild.Clone())

		case RangeBeyondPatch(prevRange, currRange):
			d.record(path, name, prevRange, currRange, ActionAdopt, "range moved beyond patch")
			out.Dependencies = append(out.Dependencies, currChild.Clone())

		case prevRange != currRange || d.projects.IsProjectModule(name):
			prevChild := prev.Dependency(name)
			if prevChild == nil {
				return nil, errors.New(errors.ErrCodeUnresolvablePath,
					"previous tree has no node for %q at %s", name, location(path))
			}
			reason := "patch-level range change"
			if prevRange == currRange {
				reason = "project module"
			}
			d.record(path, name, prevRange, currRange, ActionRecurse, reason)
			child, err := d.diffNode(childPath, prevChild, currChild)
			if err != nil {
				return nil, err
			}
			out.Dependencies = append(out.Dependencies, child)

		default:
			prevChild := prev.Dependency(name)
			if prevChild == nil {
				return nil, errors.New(errors.ErrCodeUnresolvablePath,
					"previous tree has no node for %q at %s", name, location(path))
			}
			d.record(path, name, prevRange, currRange, ActionKeep, "range unchanged")
			out.Dependencies = append(out.Dependencies, prevChild.Clone())
		}
	}

	out.Signature = locktree.Signature(out.Dependencies)
	return out, nil
}

func (d *Differ) record(path []string, name, prevRange, currRange string, action Action, reason string) {
	d.decisions = append(d.decisions, Decision{
		Path:      slices.Clone(path),
		Name:      name,
		PrevRange: prevRange,
		CurrRange: currRange,
		Action:    action,
		Reason:    reason,
	})
}

func location(path []string) string {
	if len(path) == 0 {
		return "the root"
	}
	return strings.Join(path, locktree.PathSeparator)
}
