package lockfile

import (
	"maps"

	"github.com/matzehuels/relock/pkg/errors"
)

// CurrentLockfileVersion is the schema-version marker written to assembled
// lock files.
const CurrentLockfileVersion = 1

// Entry is one resolved package inside a lock file's nested dependencies map.
// An entry may carry its own requires map and locally-overridden nested
// dependencies, mirroring the npm nested lock layout.
type Entry struct {
	Version      string            `json:"version,omitempty" bson:"version,omitempty"`
	Resolved     string            `json:"resolved,omitempty" bson:"resolved,omitempty"`
	Integrity    string            `json:"integrity,omitempty" bson:"integrity,omitempty"`
	Dev          bool              `json:"dev,omitempty" bson:"dev,omitempty"`
	Optional     bool              `json:"optional,omitempty" bson:"optional,omitempty"`
	Requires     map[string]string `json:"requires,omitempty" bson:"requires,omitempty"`
	Dependencies map[string]*Entry `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
}

// Record returns a copy of the entry with its nested dependencies stripped.
// This is the shape stored in the version side table: all metadata for a
// resolved package except its dependency list.
func (e *Entry) Record() *Entry {
	rec := *e
	rec.Dependencies = nil
	rec.Requires = maps.Clone(e.Requires)
	return &rec
}

// Clone returns a deep copy of the entry, including nested dependencies.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	out.Requires = maps.Clone(e.Requires)
	if e.Dependencies != nil {
		out.Dependencies = make(map[string]*Entry, len(e.Dependencies))
		for name, dep := range e.Dependencies {
			out.Dependencies[name] = dep.Clone()
		}
	}
	return &out
}

// Snapshot is a lock file in the shape the relock pipeline consumes: the
// top-level requires field is a map of requested ranges synthesized from the
// manifest, not the literal true flag of an assembled [Lockfile].
type Snapshot struct {
	Name         string            `json:"name" bson:"name"`
	Version      string            `json:"version" bson:"version"`
	Requires     map[string]string `json:"requires,omitempty" bson:"requires,omitempty"`
	Dependencies map[string]*Entry `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
}

// Validate checks structural requirements on a snapshot.
func (s *Snapshot) Validate() error {
	if s.Name == "" {
		return errors.New(errors.ErrCodeInvalidLockfile, "lock file has no name")
	}
	return validateEntries(s.Dependencies)
}

func validateEntries(deps map[string]*Entry) error {
	for name, entry := range deps {
		if err := errors.ValidatePackageName(name); err != nil {
			return err
		}
		if entry == nil {
			return errors.New(errors.ErrCodeInvalidLockfile, "dependency %q has no entry", name)
		}
		if entry.Version == "" {
			return errors.New(errors.ErrCodeInvalidLockfile, "dependency %q has no version", name)
		}
		if err := validateEntries(entry.Dependencies); err != nil {
			return err
		}
	}
	return nil
}

// Lockfile is the assembled output document.
type Lockfile struct {
	Name            string            `json:"name" bson:"name"`
	Version         string            `json:"version" bson:"version"`
	LockfileVersion int               `json:"lockfileVersion" bson:"lockfileVersion"`
	Requires        bool              `json:"requires" bson:"requires"`
	Dependencies    map[string]*Entry `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
}

// Snapshot converts an assembled lock file back into pipeline input shape,
// attaching the given top-level requirement ranges. This is how the output of
// one run becomes the previous snapshot of the next.
func (l *Lockfile) Snapshot(requires map[string]string) *Snapshot {
	deps := make(map[string]*Entry, len(l.Dependencies))
	for name, entry := range l.Dependencies {
		deps[name] = entry.Clone()
	}
	return &Snapshot{
		Name:         l.Name,
		Version:      l.Version,
		Requires:     maps.Clone(requires),
		Dependencies: deps,
	}
}
