package lockfile

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/relock/pkg/errors"
)

// Manifest is a package.json with the fields relock needs: the project
// identity and its declared dependency ranges.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// CombinedRequires merges runtime and dev dependency ranges into a single
// requires map, the shape used as a snapshot's top-level requires on
// bootstrap. Runtime ranges win when the same name appears in both sections.
func (m *Manifest) CombinedRequires() map[string]string {
	requires := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for name, rng := range m.DevDependencies {
		requires[name] = rng
	}
	for name, rng := range m.Dependencies {
		requires[name] = rng
	}
	return requires
}

// ReadManifest decodes a package.json from r.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	if m.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has no name")
	}
	return &m, nil
}

// ReadManifestFile reads and decodes a package.json from path.
func ReadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}
