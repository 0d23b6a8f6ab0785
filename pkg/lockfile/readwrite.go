package lockfile

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/relock/pkg/errors"
)

// ReadSnapshot decodes a lock file in pipeline input shape from r and
// validates its structure.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "parse lock file")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadSnapshotFile reads and decodes a lock file from path.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "lock file %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// Marshal encodes any lock-file document with sorted keys, two-space
// indentation, and a trailing newline. The encoding is byte-for-byte
// reproducible for identical input.
func Marshal(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write encodes doc deterministically and writes it to w.
func Write(doc any, w io.Writer) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile encodes doc deterministically and writes it to path,
// overwriting any existing file.
func WriteFile(doc any, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalSnapshot is a convenience wrapper used for cache keys: it encodes a
// snapshot with [Marshal] so that identical documents hash identically.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return Marshal(s)
}

// Equal reports whether two documents encode to identical bytes.
func Equal(a, b any) bool {
	da, err := Marshal(a)
	if err != nil {
		return false
	}
	db, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(da, db)
}
