package cli

import (
	"io"
	"os"

	"github.com/matzehuels/relock/pkg/errors"
)

// nopCloser wraps a writer that must not be closed, like stdout.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput opens the output target. An empty path means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output file %s", path)
	}
	return f, nil
}
