package locktree

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Serialization separators. Field and record boundaries are explicit so that
// ("ab","c") and ("a","bc") can never serialize to the same byte stream.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Signature canonicalizes a dependency sequence to a stable content hash.
//
// The sequence is serialized in its given order (which itself derives from
// iterating requires maps in sorted key order), one record per node carrying
// name, version, and the node's own signature. The bytes are hashed with
// SHA-256 and hex-encoded. The result depends only on the content: no memory
// addresses, timestamps, or map iteration order are incorporated, so equal
// subtrees hash equally across platforms and process runs.
func Signature(deps []*Node) string {
	h := sha256.New()
	for _, d := range deps {
		io.WriteString(h, d.Name)
		io.WriteString(h, fieldSep)
		io.WriteString(h, d.Version)
		io.WriteString(h, fieldSep)
		io.WriteString(h, d.Signature)
		io.WriteString(h, recordSep)
	}
	return hex.EncodeToString(h.Sum(nil))
}
