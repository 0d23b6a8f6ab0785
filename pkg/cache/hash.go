package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey derives a cache key from an ordered sequence of input fields.
// Fields are fed through SHA-256 with a separator byte between them so
// adjacent fields cannot run together, the same framing the lock tree uses
// for subtree signatures. The kind prefix stays readable in front of the
// digest; FileCache uses it to group entries on disk.
func hashKey(kind string, fields ...string) string {
	h := sha256.New()
	for _, field := range fields {
		h.Write([]byte(field))
		h.Write([]byte{0x1f})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 digest of data. Snapshot documents are
// reduced to this digest before they reach the keyer, so cache keys never
// embed lock-file contents.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
