// Package digest computes the hex-encoded SHA-256 digests used for content
// hashes and cache keys.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the full 64-character hex SHA-256 digest of data.
func Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
