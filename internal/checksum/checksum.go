// Package checksum fingerprints stored content: whole collection values of the
// local driver and attachment files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileKeyLen is the number of hex digits in a FileKey.
const FileKeyLen = 32

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// FileKey returns the first 128 bits of the digest, used as a file name stem.
func FileKey(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:FileKeyLen/2])
}
