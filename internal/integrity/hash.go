// Package integrity computes, stores and checks the tamper-evident payload of
// issued certificates.
package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashField returns the one-way digest stored for a plaintext identity field
// (student name, date of birth, GPA). Runs of whitespace are collapsed and
// the ends trimmed before hashing; everything else, including case, is
// significant.
func HashField(plaintext string) string {
	canonical := strings.Join(strings.Fields(plaintext), " ")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// ImageChecksum returns the digest stored for the rendered certificate image.
func ImageChecksum(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// digestEqual compares two hex digests in constant time.
func digestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
