package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// safeSegment returns seg unchanged when it is usable as a file name, and
// its hash otherwise. Crate names and versions are always safe; the hash
// only guards against keys that would escape the cache directory.
func safeSegment(seg string) string {
	if seg == "" || seg == "." || seg == ".." || len(seg) > 200 {
		return Hash([]byte(seg))
	}
	ok := strings.IndexFunc(seg, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '.' || r == '-' || r == '_' || r == '+':
			return false
		}
		return true
	}) < 0
	if ok {
		return seg
	}
	return Hash([]byte(seg))
}
