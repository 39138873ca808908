package core

import (
	"crypto/md5"
	"encoding/hex"
)

// ContentHash derives the global deduplication key for an article from its
// identifying text (title concatenated with the canonical URL). The function
// is pure; identical input always yields the identical 32-character hex token.
// A collision is accepted as "already processed" and never validated further.
func ContentHash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
