package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// ShortHash returns a short content-derived identifier: the first 12 hex
// characters of the SHA-256 of the lowercased, whitespace-normalized input.
func ShortHash(input string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	return Hash(normalized)[:12]
}
