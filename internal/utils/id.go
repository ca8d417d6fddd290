package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// contentHashLength is the number of hex characters kept from the digest.
const contentHashLength = 16

// ContentHash joins parts with "|" and returns the first 16 hex characters of
// their SHA-256 digest. Identical parts always produce the identical hash.
func ContentHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))

	return hex.EncodeToString(sum[:])[:contentHashLength]
}
