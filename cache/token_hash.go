package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken hashes a token value into a fixed-length cache key. Token values
// never appear verbatim in cache keys or log output.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
