package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash hashes a refresh token using SHA256 before it is stored.
// Raw refresh tokens are never persisted.
func Hash(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
