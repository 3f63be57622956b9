package account

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const accountTokenBytes = 32 // 256 bits

// NewAccountToken generates the opaque account token: fixed-length,
// cryptographically random, base64url without padding. Collisions are
// negligible but the repository still retries on a uniqueness violation.
func NewAccountToken() (string, error) {
	b := make([]byte, accountTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate account token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
