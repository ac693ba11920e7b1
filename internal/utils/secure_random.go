package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecureRandomString returns n random bytes hex encoded, so the
// result is 2n characters. Callers: refresh tokens and API tokens (32),
// OAuth state (16), storage key suffixes (4).
func GenerateSecureRandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to gather entropy: %w", err)
	}
	return hex.EncodeToString(b), nil
}
