package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken creates a cryptographically secure random identifier.
// 16 bytes = 128 bits.
func GenerateToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
