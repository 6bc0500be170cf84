package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Every stored credential is derived with exactly these parameters.
const (
	PasswordIterations = 100000
	PasswordSaltBytes  = 16
	PasswordKeyBytes   = 64
)

// HashPassword derives a PBKDF2-HMAC-SHA256 hash under a fresh random salt.
// Both values are returned hex encoded.
func HashPassword(password string) (hash, salt string, err error) {
	saltBytes := make([]byte, PasswordSaltBytes)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	derived := derive(password, saltBytes)
	return hex.EncodeToString(derived), hex.EncodeToString(saltBytes), nil
}

// VerifyPassword recomputes the hash under saltHex and compares it with
// expectedHashHex in constant time. Malformed input yields false.
func VerifyPassword(password, saltHex, expectedHashHex string) bool {
	if saltHex == "" || expectedHashHex == "" {
		return false
	}
	saltBytes, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	actual := hex.EncodeToString(derive(password, saltBytes))
	return ConstantTimeEqual(actual, expectedHashHex)
}

// ConstantTimeEqual compares two strings with an XOR accumulator so the
// running time does not depend on where the first difference is.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

func derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PasswordIterations, PasswordKeyBytes, sha256.New)
}
