// Package security provides secure random generation utilities
package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// NewGuestIdentity produces a probabilistically-unique guest id from a
// millisecond timestamp plus a random suffix, and a human-readable label
// from the last four digits of that timestamp. There is no collision
// guarantee; a guest identity lives on a single device.
func NewGuestIdentity() (id, displayName string) {
	ts := time.Now().UnixMilli()
	tsStr := fmt.Sprintf("%d", ts)
	displayName = "Guest " + tsStr[len(tsStr)-4:]

	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		// Degrade to timestamp-only; still unique enough per device.
		return "guest-" + tsStr, displayName
	}
	return fmt.Sprintf("guest-%s-%06d", tsStr, n.Int64()), displayName
}

// GenerateSecureToken generates a cryptographically secure random token suitable for URLs.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateSecureKey creates a cryptographically secure random key and returns it as a hex string.
// This is ideal for generating JWT and AES secrets.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2) // Each byte becomes two hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
