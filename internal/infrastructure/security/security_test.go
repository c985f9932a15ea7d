package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef"

func TestNewGuestIdentityFormat(t *testing.T) {
	id, displayName := NewGuestIdentity()

	require.True(t, strings.HasPrefix(id, "guest-"))
	parts := strings.Split(id, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 6, "random suffix is six digits")

	require.True(t, strings.HasPrefix(displayName, "Guest "))
	suffix := strings.TrimPrefix(displayName, "Guest ")
	assert.Len(t, suffix, 4)
	assert.True(t, strings.HasSuffix(parts[1], suffix), "display name comes from the timestamp, not the random suffix")
}

func TestNewGuestIdentityIsDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _ := NewGuestIdentity()
		assert.False(t, seen[id], "duplicate guest id %s", id)
		seen[id] = true
	}
}

func TestSessionTokenRoundtrip(t *testing.T) {
	token, err := GenerateSessionToken("u1", "a@b.c", false, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)

	sc := SessionFromClaims(claims)
	require.NotNil(t, sc)
	assert.Equal(t, "u1", sc.UserID)
	assert.Equal(t, "a@b.c", sc.Email)
	assert.False(t, sc.Guest)
}

func TestSessionTokenGuestFlag(t *testing.T) {
	token, err := GenerateSessionToken("guest-123-000001", "", true, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)

	sc := SessionFromClaims(claims)
	require.NotNil(t, sc)
	assert.True(t, sc.Guest)
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("u1", "", false, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestShareTokenRoundtrip(t *testing.T) {
	token, err := MintShareToken("u1", "note-42", testAESKey)
	require.NoError(t, err)

	userID, noteID, err := ResolveShareToken(token, testAESKey)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "note-42", noteID)
}

func TestShareTokenIsPathSafe(t *testing.T) {
	// Tokens travel as URL path segments.
	for i := 0; i < 20; i++ {
		token, err := MintShareToken("guest-1756500000000-123456", "01J8ZXW3N7V9", testAESKey)
		require.NoError(t, err)
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "=")
	}
}

func TestShareTokenRejectsTampering(t *testing.T) {
	token, err := MintShareToken("u1", "n1", testAESKey)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "zz"
	_, _, err = ResolveShareToken(tampered, testAESKey)
	assert.Error(t, err)
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	encrypted, err := Encrypt("hello", testAESKey)
	require.NoError(t, err)
	assert.NotEqual(t, "hello", encrypted)

	plain, err := Decrypt(encrypted, testAESKey)
	require.NoError(t, err)
	assert.Equal(t, "hello", plain)
}

func TestGenerateULIDIsSortableAndUnique(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
