package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func TestResolveAnonymous(t *testing.T) {
	resolver := NewResolver(testSecret)

	user, err := resolver.Resolve("", "  alice  ")
	require.NoError(t, err)
	assert.Empty(t, user.Id)
	assert.Equal(t, "alice", user.DisplayName)

	user, err = resolver.Resolve("", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", user.DisplayName)
}

func TestResolveToken(t *testing.T) {
	resolver := NewResolver(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id":      "u1",
		"display_name": "alice",
		"avatar_url":   "https://example.com/a.png",
		"exp":          time.Now().Add(time.Hour).Unix(),
	})

	user, err := resolver.Resolve(token, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Id)
	assert.Equal(t, "alice", user.DisplayName)
	assert.Equal(t, "https://example.com/a.png", user.AvatarUrl)
}

func TestResolveTokenMissingUserId(t *testing.T) {
	resolver := NewResolver(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{"display_name": "alice"})

	_, err := resolver.Resolve(token, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveTokenDefaultsDisplayName(t *testing.T) {
	resolver := NewResolver(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{"user_id": "u1"})

	user, err := resolver.Resolve(token, "")
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", user.DisplayName)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	resolver := NewResolver(testSecret)

	_, err := resolver.Resolve("not-a-token", "fallback")
	assert.ErrorIs(t, err, ErrUnauthenticated, "a present but invalid token must not fall back to anonymous")

	wrongSecret := signToken(t, "other-secret", jwt.MapClaims{"user_id": "u1"})
	_, err = resolver.Resolve(wrongSecret, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	expired := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	_, err = resolver.Resolve(expired, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
