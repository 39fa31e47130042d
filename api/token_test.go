package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenInit_Validation(t *testing.T) {
	assert.Error(t, TokenInit("", "24h"), "empty secret")
	assert.Error(t, TokenInit("secret", "not-a-duration"))
	assert.NoError(t, TokenInit("secret", "24h"))
}

func TestGenerateAndParseToken(t *testing.T) {
	require.NoError(t, TokenInit("test-secret", "1h"))

	token, expiry, err := GenerateToken("alice", 7)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiry.After(time.Now()))

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "access", claims["type"])
}

func TestParse_BearerPrefixStripped(t *testing.T) {
	require.NoError(t, TokenInit("test-secret", "1h"))

	token, _, err := GenerateToken("bob", 2)
	require.NoError(t, err)

	claims, err := Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims["username"])
}

func TestParse_RejectsGarbage(t *testing.T) {
	require.NoError(t, TokenInit("test-secret", "1h"))

	_, err := Parse("not.a.jwt")
	assert.Error(t, err)
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	require.NoError(t, TokenInit("first-secret", "1h"))
	token, _, err := GenerateToken("carol", 3)
	require.NoError(t, err)

	require.NoError(t, TokenInit("second-secret", "1h"))
	_, err = Parse(token)
	assert.Error(t, err)
}
