package cryptoutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndCompare(t *testing.T) {
	hash, err := GenerateFromPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePasswordAndHash("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = ComparePasswordAndHash("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestGenerate_SaltsDiffer(t *testing.T) {
	first, err := GenerateFromPassword("same password")
	require.NoError(t, err)
	second, err := GenerateFromPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCompare_MalformedHash(t *testing.T) {
	_, err := ComparePasswordAndHash("whatever", "not-a-hash")
	assert.Error(t, err)

	_, err = ComparePasswordAndHash("whatever", "$argon2id$v=19$m=65536,t=1,p=4$bad")
	assert.Error(t, err)
}
