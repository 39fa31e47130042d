package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateStorageKey(t *testing.T) {
	kg := NewKeyGenerator()
	uploadTime := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	ids := kg.GenerateStorageKey("abc-123", "photo.PNG", uploadTime)
	assert.Equal(t, "abc-123", ids.Identifier)
	assert.Equal(t, "images/2026/09/01/abc-123.png", ids.StorageKey)
}

func TestGenerateStorageKey_NoExtension(t *testing.T) {
	kg := NewKeyGenerator()
	uploadTime := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	ids := kg.GenerateStorageKey("xyz", "README", uploadTime)
	assert.Equal(t, "images/2026/01/02/xyz", ids.StorageKey)
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, ".jpg", normalizeExt(".JPG"))
	assert.Equal(t, "", normalizeExt(""))
	assert.Equal(t, "", normalizeExt("."))
	assert.Equal(t, "", normalizeExt("./etc"))
	assert.Equal(t, "", normalizeExt(".a\\b"))
}

func TestExtForFormat(t *testing.T) {
	assert.Equal(t, ".jpg", ExtForFormat("jpeg"))
	assert.Equal(t, ".png", ExtForFormat("png"))
	assert.Equal(t, ".webp", ExtForFormat("webp"))
	assert.Equal(t, "", ExtForFormat(""))
}
