package cache

import (
	"context"
	"testing"

	"github.com/anoixa/image-forge/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHelper(t *testing.T) *Helper {
	t.Helper()
	cache, err := NewRistrettoCache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return NewHelper(cache, 60)
}

func TestHelper_RecordRoundTrip(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	record := &models.Image{
		Identifier:   "img-1",
		OriginalName: "photo.png",
		StorageKey:   "images/2026/09/01/img-1.png",
		MimeType:     "image/png",
		FileSize:     1234,
		UserID:       7,
	}
	record.ID = 42

	require.NoError(t, helper.CacheRecord(ctx, record))

	got, err := helper.GetCachedRecord(ctx, record.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, record.Identifier, got.Identifier)
	assert.Equal(t, record.StorageKey, got.StorageKey)
	assert.Equal(t, record.MimeType, got.MimeType)
	assert.Equal(t, record.FileSize, got.FileSize)
	assert.Equal(t, record.UserID, got.UserID)
	assert.Equal(t, record.ID, got.ID)
}

func TestHelper_MissAndInvalidate(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	_, err := helper.GetCachedRecord(ctx, "images/never-cached.png")
	assert.True(t, IsCacheMiss(err))

	record := &models.Image{StorageKey: "images/x.png", UserID: 1}
	require.NoError(t, helper.CacheRecord(ctx, record))
	require.NoError(t, helper.DeleteCachedRecord(ctx, record.StorageKey))

	_, err = helper.GetCachedRecord(ctx, record.StorageKey)
	assert.True(t, IsCacheMiss(err))
}

func TestHelper_NilSafety(t *testing.T) {
	var helper *Helper
	ctx := context.Background()

	assert.NoError(t, helper.CacheRecord(ctx, &models.Image{StorageKey: "x"}))
	_, err := helper.GetCachedRecord(ctx, "x")
	assert.True(t, IsCacheMiss(err))
	assert.NoError(t, helper.DeleteCachedRecord(ctx, "x"))
	assert.NoError(t, helper.Close())
}
