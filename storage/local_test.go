package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := "images/2026/09/01/test.png"
	content := []byte("fake image bytes")

	require.NoError(t, store.SaveWithContext(ctx, key, bytes.NewReader(content)))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	reader, err := store.GetWithContext(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, store.DeleteWithContext(ctx, key))
	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_NotFound(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.GetWithContext(ctx, "images/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteWithContext(ctx, "images/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	err = store.SaveWithContext(ctx, "../escape.png", bytes.NewReader([]byte("x")))
	assert.Error(t, err)

	_, err = store.GetWithContext(ctx, "images/../../etc/passwd")
	assert.Error(t, err)

	err = store.DeleteWithContext(ctx, "")
	assert.Error(t, err)
}

func TestLocalStorage_Health(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Health(context.Background()))
	assert.Equal(t, "local", store.Name())
}
