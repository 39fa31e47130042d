package images

import (
	"fmt"
	"testing"

	"github.com/anoixa/image-forge/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// 自动迁移
	err = db.AutoMigrate(&models.User{}, &models.Image{}, &models.UserImage{})
	require.NoError(t, err)

	return db
}

func seedImage(t *testing.T, repo *Repository, identifier, storageKey string, userID uint) *models.Image {
	t.Helper()
	image := &models.Image{
		Identifier:   identifier,
		OriginalName: identifier + ".png",
		StorageKey:   storageKey,
		MimeType:     "image/png",
		FileSize:     128,
		UserID:       userID,
	}
	require.NoError(t, repo.SaveImage(image))
	return image
}

func TestSaveAndGetImage(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	saved := seedImage(t, repo, "img-1", "images/2026/09/01/img-1.png", 1)
	assert.NotZero(t, saved.ID)

	got, err := repo.GetImageByIdentifierAndUser("img-1", 1)
	require.NoError(t, err)
	assert.Equal(t, saved.StorageKey, got.StorageKey)

	got, err = repo.GetImageByStorageKeyAndUser(saved.StorageKey, 1)
	require.NoError(t, err)
	assert.Equal(t, "img-1", got.Identifier)
}

func TestGetImage_WrongUser(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	saved := seedImage(t, repo, "img-1", "images/2026/09/01/img-1.png", 1)

	// 归属和存在性是同一个谓词
	_, err := repo.GetImageByIdentifierAndUser("img-1", 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetImageByStorageKeyAndUser(saved.StorageKey, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetImagesByStorageKeysAndUser(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	a := seedImage(t, repo, "img-a", "images/a.png", 1)
	seedImage(t, repo, "img-b", "images/b.png", 2)
	c := seedImage(t, repo, "img-c", "images/c.png", 1)

	images, err := repo.GetImagesByStorageKeysAndUser([]string{a.StorageKey, "images/b.png", c.StorageKey, "nope"}, 1)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	images, err = repo.GetImagesByStorageKeysAndUser(nil, 1)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestDeleteImageByStorageKeyAndUser(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	saved := seedImage(t, repo, "img-1", "images/2026/09/01/img-1.png", 1)

	// 非属主删除不生效
	err := repo.DeleteImageByStorageKeyAndUser(saved.StorageKey, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteImageByStorageKeyAndUser(saved.StorageKey, 1)
	require.NoError(t, err)

	_, err = repo.GetImageByStorageKeyAndUser(saved.StorageKey, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 重复删除
	err = repo.DeleteImageByStorageKeyAndUser(saved.StorageKey, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteImageByStorageKeyAndUser("", 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListImagesByUser(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seedImage(t, repo, "img-a", "images/a.png", 1)
	seedImage(t, repo, "img-b", "images/b.png", 1)
	seedImage(t, repo, "img-c", "images/c.png", 2)

	images, total, err := repo.ListImagesByUser(1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, images, 2)
}
