package images

import (
	"github.com/anoixa/image-forge/database/models"
	"gorm.io/gorm"
)

// RepositoryInterface 图片仓库接口
type RepositoryInterface interface {
	SaveImage(image *models.Image) error
	GetImageByIdentifierAndUser(identifier string, userID uint) (*models.Image, error)
	GetImageByStorageKeyAndUser(storageKey string, userID uint) (*models.Image, error)
	GetImagesByStorageKeysAndUser(storageKeys []string, userID uint) ([]*models.Image, error)
	DeleteImageByStorageKeyAndUser(storageKey string, userID uint) error
	ListImagesByUser(userID uint, page, pageSize int) ([]*models.Image, int64, error)
}

// Repository 图片仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveImage 保存图片记录
func (r *Repository) SaveImage(image *models.Image) error {
	return r.db.Create(image).Error
}

// GetImageByIdentifierAndUser 通过标识符和用户ID获取图片
// 存在性和归属作为同一个谓词检查，不向非属主泄露存在性。
func (r *Repository) GetImageByIdentifierAndUser(identifier string, userID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Where("identifier = ? AND user_id = ?", identifier, userID).First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetImageByStorageKeyAndUser 通过存储键和用户ID获取图片
func (r *Repository) GetImageByStorageKeyAndUser(storageKey string, userID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Where("storage_key = ? AND user_id = ?", storageKey, userID).First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetImagesByStorageKeysAndUser 批量查询用户的图片（IN 语句，避免 N+1 查询）
func (r *Repository) GetImagesByStorageKeysAndUser(storageKeys []string, userID uint) ([]*models.Image, error) {
	if len(storageKeys) == 0 {
		return []*models.Image{}, nil
	}

	var images []*models.Image
	err := r.db.Where("storage_key IN ? AND user_id = ?", storageKeys, userID).Find(&images).Error
	return images, err
}

// DeleteImageByStorageKeyAndUser 根据存储键和用户ID删除图片记录
func (r *Repository) DeleteImageByStorageKeyAndUser(storageKey string, userID uint) error {
	if storageKey == "" {
		return gorm.ErrRecordNotFound
	}

	result := r.db.Where("storage_key = ? AND user_id = ?", storageKey, userID).Delete(&models.Image{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListImagesByUser 获取用户图片列表
func (r *Repository) ListImagesByUser(userID uint, page, pageSize int) ([]*models.Image, int64, error) {
	var images []*models.Image
	var total int64

	db := r.db.Model(&models.Image{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&images).Error
	return images, total, err
}
