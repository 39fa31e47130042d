package accounts

import (
	"errors"
	"log"

	"github.com/anoixa/image-forge/database/models"
	cryptoutils "github.com/anoixa/image-forge/utils/crypto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RepositoryInterface 用户仓库接口
type RepositoryInterface interface {
	Exists(userID uint) (bool, error)
	AppendImageID(userID, imageID uint) error
	RemoveImageID(userID, imageID uint) error
	ListImageIDs(userID uint) ([]uint, error)
}

// Repository 用户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID 通过ID获取用户
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists 检查用户是否存在
func (r *Repository) Exists(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

// CreateUser 创建用户，密码使用 Argon2id 哈希
func (r *Repository) CreateUser(username, password string) (*models.User, error) {
	hash, err := cryptoutils.GenerateFromPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hash,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// AppendImageID 向用户的图片索引追加一条记录
// 单条 INSERT，冲突时忽略，绝不读-改-写整个用户对象。
func (r *Repository) AppendImageID(userID, imageID uint) error {
	entry := &models.UserImage{UserID: userID, ImageID: imageID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

// RemoveImageID 从用户的图片索引移除一条记录
func (r *Repository) RemoveImageID(userID, imageID uint) error {
	return r.db.Where("user_id = ? AND image_id = ?", userID, imageID).
		Delete(&models.UserImage{}).Error
}

// ListImageIDs 列出用户索引中的图片ID
func (r *Repository) ListImageIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.UserImage{}).
		Where("user_id = ?", userID).
		Order("image_id asc").
		Pluck("image_id", &ids).Error
	return ids, err
}

// CreateDefaultAdminUser 创建默认管理员用户（首次启动）
func (r *Repository) CreateDefaultAdminUser() {
	_, err := r.GetUserByUsername("admin")
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check default admin user: %v", err)
		return
	}

	if _, err := r.CreateUser("admin", "admin"); err != nil {
		log.Printf("Failed to create default admin user: %v", err)
		return
	}
	log.Println("Created default admin user (username: admin, password: admin). Change the password immediately.")
}
