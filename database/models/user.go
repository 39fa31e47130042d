package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"`
}

// UserImage 用户侧图片索引
// 图片的 UserID 是权威归属，这张表只是用于列表的二级索引。
// 追加/移除必须是单条 SQL，避免并发下的丢失更新。
type UserImage struct {
	UserID  uint `gorm:"primaryKey;autoIncrement:false"`
	ImageID uint `gorm:"primaryKey;autoIncrement:false"`
}
