package models

import "gorm.io/gorm"

// Image 图片元数据记录
// Identifier 是对外暴露的不透明 ID，StorageKey 是对象存储中的键。
// 两者在创建后不可变；变换永远产生新记录，不会原地改写字节。
type Image struct {
	gorm.Model
	Identifier   string `gorm:"uniqueIndex:idx_identifier;not null"`
	OriginalName string `gorm:"not null"`
	StorageKey   string `gorm:"uniqueIndex:idx_storage_key;not null"`
	MimeType     string `gorm:"not null"`
	FileSize     int64  `gorm:"not null"`

	UserID uint `gorm:"index:idx_user_id;not null"`
	User   User `gorm:"foreignKey:UserID"`
}
