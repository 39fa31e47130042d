package generator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// KeyGenerator 分层存储键生成器
type KeyGenerator struct{}

// NewKeyGenerator 创建存储键生成器
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{}
}

// StorageIdentifiers 标识对
type StorageIdentifiers struct {
	Identifier string // 业务标识符（uuid，不含扩展名）
	StorageKey string // 存储键，如 images/2026/09/01/<uuid>.jpg
}

// GenerateStorageKey 根据新生成的标识符和原始文件名生成存储键
// 标识符每次调用都是新的 uuid，因此键按构造即无冲突。
func (kg *KeyGenerator) GenerateStorageKey(identifier, originalName string, uploadTime time.Time) StorageIdentifiers {
	ext := normalizeExt(filepath.Ext(originalName))
	datePath := uploadTime.Format("2006/01/02")

	return StorageIdentifiers{
		Identifier: identifier,
		StorageKey: fmt.Sprintf("images/%s/%s%s", datePath, identifier, ext),
	}
}

// normalizeExt 清理扩展名，丢弃不合法的后缀
func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" || ext == "." || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

// ExtForFormat 根据编码格式返回扩展名
func ExtForFormat(format string) string {
	if format == "" {
		return ""
	}
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}
