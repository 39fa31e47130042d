package utils

import (
	"fmt"

	"github.com/anoixa/image-forge/config"
)

// BuildFileURL 根据存储键生成取回 URL
// URL 始终由配置推导，不作为独立权威数据存储。
func BuildFileURL(storageKey string) string {
	cfg := config.Get()
	return fmt.Sprintf("%s/files/%s", cfg.BaseURL(), storageKey)
}
