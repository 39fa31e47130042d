package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anoixa/image-forge/config"
	"github.com/anoixa/image-forge/database/models"
	"github.com/mitchellh/mapstructure"
)

// NewFromConfig 根据配置创建缓存提供者
func NewFromConfig(cfg *config.Config) (Cache, error) {
	switch cfg.CacheType {
	case "redis":
		return NewRedisCache(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
	case "memory", "":
		return NewRistrettoCache()
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.CacheType)
	}
}

// Helper 图片记录缓存助手
// 以存储键为缓存键缓存元数据行，删除图片时必须失效。
type Helper struct {
	cache Cache
	ttl   time.Duration
}

// NewHelper 创建缓存助手
func NewHelper(cache Cache, ttlSeconds int) *Helper {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &Helper{
		cache: cache,
		ttl:   time.Duration(ttlSeconds) * time.Second,
	}
}

func recordKey(storageKey string) string {
	return "record:" + storageKey
}

// CacheRecord 缓存图片记录
func (h *Helper) CacheRecord(ctx context.Context, image *models.Image) error {
	if h == nil || h.cache == nil {
		return nil
	}

	data, err := json.Marshal(image)
	if err != nil {
		return fmt.Errorf("failed to marshal image record: %w", err)
	}
	return h.cache.Set(ctx, recordKey(image.StorageKey), data, h.ttl)
}

// GetCachedRecord 读取缓存的图片记录
// 缓存层只存字节，经由通用 map 解码回模型，避免字段漂移时 panic。
func (h *Helper) GetCachedRecord(ctx context.Context, storageKey string) (*models.Image, error) {
	if h == nil || h.cache == nil {
		return nil, ErrCacheMiss
	}

	data, err := h.cache.Get(ctx, recordKey(storageKey))
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("corrupt cached record for '%s': %w", storageKey, err)
	}

	var image models.Image
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &image,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode cached record for '%s': %w", storageKey, err)
	}

	return &image, nil
}

// DeleteCachedRecord 删除缓存的图片记录
func (h *Helper) DeleteCachedRecord(ctx context.Context, storageKey string) error {
	if h == nil || h.cache == nil {
		return nil
	}
	return h.cache.Delete(ctx, recordKey(storageKey))
}

// Close 关闭底层缓存
func (h *Helper) Close() error {
	if h == nil || h.cache == nil {
		return nil
	}
	return h.cache.Close()
}
