package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoCache 进程内缓存实现
type RistrettoCache struct {
	client *ristretto.Cache
}

// NewRistrettoCache 创建新的 Ristretto 实例
func NewRistrettoCache() (*RistrettoCache, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     64 << 20, // 64 MB
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoCache{client: client}, nil
}

// Set 设置缓存项
func (r *RistrettoCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if r.client.SetWithTTL(key, value, int64(len(value)), expiration) {
		// 等待值被实际写入
		r.client.Wait()
	}
	return nil
}

// Get 获取缓存项
func (r *RistrettoCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := r.client.Get(key)
	if !found {
		return nil, ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Delete 删除缓存项
func (r *RistrettoCache) Delete(ctx context.Context, key string) error {
	r.client.Del(key)
	return nil
}

// Close 关闭缓存
func (r *RistrettoCache) Close() error {
	r.client.Close()
	return nil
}
