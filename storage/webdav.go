package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anoixa/image-forge/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebdavEndpoint == "" {
		return nil, fmt.Errorf("webdav endpoint is required")
	}

	rootPath := strings.Trim(cfg.WebdavBasePath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebdavEndpoint, cfg.WebdavUsername, cfg.WebdavPassword)

	// 验证连接
	if _, err := client.ReadDir("/"); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
	}, nil
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + key
	}
	return "/" + key
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content for '%s': %w", key, err)
	}

	fullPath := s.fullPath(key)
	if err := s.client.Write(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write '%s' to webdav: %w", fullPath, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := s.fullPath(key)

	data, err := s.client.Read(fullPath)
	if err != nil {
		if isWebDAVNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read '%s' from webdav: %w", fullPath, err)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, key string) error {
	fullPath := s.fullPath(key)

	if _, err := s.client.Stat(fullPath); err != nil {
		if isWebDAVNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to stat '%s' on webdav: %w", fullPath, err)
	}

	if err := s.client.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete '%s' from webdav: %w", fullPath, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := s.client.Stat(s.fullPath(key)); err != nil {
		if isWebDAVNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	if _, err := s.client.ReadDir("/"); err != nil {
		return fmt.Errorf("webdav health check failed: %w", err)
	}
	return nil
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}

func isWebDAVNotFound(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "404")
}
