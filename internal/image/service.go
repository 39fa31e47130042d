package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/image-forge/cache"
	"github.com/anoixa/image-forge/database/models"
	"github.com/anoixa/image-forge/database/repo/accounts"
	"github.com/anoixa/image-forge/database/repo/images"
	"github.com/anoixa/image-forge/internal/transform"
	"github.com/anoixa/image-forge/storage"
	"github.com/anoixa/image-forge/utils/generator"
	"github.com/anoixa/image-forge/utils/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// UploadInput 一次上传的输入
type UploadInput struct {
	Data         []byte
	OriginalName string
	MimeType     string
}

// BatchItemResult 批量 get/delete 的单项结果
// 每个输入恰好对应一个结果项，顺序与输入一致。
type BatchItemResult struct {
	Status   string `json:"status"`
	FilePath string `json:"filePath"`
	Data     string `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	batchStatusOK     = "ok"
	batchStatusFailed = "failed"
)

// Service 图片编排服务
// 协调所有权校验、内容存储、变换流水线和元数据仓库。
type Service struct {
	repo   images.RepositoryInterface
	users  accounts.RepositoryInterface
	store  storage.Provider
	engine *transform.Engine
	cache  *cache.Helper
	keygen *generator.KeyGenerator
}

// NewService 创建编排服务
func NewService(
	repo images.RepositoryInterface,
	users accounts.RepositoryInterface,
	store storage.Provider,
	engine *transform.Engine,
	cacheHelper *cache.Helper,
) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		store:  store,
		engine: engine,
		cache:  cacheHelper,
		keygen: generator.NewKeyGenerator(),
	}
}

// AddImage 把一份字节内容作为全新图片入库
// 先写 blob 再写记录；记录写失败时补偿删除 blob，补偿也失败则上报不一致。
func (s *Service) AddImage(ctx context.Context, ownerID uint, in UploadInput) (*models.Image, error) {
	exists, err := s.users.Exists(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}
	if !exists {
		return nil, ErrNotFoundOrForbidden
	}

	if len(in.Data) == 0 {
		return nil, errors.New("file content is required")
	}

	mimeType := in.MimeType
	if ok, detected := validator.IsImageBytes(in.Data); !ok {
		return nil, errors.New("the uploaded file type is not supported")
	} else if mimeType == "" {
		mimeType = detected
	}

	// 每次调用生成新 uuid，标识符和存储键按构造即无冲突
	identifier := uuid.NewString()
	ids := s.keygen.GenerateStorageKey(identifier, in.OriginalName, time.Now())

	if err := s.store.SaveWithContext(ctx, ids.StorageKey, bytes.NewReader(in.Data)); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	record := &models.Image{
		Identifier:   identifier,
		OriginalName: in.OriginalName,
		StorageKey:   ids.StorageKey,
		MimeType:     mimeType,
		FileSize:     int64(len(in.Data)),
		UserID:       ownerID,
	}

	if err := s.repo.SaveImage(record); err != nil {
		// blob 已写入，补偿删除避免产生孤儿对象
		if delErr := s.store.DeleteWithContext(ctx, ids.StorageKey); delErr != nil {
			return nil, inconsistency("record create (orphan blob left behind)", ids.StorageKey,
				fmt.Errorf("create: %v, compensating delete: %w", err, delErr))
		}
		return nil, fmt.Errorf("failed to save image metadata: %w", err)
	}

	if err := s.users.AppendImageID(ownerID, record.ID); err != nil {
		return nil, inconsistency("owner index append", ids.StorageKey, err)
	}

	go s.warmCache(record)

	return record, nil
}

// Transform 对已有图片应用变换流水线，结果作为全新图片入库
// 源记录和源字节永远不被改动。
func (s *Service) Transform(ctx context.Context, identifier string, ownerID uint, d transform.DirectiveSet) (*models.Image, error) {
	record, err := s.repo.GetImageByIdentifierAndUser(identifier, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("failed to resolve image: %w", err)
	}

	src, err := s.fetchBytes(ctx, record.StorageKey)
	if err != nil {
		return nil, err
	}

	out, format, err := s.engine.Apply(src, d)
	if err != nil {
		// 引擎错误（InvalidDirective / Processing）原样上抛
		return nil, err
	}

	base := strings.TrimSuffix(record.OriginalName, filepath.Ext(record.OriginalName))
	newName := fmt.Sprintf("transformed-%s%s", base, generator.ExtForFormat(format))

	return s.AddImage(ctx, ownerID, UploadInput{
		Data:         out,
		OriginalName: newName,
		MimeType:     "image/" + format,
	})
}

// GetFile 取回文件内容，编码为自描述的 data URI
func (s *Service) GetFile(ctx context.Context, storageKey string, ownerID uint) (string, error) {
	record, err := s.resolveByStorageKey(ctx, storageKey, ownerID)
	if err != nil {
		return "", err
	}

	data, err := s.fetchBytes(ctx, record.StorageKey)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("data:%s;base64,%s", record.MimeType, base64.StdEncoding.EncodeToString(data)), nil
}

// DeleteFile 删除文件：blob、记录、属主索引依次清理
// 任何子步骤失败都作为错误浮出，不把部分删除报告成成功。
func (s *Service) DeleteFile(ctx context.Context, storageKey string, ownerID uint) (*models.Image, error) {
	record, err := s.repo.GetImageByStorageKeyAndUser(storageKey, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("failed to resolve image: %w", err)
	}

	if err := s.store.DeleteWithContext(ctx, storageKey); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// 记录还在而 blob 已经不在：这是数据丢失，不能装作删除成功
			return nil, inconsistency("blob delete (blob already missing)", storageKey, err)
		}
		return nil, fmt.Errorf("failed to delete stored object: %w", err)
	}

	if err := s.repo.DeleteImageByStorageKeyAndUser(storageKey, ownerID); err != nil {
		return nil, inconsistency("record delete (blob already removed)", storageKey, err)
	}

	if err := s.users.RemoveImageID(ownerID, record.ID); err != nil {
		return nil, inconsistency("owner index remove", storageKey, err)
	}

	if err := s.cache.DeleteCachedRecord(ctx, storageKey); err != nil {
		log.Printf("Failed to invalidate cache for '%s': %v", storageKey, err)
	}

	return record, nil
}

// UploadMany 批量上传：顺序处理，任何一项失败则整批失败
// 标识符逐个生成，顺序处理保证前一项成功才尝试下一项。
func (s *Service) UploadMany(ctx context.Context, ownerID uint, inputs []UploadInput) ([]string, error) {
	if len(inputs) == 0 {
		return nil, errors.New("at least one file must be provided")
	}

	records := make([]*models.Image, 0, len(inputs))
	for _, in := range inputs {
		record, err := s.AddImage(ctx, ownerID, in)
		if err != nil {
			return nil, fmt.Errorf("batch upload failed for '%s': %w", in.OriginalName, err)
		}
		records = append(records, record)
	}

	// 全部入库后并发取回 data URI，按输入顺序合并
	results := make([]string, len(records))
	g, gctx := errgroup.WithContext(ctx)
	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			uri, err := s.GetFile(gctx, record.StorageKey, ownerID)
			if err != nil {
				return fmt.Errorf("failed to retrieve uploaded file '%s': %w", record.StorageKey, err)
			}
			results[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// GetMany 批量取回：尽力而为，单项失败降级为结构化失败项
func (s *Service) GetMany(ctx context.Context, storageKeys []string, ownerID uint) ([]BatchItemResult, error) {
	if err := s.checkBatchOwnership(storageKeys, ownerID); err != nil {
		return nil, err
	}

	results := make([]BatchItemResult, len(storageKeys))
	g := new(errgroup.Group)
	for i, key := range storageKeys {
		i, key := i, key
		g.Go(func() error {
			uri, err := s.GetFile(ctx, key, ownerID)
			if err != nil {
				results[i] = BatchItemResult{Status: batchStatusFailed, FilePath: key, Error: err.Error()}
				return nil
			}
			results[i] = BatchItemResult{Status: batchStatusOK, FilePath: key, Data: uri}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// DeleteMany 批量删除：尽力而为，单项失败降级为结构化失败项
func (s *Service) DeleteMany(ctx context.Context, storageKeys []string, ownerID uint) ([]BatchItemResult, error) {
	if err := s.checkBatchOwnership(storageKeys, ownerID); err != nil {
		return nil, err
	}

	results := make([]BatchItemResult, len(storageKeys))
	g := new(errgroup.Group)
	for i, key := range storageKeys {
		i, key := i, key
		g.Go(func() error {
			if _, err := s.DeleteFile(ctx, key, ownerID); err != nil {
				results[i] = BatchItemResult{Status: batchStatusFailed, FilePath: key, Error: err.Error()}
				return nil
			}
			results[i] = BatchItemResult{Status: batchStatusOK, FilePath: key}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// ListImages 分页列出调用方的图片记录
func (s *Service) ListImages(ctx context.Context, ownerID uint, page, pageSize int) ([]*models.Image, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := s.repo.ListImagesByUser(ownerID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list images: %w", err)
	}
	return records, total, nil
}

// checkBatchOwnership 批量操作的前置检查：至少要有一个键解析为调用方的记录
func (s *Service) checkBatchOwnership(storageKeys []string, ownerID uint) error {
	if len(storageKeys) == 0 {
		return errors.New("at least one file must be provided")
	}

	owned, err := s.repo.GetImagesByStorageKeysAndUser(storageKeys, ownerID)
	if err != nil {
		return fmt.Errorf("failed to resolve batch ownership: %w", err)
	}
	if len(owned) == 0 {
		return ErrNotFoundOrForbidden
	}
	return nil
}

// resolveByStorageKey 解析存储键为记录，优先走缓存
// 缓存命中后仍要校验归属，缓存键不含属主。
func (s *Service) resolveByStorageKey(ctx context.Context, storageKey string, ownerID uint) (*models.Image, error) {
	if record, err := s.cache.GetCachedRecord(ctx, storageKey); err == nil {
		if record.UserID != ownerID {
			return nil, ErrNotFoundOrForbidden
		}
		return record, nil
	}

	record, err := s.repo.GetImageByStorageKeyAndUser(storageKey, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("failed to resolve image: %w", err)
	}

	go s.warmCache(record)
	return record, nil
}

// fetchBytes 从内容存储读出全部字节
func (s *Service) fetchBytes(ctx context.Context, storageKey string) ([]byte, error) {
	reader, err := s.store.GetWithContext(ctx, storageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, inconsistency("blob read (record exists, blob missing)", storageKey, err)
		}
		return nil, fmt.Errorf("failed to read stored object: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored object '%s': %w", storageKey, err)
	}
	return data, nil
}

// warmCache 预热缓存，只记录日志
func (s *Service) warmCache(record *models.Image) {
	if err := s.cache.CacheRecord(context.Background(), record); err != nil {
		log.Printf("Failed to cache record for '%s': %v", record.StorageKey, err)
	}
}
