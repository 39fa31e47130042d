package image

import (
	"errors"
	"fmt"
)

// ErrNotFoundOrForbidden 图片不存在或调用方无权访问
// 两种情况刻意不可区分，避免向非属主泄露存在性。
var ErrNotFoundOrForbidden = errors.New("image not found or you do not have access to this image")

// StorageInconsistencyError 多步写入只完成了一部分
// 不做自动回滚，错误浮出水面后由运维侧对账解决；这是已知限制，不是静默失败。
type StorageInconsistencyError struct {
	Op         string
	StorageKey string
	Err        error
}

func (e *StorageInconsistencyError) Error() string {
	return fmt.Sprintf("storage inconsistency during %s for '%s': %v", e.Op, e.StorageKey, e.Err)
}

func (e *StorageInconsistencyError) Unwrap() error {
	return e.Err
}

func inconsistency(op, storageKey string, err error) error {
	return &StorageInconsistencyError{Op: op, StorageKey: storageKey, Err: err}
}
