package images

import (
	imagesvc "github.com/anoixa/image-forge/internal/image"
)

// Handler 图片相关接口的处理器
type Handler struct {
	service         *imagesvc.Service
	maxUploadMB     int
	maxBatchTotalMB int
}

// NewHandler 创建图片处理器
func NewHandler(service *imagesvc.Service, maxUploadMB, maxBatchTotalMB int) *Handler {
	return &Handler{
		service:         service,
		maxUploadMB:     maxUploadMB,
		maxBatchTotalMB: maxBatchTotalMB,
	}
}
