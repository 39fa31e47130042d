package images

import (
	"strconv"

	"github.com/anoixa/image-forge/api/common"
	"github.com/anoixa/image-forge/api/middleware"
	"github.com/anoixa/image-forge/utils"
	"github.com/gin-gonic/gin"
)

// ListImages 分页列出调用方的图片
func (h *Handler) ListImages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	userID := c.GetUint(middleware.ContextUserIDKey)
	records, total, err := h.service.ListImages(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, gin.H{
			"identifier": record.Identifier,
			"filename":   record.OriginalName,
			"file_path":  record.StorageKey,
			"file_size":  record.FileSize,
			"mime_type":  record.MimeType,
			"created_at": record.CreatedAt,
			"url":        utils.BuildFileURL(record.StorageKey),
		})
	}

	common.RespondSuccess(c, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"items":     items,
	})
}
