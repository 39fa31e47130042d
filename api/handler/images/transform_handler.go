package images

import (
	"net/http"

	"github.com/anoixa/image-forge/api/common"
	"github.com/anoixa/image-forge/api/middleware"
	"github.com/anoixa/image-forge/internal/transform"
	"github.com/anoixa/image-forge/utils"
	"github.com/gin-gonic/gin"
)

// TransformImage 对已有图片应用变换流水线
// 源图片保持不变，变换结果作为一张全新图片入库并返回其元数据。
func (h *Handler) TransformImage(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Image identifier is required")
		return
	}

	var directives transform.DirectiveSet
	if err := c.ShouldBindJSON(&directives); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid transformation request body: "+err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	record, err := h.service.Transform(c.Request.Context(), identifier, userID, directives)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"identifier": record.Identifier,
		"filename":   record.OriginalName,
		"file_path":  record.StorageKey,
		"file_size":  record.FileSize,
		"mime_type":  record.MimeType,
		"url":        utils.BuildFileURL(record.StorageKey),
	})
}
