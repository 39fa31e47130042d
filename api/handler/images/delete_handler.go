package images

import (
	"net/http"

	"github.com/anoixa/image-forge/api/common"
	"github.com/anoixa/image-forge/api/middleware"
	"github.com/gin-gonic/gin"
)

// DeleteFile 删除单个文件
func (h *Handler) DeleteFile(c *gin.Context) {
	var req fileRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	record, err := h.service.DeleteFile(c.Request.Context(), req.FilePath, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "File deleted", gin.H{
		"identifier": record.Identifier,
		"file_path":  record.StorageKey,
	})
}

// DeleteFiles 批量删除文件
// 尽力而为：单项失败以结构化失败项返回，不影响其余项。
func (h *Handler) DeleteFiles(c *gin.Context) {
	var req filesRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	results, err := h.service.DeleteMany(c.Request.Context(), req.FilePaths, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"count":   len(results),
		"results": results,
	})
}
