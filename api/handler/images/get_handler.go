package images

import (
	"net/http"

	"github.com/anoixa/image-forge/api/common"
	"github.com/anoixa/image-forge/api/middleware"
	"github.com/gin-gonic/gin"
)

// 存储键内含路径分隔符，不适合放在 URL 路径段里，统一走请求体
type fileRequestBody struct {
	FilePath string `json:"filePath" binding:"required"`
}

type filesRequestBody struct {
	FilePaths []string `json:"filePaths" binding:"required"`
}

// GetFile 取回单个文件内容，返回 data URI
func (h *Handler) GetFile(c *gin.Context) {
	var req fileRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	dataURI, err := h.service.GetFile(c.Request.Context(), req.FilePath, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"file_path": req.FilePath,
		"data":      dataURI,
	})
}

// GetFiles 批量取回文件内容
// 尽力而为：单项失败以结构化失败项返回，不影响其余项。
func (h *Handler) GetFiles(c *gin.Context) {
	var req filesRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	results, err := h.service.GetMany(c.Request.Context(), req.FilePaths, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"count":   len(results),
		"results": results,
	})
}
