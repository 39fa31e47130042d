package images

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/anoixa/image-forge/api/common"
	"github.com/anoixa/image-forge/api/middleware"
	imagesvc "github.com/anoixa/image-forge/internal/image"
	"github.com/anoixa/image-forge/utils"
	"github.com/gin-gonic/gin"
)

// UploadImage 处理单图片上传
func (h *Handler) UploadImage(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		common.RespondError(c, http.StatusBadRequest, "At least one file is required under the 'file' or 'files' key")
		return
	}
	if len(files) > 1 {
		common.RespondError(c, http.StatusBadRequest, "Only one file is allowed for single upload")
		return
	}

	fileHeader := files[0]
	if fileHeader.Size > int64(h.maxUploadMB)<<20 {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds maximum allowed size (%d MB)", h.maxUploadMB))
		return
	}

	input, err := readUploadInput(fileHeader)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	record, err := h.service.AddImage(c.Request.Context(), userID, *input)
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

// UploadImages 处理多图片上传
// 整批要么全部成功，要么全部失败；响应携带每个文件的 data URI。
func (h *Handler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		common.RespondError(c, http.StatusBadRequest, "At least one file is required under the 'files' key")
		return
	}

	// 检查总文件大小限制
	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}
	maxTotalSize := int64(h.maxBatchTotalMB) << 20
	if totalSize > maxTotalSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Total size of all files (%.2f MB) exceeds maximum allowed (%d MB)",
				float64(totalSize)/1024/1024, h.maxBatchTotalMB))
		return
	}

	inputs := make([]imagesvc.UploadInput, 0, len(files))
	for _, fileHeader := range files {
		input, err := readUploadInput(fileHeader)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		inputs = append(inputs, *input)
	}

	userID := c.GetUint(middleware.ContextUserIDKey)
	dataURIs, err := h.service.UploadMany(c.Request.Context(), userID, inputs)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"count": len(dataURIs),
		"files": dataURIs,
	})
}

// readUploadInput 读出 multipart 文件的全部内容
func readUploadInput(fileHeader *multipart.FileHeader) (*imagesvc.UploadInput, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file '%s'", fileHeader.Filename)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file '%s'", fileHeader.Filename)
	}

	return &imagesvc.UploadInput{
		Data:         data,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
	}, nil
}
