package common

import (
	"errors"
	"net/http"

	imagesvc "github.com/anoixa/image-forge/internal/image"
	"github.com/anoixa/image-forge/internal/transform"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status string      `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Status: status,
		Msg:    message,
		Data:   data,
	})
}

// RespondSuccess sends a success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage sends a success response with message and data.
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, "success", message, data)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// RespondServiceError 将服务层错误映射为 HTTP 状态码
// 未找到与无权访问统一返回 404，避免泄露资源存在性。
func RespondServiceError(c *gin.Context, err error) {
	var directiveErr *transform.InvalidDirectiveError
	var processingErr *transform.ProcessingError
	var inconsistencyErr *imagesvc.StorageInconsistencyError

	switch {
	case errors.Is(err, imagesvc.ErrNotFoundOrForbidden):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &directiveErr):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &processingErr):
		RespondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &inconsistencyErr):
		RespondError(c, http.StatusInternalServerError, err.Error())
	default:
		RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
