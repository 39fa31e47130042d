package api

import (
	"errors"
	"net/http"

	"github.com/anoixa/image-forge/api/common"
	"github.com/anoixa/image-forge/database/repo/accounts"
	cryptoutils "github.com/anoixa/image-forge/utils/crypto"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LoginHandler 登录处理器
type LoginHandler struct {
	users *accounts.Repository
}

// NewLoginHandler 创建登录处理器
func NewLoginHandler(users *accounts.Repository) *LoginHandler {
	return &LoginHandler{users: users}
}

type userAuthRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
}

// LoginHandlerFunc user login
func (h *LoginHandler) LoginHandlerFunc(context *gin.Context) {
	var req userAuthRequestBody
	if err := context.ShouldBindJSON(&req); err != nil {
		common.RespondError(context, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(context, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		common.RespondError(context, http.StatusInternalServerError, "Internal server error")
		return
	}

	match, err := cryptoutils.ComparePasswordAndHash(req.Password, user.Password)
	if err != nil || !match {
		common.RespondError(context, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, expiry, err := GenerateToken(user.Username, user.ID)
	if err != nil {
		common.RespondError(context, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	common.RespondSuccessMessage(context, "Login successful", loginResponse{
		AccessToken:       "Bearer " + accessToken,
		AccessTokenExpiry: expiry.Unix(),
	})
}
