package public

import (
	"time"

	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Locale      string `json:"locale"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserProfileUpdateRequest 修改资料请求
type UserProfileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Phone       *string `json:"phone"`
	Locale      *string `json:"locale"`
}

// UserChangePasswordRequest 修改密码请求
type UserChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserTokenResponse 登录/注册响应
type UserTokenResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Locale:      req.Locale,
	})
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, UserTokenResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, UserTokenResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateCurrentUser 修改当前用户资料
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UserProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(uid, req.DisplayName, req.Phone, req.Locale)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, user)
}

// ChangeCurrentUserPassword 修改当前用户密码
func (h *Handler) ChangeCurrentUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UserChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, nil)
}
