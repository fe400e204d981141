package admin

import (
	"strings"

	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 更新用户状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 获取购物者列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateUserStatus 启用/禁用购物者
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateUserStatus(id, req.Status)
	if err != nil {
		respondAccountError(c, err)
		return
	}
	response.Success(c, user)
}
