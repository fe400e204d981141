package admin

import (
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/logger"

	"github.com/gin-gonic/gin"
)

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前管理员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": isSuperAdmin(c),
		"roles":    roles,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondAccountError(c, err)
		return
	}
	response.Success(c, policies)
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	targetID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AdminRepo.GetByID(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(targetID, req.Roles); err != nil {
		respondAccountError(c, err)
		return
	}
	logger.Infow("admin_roles_updated", "operator_id", operatorID, "admin_id", targetID, "roles", req.Roles)
	roles, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"admin_id": targetID, "roles": roles})
}
