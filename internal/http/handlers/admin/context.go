package admin

import (
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.admin_id_invalid", "error.context_type_invalid")
}

func getPrincipal(c *gin.Context) (service.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

func isSuperAdmin(c *gin.Context) bool {
	value, exists := c.Get("admin_is_super")
	if !exists {
		return false
	}
	flag, ok := value.(bool)
	return ok && flag
}
