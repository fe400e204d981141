package public

import (
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getUserID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.context_type_invalid")
}

func getPrincipal(c *gin.Context) (service.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
