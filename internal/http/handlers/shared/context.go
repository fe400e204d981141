package shared

import (
	"strconv"
	"strings"

	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// PrincipalContextKey 鉴权中间件写入操作者的上下文键
const PrincipalContextKey = "principal"

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// GetPrincipal 读取当前请求的操作者，缺失时返回 401。
func GetPrincipal(c *gin.Context) (service.Principal, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Principal{}, false
	}
	principal, ok := value.(service.Principal)
	if !ok {
		RespondError(c, response.CodeInternal, "error.context_type_invalid", nil)
		return service.Principal{}, false
	}
	return principal, true
}

// ParseUintParam 解析路径中的数字 ID，非法时返回 400。
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}

// QueryUint 读取可选的数字查询参数，非法值按 0 处理。
func QueryUint(c *gin.Context, name string) uint {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// PublicConfigCacheKey 公开配置缓存键，计价设置变更后需删除
const PublicConfigCacheKey = "public:config"

// PublicCategoriesCacheKey 公开分类缓存键，分类变更后需删除
const PublicCategoriesCacheKey = "public:categories"
