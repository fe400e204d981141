package admin

import (
	"github.com/sixpine/internal/authz"
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError = handlershared.MappedError

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

var notFoundErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrVariantNotFound, Code: response.CodeNotFound, Key: "error.variant_not_found"},
	{Target: service.ErrDiscountNotFound, Code: response.CodeNotFound, Key: "error.discount_not_found"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}

var orderStatusErrorRules = []mappedHandlerError{
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrInvalidStatus, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrInvalidTransition, Code: response.CodeBadRequest, Key: "error.invalid_transition"},
	{Target: service.ErrNoOpTransition, Code: response.CodeBadRequest, Key: "error.noop_transition"},
	{Target: service.ErrConcurrencyConflict, Code: response.CodeConflict, Key: "error.concurrency_conflict"},
	{Target: service.ErrNoteRequired, Code: response.CodeBadRequest, Key: "error.note_required"},
}

var catalogErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidProduct, Code: response.CodeBadRequest, Key: "error.product_invalid"},
	{Target: service.ErrInvalidVariant, Code: response.CodeBadRequest, Key: "error.variant_invalid_input"},
	{Target: service.ErrSlugExists, Code: response.CodeBadRequest, Key: "error.slug_exists"},
	{Target: service.ErrSKUExists, Code: response.CodeBadRequest, Key: "error.sku_exists"},
	{Target: service.ErrInvalidDiscount, Code: response.CodeBadRequest, Key: "error.discount_invalid"},
	{Target: service.ErrInvalidPricingSetting, Code: response.CodeBadRequest, Key: "error.pricing_setting_invalid"},
}

var accountErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: service.ErrInvalidUserStatus, Code: response.CodeBadRequest, Key: "error.user_status_invalid"},
	{Target: authz.ErrRoleNotFound, Code: response.CodeBadRequest, Key: "error.role_invalid"},
}

func respondOrderStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(orderStatusErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(catalogErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondAccountError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(accountErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}
