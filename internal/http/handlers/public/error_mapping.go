package public

import (
	handlershared "github.com/sixpine/internal/http/handlers/shared"
	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError = handlershared.MappedError

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

var notFoundErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrVariantNotFound, Code: response.CodeNotFound, Key: "error.variant_not_found"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrAddressNotFound, Code: response.CodeNotFound, Key: "error.address_not_found"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}

var cartErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.invalid_quantity"},
	{Target: service.ErrOutOfStock, Code: response.CodeBadRequest, Key: "error.out_of_stock"},
	{Target: service.ErrProductNotAvailable, Code: response.CodeBadRequest, Key: "error.product_not_available"},
	{Target: service.ErrVariantRequired, Code: response.CodeBadRequest, Key: "error.variant_required"},
	{Target: service.ErrVariantInvalid, Code: response.CodeBadRequest, Key: "error.variant_invalid"},
}

var addressErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidAddress, Code: response.CodeBadRequest, Key: "error.address_invalid"},
}

var checkoutErrorRules = []mappedHandlerError{
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrNoShippingAddress, Code: response.CodeBadRequest, Key: "error.no_shipping_address"},
	{Target: service.ErrStockConflict, Code: response.CodeConflict, Key: "error.stock_conflict"},
	{Target: service.ErrCheckoutInProgress, Code: response.CodeConflict, Key: "error.checkout_in_progress"},
	{Target: service.ErrConcurrencyConflict, Code: response.CodeConflict, Key: "error.concurrency_conflict"},
	{Target: service.ErrPaymentVerificationFailed, Code: response.CodeBadRequest, Key: "error.payment_verification"},
	{Target: service.ErrInvalidPaymentMethod, Code: response.CodeBadRequest, Key: "error.payment_method_invalid"},
	{Target: service.ErrPaymentReferenceNeeded, Code: response.CodeBadRequest, Key: "error.payment_reference_needed"},
}

var orderErrorRules = []mappedHandlerError{
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrInvalidTransition, Code: response.CodeBadRequest, Key: "error.invalid_transition"},
	{Target: service.ErrNoOpTransition, Code: response.CodeBadRequest, Key: "error.noop_transition"},
	{Target: service.ErrConcurrencyConflict, Code: response.CodeConflict, Key: "error.concurrency_conflict"},
}

var userAuthErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
}

var webhookErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidSignature, Code: response.CodeUnauthorized, Key: "error.webhook_signature_invalid"},
	{Target: service.ErrInvalidWebhookPayload, Code: response.CodeBadRequest, Key: "error.webhook_payload_invalid"},
	{Target: service.ErrWebhookNotConfigured, Code: response.CodeInternal, Key: "error.webhook_not_configured"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(cartErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondAddressError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(addressErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(checkoutErrorRules, cartErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(orderErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondUserAuthError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(userAuthErrorRules, notFoundErrorRules), response.CodeInternal, "error.internal")
}

func respondWebhookError(c *gin.Context, err error) {
	respondWithMappedError(c, err, webhookErrorRules, response.CodeInternal, "error.internal")
}
