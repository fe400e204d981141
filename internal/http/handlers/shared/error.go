package shared

import (
	"errors"

	"github.com/sixpine/internal/http/response"
	"github.com/sixpine/internal/i18n"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// localizedError 携带 i18n 键与参数的业务错误（如密码策略）。
type localizedError interface {
	Key() string
	Args() []interface{}
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondMappedError 按规则表翻译业务错误；未命中规则时按兜底码记录原始错误。
// 响应 data 中始终带 error_kind，库存与状态流转错误额外带 details。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	locale := i18n.ResolveLocale(c)
	data := ErrorData(err)

	var localized localizedError
	if errors.As(err, &localized) {
		response.ErrorWithData(c, response.CodeBadRequest, i18n.Sprintf(locale, localized.Key(), localized.Args()...), data)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			response.ErrorWithData(c, rule.Code, i18n.T(locale, rule.Key), data)
			return
		}
	}
	appErr := response.WrapError(fallbackCode, i18n.T(locale, fallbackKey), err)
	RequestLog(c).Errorw("handler_error",
		"code", appErr.Code,
		"error_kind", service.ErrorKind(err),
		"error", err,
	)
	response.ErrorWithData(c, appErr.Code, appErr.Message, data)
}

// ErrorData 构造错误响应的 data 部分。
func ErrorData(err error) gin.H {
	data := gin.H{"error_kind": service.ErrorKind(err)}
	var stockErr *service.StockConflictError
	if errors.As(err, &stockErr) {
		data["details"] = stockErr.Conflicts
		return data
	}
	var transitionErr *service.TransitionError
	if errors.As(err, &transitionErr) {
		data["details"] = transitionErr
	}
	return data
}

// ConcatMappedErrors 合并多组映射规则。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
