package service

import (
	"errors"
	"fmt"
	"strings"
)

// 领域错误
var (
	ErrInvalidQuantity           = errors.New("数量必须大于 0")
	ErrOutOfStock                = errors.New("库存不足")
	ErrStockConflict             = errors.New("下单时库存已变化")
	ErrNoShippingAddress         = errors.New("缺少收货地址")
	ErrInvalidTransition         = errors.New("不允许的状态流转")
	ErrNoOpTransition            = errors.New("状态未变化")
	ErrPaymentVerificationFailed = errors.New("支付校验失败")
	ErrConcurrencyConflict       = errors.New("并发冲突，请重试")
	ErrNotFound                  = errors.New("资源不存在")
	ErrUnauthorized              = errors.New("未授权")
	ErrForbidden                 = errors.New("无权操作")
)

// 资源不存在（均可用 errors.Is(err, ErrNotFound) 判断）
var (
	ErrOrderNotFound    = fmt.Errorf("订单%w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("商品%w", ErrNotFound)
	ErrVariantNotFound  = fmt.Errorf("规格%w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("购物车行%w", ErrNotFound)
	ErrAddressNotFound  = fmt.Errorf("地址%w", ErrNotFound)
	ErrDiscountNotFound = fmt.Errorf("折扣%w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("用户%w", ErrNotFound)
	ErrAdminNotFound    = fmt.Errorf("管理员%w", ErrNotFound)
)

// 校验与业务错误
var (
	ErrProductNotAvailable    = errors.New("商品不可购买")
	ErrVariantRequired        = errors.New("请选择商品规格")
	ErrVariantInvalid         = errors.New("商品规格无效")
	ErrCartEmpty              = errors.New("购物车为空")
	ErrCheckoutInProgress     = errors.New("订单正在提交中")
	ErrInvalidPaymentMethod   = errors.New("不支持的支付方式")
	ErrPaymentReferenceNeeded = errors.New("缺少支付流水号")
	ErrInvalidStatus          = errors.New("未知的订单状态")
	ErrNoteRequired           = errors.New("备注不能为空")
	ErrInvalidAddress         = errors.New("地址信息不完整")
	ErrInvalidProduct         = errors.New("商品信息不完整")
	ErrInvalidVariant         = errors.New("规格信息不完整")
	ErrSlugExists             = errors.New("slug 已存在")
	ErrSKUExists              = errors.New("规格编码已存在")
	ErrInvalidDiscount        = errors.New("折扣规则无效")
	ErrInvalidPricingSetting  = errors.New("计价设置无效")
	ErrInvalidCredentials     = errors.New("账号或密码错误")
	ErrInvalidPassword        = errors.New("原密码错误")
	ErrUserDisabled           = errors.New("账号已被禁用")
	ErrEmailExists            = errors.New("邮箱已注册")
	ErrInvalidEmail           = errors.New("邮箱格式无效")
	ErrWeakPassword           = errors.New("密码强度不足")
	ErrInvalidUserStatus      = errors.New("用户状态无效")
	ErrInvalidSignature       = errors.New("签名校验失败")
	ErrInvalidWebhookPayload  = errors.New("回调数据无效")
	ErrWebhookNotConfigured   = errors.New("未配置回调密钥")
)

// 库存冲突原因
const (
	StockConflictInsufficient = "insufficient"
	StockConflictUnavailable  = "unavailable"
)

// StockConflict 单行库存冲突
type StockConflict struct {
	LineID    uint   `json:"line_id"`
	ProductID uint   `json:"product_id"`
	VariantID uint   `json:"variant_id,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Reason    string `json:"reason"`
}

// StockConflictError 携带全部冲突行的库存错误
type StockConflictError struct {
	Conflicts []StockConflict
}

func (e *StockConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("product=%d variant=%d requested=%d available=%d", c.ProductID, c.VariantID, c.Requested, c.Available))
	}
	return fmt.Sprintf("%s: %s", ErrStockConflict.Error(), strings.Join(parts, "; "))
}

// Is 支持 errors.Is(err, ErrStockConflict)
func (e *StockConflictError) Is(target error) bool {
	return target == ErrStockConflict
}

// TransitionError 状态流转错误，Err 为 ErrInvalidTransition 或 ErrNoOpTransition
type TransitionError struct {
	Kind   string `json:"kind"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s %s -> %s", e.Err.Error(), e.Kind, e.From, e.To)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Unwrap 返回底层哨兵错误
func (e *TransitionError) Unwrap() error {
	return e.Err
}

func invalidTransition(kind, from, to, reason string) error {
	return &TransitionError{Kind: kind, From: from, To: to, Reason: reason, Err: ErrInvalidTransition}
}

func noOpTransition(kind, status string) error {
	return &TransitionError{Kind: kind, From: status, To: status, Err: ErrNoOpTransition}
}

// ErrorKind 返回面向员工与指标的错误类别
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidQuantity):
		return "InvalidQuantity"
	case errors.Is(err, ErrStockConflict):
		return "StockConflict"
	case errors.Is(err, ErrOutOfStock):
		return "OutOfStock"
	case errors.Is(err, ErrNoShippingAddress):
		return "NoShippingAddress"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrNoOpTransition):
		return "NoOpTransition"
	case errors.Is(err, ErrPaymentVerificationFailed):
		return "PaymentVerificationFailed"
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrCheckoutInProgress):
		return "ConcurrencyConflict"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserDisabled), errors.Is(err, ErrInvalidSignature):
		return "Unauthorized"
	case errors.Is(err, ErrCartEmpty):
		return "CartEmpty"
	case errors.Is(err, ErrProductNotAvailable), errors.Is(err, ErrVariantRequired), errors.Is(err, ErrVariantInvalid):
		return "ProductNotAvailable"
	case isInvalidRequest(err):
		return "InvalidRequest"
	default:
		return "Internal"
	}
}

var invalidRequestErrors = []error{
	ErrInvalidPaymentMethod, ErrPaymentReferenceNeeded, ErrInvalidStatus, ErrNoteRequired,
	ErrInvalidAddress, ErrInvalidProduct, ErrInvalidVariant, ErrSlugExists, ErrSKUExists,
	ErrInvalidDiscount, ErrInvalidPricingSetting, ErrInvalidPassword, ErrEmailExists,
	ErrInvalidEmail, ErrWeakPassword, ErrInvalidUserStatus, ErrInvalidWebhookPayload,
}

func isInvalidRequest(err error) bool {
	for _, target := range invalidRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
