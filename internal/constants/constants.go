package constants

// 履约状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// 支付状态常量
const (
	PaymentStatusPending           = "pending"
	PaymentStatusPaid              = "paid"
	PaymentStatusFailed            = "failed"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

// 支付方式常量
const (
	PaymentMethodCOD     = "cod"
	PaymentMethodPrepaid = "prepaid"
)

// 状态历史维度
const (
	StatusKindFulfillment = "fulfillment"
	StatusKindPayment     = "payment"
)

// 折扣类型常量
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFlat       = "flat"
)

// 支付网关回调事件状态
const (
	GatewayEventSucceeded         = "succeeded"
	GatewayEventFailed            = "failed"
	GatewayEventRefunded          = "refunded"
	GatewayEventPartiallyRefunded = "partially_refunded"
)

// 预付款项状态
const (
	CaptureStatusCaptured = "captured"
	CaptureStatusConsumed = "consumed"
)

// 支付回调事件处理结果
const (
	PaymentEventResultApplied  = "applied"
	PaymentEventResultNoop     = "noop"
	PaymentEventResultCaptured = "captured"
	PaymentEventResultRejected = "rejected"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 操作者类型
const (
	PrincipalUser    = "user"
	PrincipalAdmin   = "admin"
	PrincipalSystem  = "system"
	PrincipalWebhook = "webhook"
)

// 设置键
const (
	SettingKeyPricingConfig = "pricing_config"
)

// 计价设置字段
const (
	SettingFieldTaxRate               = "tax_rate"
	SettingFieldFlatRate              = "flat_rate"
	SettingFieldFreeShippingThreshold = "free_shipping_threshold"
)

// 异步任务类型
const (
	TaskRefundRequest     = "refund:request"
	TaskOrderStatusNotify = "order:status_notify"
	TaskOrderEventPublish = "order:event_publish"
)

// 订单领域事件类型
const (
	OrderEventCreated         = "order.created"
	OrderEventStatusChanged   = "order.status_changed"
	OrderEventPaymentChanged  = "order.payment_status_changed"
	OrderEventRefundRequested = "order.refund_requested"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
