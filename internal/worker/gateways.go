package worker

import (
	"context"
	"strings"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/queue"
	"github.com/sixpine/internal/repository"
)

// RefundGateway 向支付网关发起退款
type RefundGateway interface {
	RequestRefund(ctx context.Context, payload queue.RefundRequestPayload) error
}

// Notifier 订单状态变更通知
type Notifier interface {
	NotifyStatus(ctx context.Context, payload queue.OrderStatusNotifyPayload) error
}

// LogRefundGateway 只记录退款请求，由财务在网关后台执行
type LogRefundGateway struct{}

// NewLogRefundGateway 创建日志退款网关
func NewLogRefundGateway() *LogRefundGateway {
	return &LogRefundGateway{}
}

// RequestRefund 记录退款请求
func (g *LogRefundGateway) RequestRefund(_ context.Context, payload queue.RefundRequestPayload) error {
	if payload.PaymentMethod == constants.PaymentMethodCOD || strings.TrimSpace(payload.PaymentReference) == "" {
		logger.Infow("refund_manual_required",
			"order_id", payload.OrderID,
			"amount", payload.Amount,
			"currency", payload.Currency,
			"payment_method", payload.PaymentMethod,
		)
		return nil
	}
	logger.Infow("refund_requested",
		"order_id", payload.OrderID,
		"payment_reference", payload.PaymentReference,
		"amount", payload.Amount,
		"currency", payload.Currency,
		"reason", payload.Reason,
		"requested_by", payload.RequestedBy,
	)
	return nil
}

// LogNotifier 查询收件人后记录通知内容
type LogNotifier struct {
	userRepo repository.UserRepository
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(userRepo repository.UserRepository) *LogNotifier {
	return &LogNotifier{userRepo: userRepo}
}

// NotifyStatus 发送订单状态通知
func (n *LogNotifier) NotifyStatus(_ context.Context, payload queue.OrderStatusNotifyPayload) error {
	if n.userRepo == nil {
		return nil
	}
	user, err := n.userRepo.GetByID(payload.UserID)
	if err != nil {
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("order_status_notify_skip_no_receiver", "order_id", payload.OrderID, "user_id", payload.UserID)
		return nil
	}
	logger.Infow("order_status_notified",
		"order_id", payload.OrderID,
		"receiver_email", user.Email,
		"locale", user.Locale,
		"previous_status", payload.PreviousStatus,
		"status", payload.Status,
		"tracking_number", payload.TrackingNumber,
	)
	return nil
}
