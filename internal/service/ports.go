package service

import (
	"context"
	"time"

	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/queue"

	"gorm.io/gorm"
)

// TaskEnqueuer 异步任务投递（由 queue.Client 实现）
type TaskEnqueuer interface {
	EnqueueRefundRequest(payload queue.RefundRequestPayload) error
	EnqueueOrderStatusNotify(payload queue.OrderStatusNotifyPayload) error
	EnqueueOrderEvent(payload queue.OrderEventPayload) error
}

// Locker 短时互斥锁（由 cache.Locker 实现）
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
}

// PaymentVerification 预付款校验请求
type PaymentVerification struct {
	UserID    uint
	Reference string
	Amount    models.Money
	Currency  string
	OrderID   string
}

// PaymentVerifier 外部支付校验，在下单事务内执行并核销款项
type PaymentVerifier interface {
	Verify(ctx context.Context, tx *gorm.DB, req PaymentVerification) error
}

type noopLocker struct{}

func (noopLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
