package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sixpine/internal/events"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/provider"
	"github.com/sixpine/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	refunds   RefundGateway
	notifier  Notifier
	publisher events.Publisher
}

// NewConsumer 基于容器创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return NewConsumerWith(NewLogRefundGateway(), NewLogNotifier(c.UserRepo), c.EventPublisher)
}

// NewConsumerWith 使用显式依赖创建消费者
func NewConsumerWith(refunds RefundGateway, notifier Notifier, publisher events.Publisher) *Consumer {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Consumer{
		refunds:   refunds,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRefundRequest, c.handleRefundRequest)
	mux.HandleFunc(queue.TaskOrderStatusNotify, c.handleOrderStatusNotify)
	mux.HandleFunc(queue.TaskOrderEventPublish, c.handleOrderEventPublish)
}

func (c *Consumer) handleRefundRequest(ctx context.Context, task *asynq.Task) error {
	var payload queue.RefundRequestPayload
	if err := decodePayload(task, &payload); err != nil {
		logger.Warnw("worker_refund_request_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		logger.Debugw("worker_refund_request_skip_invalid_payload")
		return nil
	}
	if c.refunds == nil {
		logger.Warnw("worker_refund_request_skip_gateway_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.refunds.RequestRefund(ctx, payload); err != nil {
		logger.Warnw("worker_refund_request_failed",
			"order_id", payload.OrderID,
			"amount", payload.Amount,
			"currency", payload.Currency,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderStatusNotify(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderStatusNotifyPayload
	if err := decodePayload(task, &payload); err != nil {
		logger.Warnw("worker_order_status_notify_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.OrderID) == "" || payload.UserID == 0 {
		logger.Debugw("worker_order_status_notify_skip_invalid_payload", "order_id", payload.OrderID, "user_id", payload.UserID)
		return nil
	}
	if c.notifier == nil {
		logger.Warnw("worker_order_status_notify_skip_notifier_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.notifier.NotifyStatus(ctx, payload); err != nil {
		logger.Warnw("worker_order_status_notify_failed",
			"order_id", payload.OrderID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderEventPublish(ctx context.Context, task *asynq.Task) error {
	var payload queue.OrderEventPayload
	if err := decodePayload(task, &payload); err != nil {
		logger.Warnw("worker_order_event_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.OrderID) == "" || strings.TrimSpace(payload.Type) == "" {
		logger.Debugw("worker_order_event_skip_invalid_payload", "event_id", payload.EventID)
		return nil
	}
	event := events.OrderEvent{
		EventID:       payload.EventID,
		Type:          payload.Type,
		OrderID:       payload.OrderID,
		UserID:        payload.UserID,
		Status:        payload.Status,
		PaymentStatus: payload.PaymentStatus,
		Total:         payload.Total,
		Currency:      payload.Currency,
		Actor:         payload.Actor,
		OccurredAt:    payload.OccurredAt,
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		logger.Warnw("worker_order_event_publish_failed",
			"event_id", payload.EventID,
			"type", payload.Type,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

// decodePayload 载荷无法解析时不再重试
func decodePayload(task *asynq.Task, target interface{}) error {
	if task == nil {
		return fmt.Errorf("nil task: %w", asynq.SkipRetry)
	}
	if err := json.Unmarshal(task.Payload(), target); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}
