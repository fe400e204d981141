package queue

import (
	"encoding/json"
	"time"

	"github.com/sixpine/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskRefundRequest 退款请求任务
	TaskRefundRequest = constants.TaskRefundRequest
	// TaskOrderStatusNotify 订单状态通知任务
	TaskOrderStatusNotify = constants.TaskOrderStatusNotify
	// TaskOrderEventPublish 订单领域事件投递任务
	TaskOrderEventPublish = constants.TaskOrderEventPublish
)

// RefundRequestPayload 退款请求任务载荷
type RefundRequestPayload struct {
	OrderID          string `json:"order_id"`
	UserID           uint   `json:"user_id"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference,omitempty"`
	Reason           string `json:"reason,omitempty"`
	RequestedBy      string `json:"requested_by"`
}

// OrderStatusNotifyPayload 订单状态通知任务载荷
type OrderStatusNotifyPayload struct {
	OrderID        string `json:"order_id"`
	UserID         uint   `json:"user_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// OrderEventPayload 订单领域事件载荷
type OrderEventPayload struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	UserID        uint      `json:"user_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewRefundRequestTask 创建退款请求任务
func NewRefundRequestTask(payload RefundRequestPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefundRequest, body), nil
}

// NewOrderStatusNotifyTask 创建订单状态通知任务
func NewOrderStatusNotifyTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusNotify, body), nil
}

// NewOrderEventTask 创建订单事件投递任务
func NewOrderEventTask(payload OrderEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderEventPublish, body), nil
}
