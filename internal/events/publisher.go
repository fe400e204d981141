package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/logger"

	"github.com/segmentio/kafka-go"
)

// OrderEvent 对外发布的订单领域事件
type OrderEvent struct {
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

// Publisher 订单事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NewPublisher 按配置创建发布器，未配置 broker 时返回空实现
func NewPublisher(cfg config.EventsConfig) Publisher {
	if !cfg.Enabled() {
		logger.Infow("order_events_kafka_disabled")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}

// KafkaPublisher 基于 kafka-go 的发布器，以订单号为 key 保证同一订单事件有序
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
	}
}

// Publish 发布事件
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close 关闭写入器
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeMessage(event OrderEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}, nil
}

// NoopPublisher 只记录日志的空实现
type NoopPublisher struct{}

// Publish 记录事件后丢弃
func (NoopPublisher) Publish(_ context.Context, event OrderEvent) error {
	logger.Debugw("order_event_dropped", "event_id", event.EventID, "type", event.Type, "order_id", event.OrderID)
	return nil
}

// Close 无操作
func (NoopPublisher) Close() error {
	return nil
}
