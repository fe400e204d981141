package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/events"
	"github.com/sixpine/internal/queue"

	"github.com/hibiken/asynq"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingRefunds struct {
	payloads []queue.RefundRequestPayload
}

func (r *recordingRefunds) RequestRefund(_ context.Context, payload queue.RefundRequestPayload) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

type recordingNotifier struct {
	payloads []queue.OrderStatusNotifyPayload
}

func (n *recordingNotifier) NotifyStatus(_ context.Context, payload queue.OrderStatusNotifyPayload) error {
	n.payloads = append(n.payloads, payload)
	return nil
}

func TestOrderEventTaskIsPublished(t *testing.T) {
	publisher := &recordingPublisher{}
	consumer := NewConsumerWith(nil, nil, publisher)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task, err := queue.NewOrderEventTask(queue.OrderEventPayload{
		EventID:    "e-1",
		Type:       constants.OrderEventCreated,
		OrderID:    "01HZX",
		UserID:     7,
		Total:      "1050.00",
		Currency:   "INR",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderEventPublish(context.Background(), task); err != nil {
		t.Fatalf("publish handler failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	got := publisher.events[0]
	if got.OrderID != "01HZX" || got.Total != "1050.00" || !got.OccurredAt.Equal(at) {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestPublishFailureIsRetried(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	consumer := NewConsumerWith(nil, nil, publisher)
	task, _ := queue.NewOrderEventTask(queue.OrderEventPayload{EventID: "e-2", Type: constants.OrderEventCreated, OrderID: "01HZY"})
	err := consumer.handleOrderEventPublish(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("broker failure should be retried, got %v", err)
	}
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	consumer := NewConsumerWith(&recordingRefunds{}, &recordingNotifier{}, nil)
	task := asynq.NewTask(queue.TaskRefundRequest, []byte("{not json"))
	if err := consumer.handleRefundRequest(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRefundAndNotifyDispatch(t *testing.T) {
	refunds := &recordingRefunds{}
	notifier := &recordingNotifier{}
	consumer := NewConsumerWith(refunds, notifier, nil)

	refundTask, _ := queue.NewRefundRequestTask(queue.RefundRequestPayload{OrderID: "01HZX", Amount: "1050.00", Currency: "INR"})
	if err := consumer.handleRefundRequest(context.Background(), refundTask); err != nil {
		t.Fatalf("refund handler failed: %v", err)
	}
	notifyTask, _ := queue.NewOrderStatusNotifyTask(queue.OrderStatusNotifyPayload{OrderID: "01HZX", UserID: 7, Status: constants.OrderStatusShipped})
	if err := consumer.handleOrderStatusNotify(context.Background(), notifyTask); err != nil {
		t.Fatalf("notify handler failed: %v", err)
	}
	anonymous, _ := queue.NewOrderStatusNotifyTask(queue.OrderStatusNotifyPayload{OrderID: "01HZX"})
	if err := consumer.handleOrderStatusNotify(context.Background(), anonymous); err != nil {
		t.Fatalf("payload without user should be skipped: %v", err)
	}
	if len(refunds.payloads) != 1 || len(notifier.payloads) != 1 {
		t.Fatalf("unexpected dispatch counts: refunds=%d notifies=%d", len(refunds.payloads), len(notifier.payloads))
	}
}

func TestLogRefundGatewayAcceptsCOD(t *testing.T) {
	gateway := NewLogRefundGateway()
	if err := gateway.RequestRefund(context.Background(), queue.RefundRequestPayload{OrderID: "01HZX", PaymentMethod: constants.PaymentMethodCOD}); err != nil {
		t.Fatalf("cod refund should be logged for manual handling: %v", err)
	}
}
