package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sixpine/internal/config"
)

func TestNewPublisherWithoutBrokersIsNoop(t *testing.T) {
	publisher := NewPublisher(config.EventsConfig{Brokers: []string{" "}, Topic: "order-events"})
	if _, ok := publisher.(NoopPublisher); !ok {
		t.Fatalf("expected noop publisher, got %T", publisher)
	}
	if err := publisher.Publish(context.Background(), OrderEvent{OrderID: "01HZX"}); err != nil {
		t.Fatalf("noop publish failed: %v", err)
	}
}

func TestEncodeMessageKeysByOrder(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encodeMessage(OrderEvent{EventID: "e1", Type: "order.created", OrderID: "01HZX", Total: "1050.00", OccurredAt: at})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(msg.Key) != "01HZX" {
		t.Fatalf("message key want order id, got %s", msg.Key)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != "order.created" {
		t.Fatalf("unexpected headers: %+v", msg.Headers)
	}
	var decoded OrderEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode value failed: %v", err)
	}
	if decoded.Total != "1050.00" || !decoded.OccurredAt.Equal(at) {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}
