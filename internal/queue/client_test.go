package queue

import (
	"encoding/json"
	"testing"

	"github.com/sixpine/internal/config"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("nil config should produce disabled client")
	}
	if err := client.EnqueueRefundRequest(RefundRequestPayload{OrderID: "01HZX"}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.EnqueueOrderEvent(OrderEventPayload{OrderID: "01HZX"}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestRefundTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewRefundRequestTask(RefundRequestPayload{OrderID: "01HZX", Amount: "1050.00", Currency: "INR"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskRefundRequest {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload RefundRequestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.Amount != "1050.00" || payload.OrderID != "01HZX" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380})
	if opt.Addr != "redis:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
