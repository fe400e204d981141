package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sixpine/internal/constants"
)

const testWebhookSecret = "whsec_test"

func newWebhookService(f *storeFixture) *PaymentWebhookService {
	return NewPaymentWebhookService(testWebhookSecret, f.paymentRepo, f.machine)
}

func signedBody(body string) ([]byte, string) {
	raw := []byte(body)
	return raw, SignWebhookBody(testWebhookSecret, raw)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newStoreFixture(t)
	svc := newWebhookService(f)
	body := []byte(`{"event_id":"evt_1","status":"succeeded"}`)
	if _, err := svc.Handle(context.Background(), body, "deadbeef"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if _, err := NewPaymentWebhookService("", f.paymentRepo, f.machine).Handle(context.Background(), body, "x"); !errors.Is(err, ErrWebhookNotConfigured) {
		t.Fatalf("expected ErrWebhookNotConfigured, got %v", err)
	}
}

func TestWebhookMarksOrderPaidOnce(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "blanket", "500.00", 5)
	order := f.placeOrder(t, 40, product.ID, 1)
	svc := newWebhookService(f)
	before := f.historyCount(t, order.ID)

	body, sig := signedBody(fmt.Sprintf(`{"event_id":"evt_paid","order_id":%q,"reference":"pay_9","status":"succeeded","amount":"575.00","currency":"INR"}`, order.OrderID))
	result, err := svc.Handle(context.Background(), body, sig)
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if result.Result != constants.PaymentEventResultApplied || result.Duplicate {
		t.Fatalf("unexpected result: %+v", result)
	}
	stored, _ := f.queries.GetForAdmin(order.OrderID)
	if stored.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("order should be paid, got %s", stored.PaymentStatus)
	}
	last := stored.StatusHistory[len(stored.StatusHistory)-1]
	if last.CreatedBy != "webhook:evt_paid" {
		t.Fatalf("unexpected actor: %s", last.CreatedBy)
	}

	again, err := svc.Handle(context.Background(), body, sig)
	if err != nil || !again.Duplicate {
		t.Fatalf("redelivery should be acknowledged as duplicate: %+v err=%v", again, err)
	}

	other, otherSig := signedBody(fmt.Sprintf(`{"event_id":"evt_paid_2","order_id":%q,"reference":"pay_9","status":"succeeded","amount":"575.00","currency":"INR"}`, order.OrderID))
	noop, err := svc.Handle(context.Background(), other, otherSig)
	if err != nil || noop.Result != constants.PaymentEventResultNoop {
		t.Fatalf("repeated status should be a no-op: %+v err=%v", noop, err)
	}
	if got := f.historyCount(t, order.ID); got != before+1 {
		t.Fatalf("only one payment entry expected, before=%d after=%d", before, got)
	}
}

func TestWebhookAfterShopperCancelRequestsRefund(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "rug", "900.00", 3)
	order := f.placeOrder(t, 42, product.ID, 1)
	if _, err := f.machine.Cancel(context.Background(), UserPrincipal(42), order.OrderID, "changed mind"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	body, sig := signedBody(fmt.Sprintf(`{"event_id":"evt_late","order_id":%q,"reference":"pay_late","status":"succeeded","amount":"945.00","currency":"INR"}`, order.OrderID))
	result, err := newWebhookService(f).Handle(context.Background(), body, sig)
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if result.Result != constants.PaymentEventResultApplied {
		t.Fatalf("unexpected result: %+v", result)
	}
	stored, _ := f.queries.GetForAdmin(order.OrderID)
	if stored.Status != constants.OrderStatusCancelled || stored.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("unexpected statuses: %s/%s", stored.Status, stored.PaymentStatus)
	}
	if f.tasks.refundCount() != 1 {
		t.Fatalf("expected one refund request, got %d", f.tasks.refundCount())
	}
}

func TestWebhookIllegalTransitionRecordedAsRejected(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "duvet", "500.00", 5)
	order := f.placeOrder(t, 41, product.ID, 1)
	svc := newWebhookService(f)

	body, sig := signedBody(fmt.Sprintf(`{"event_id":"evt_ref","order_id":%q,"status":"refunded"}`, order.OrderID))
	result, err := svc.Handle(context.Background(), body, sig)
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if result.Result != constants.PaymentEventResultRejected {
		t.Fatalf("pending->refunded should be rejected, got %+v", result)
	}
}

func TestWebhookWithoutOrderRecordsCapture(t *testing.T) {
	f := newStoreFixture(t)
	svc := newWebhookService(f)
	body, sig := signedBody(`{"event_id":"evt_cap","reference":"pay_cap","status":"succeeded","amount":1050,"currency":"inr","user_id":42}`)
	result, err := svc.Handle(context.Background(), body, sig)
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if result.Result != constants.PaymentEventResultCaptured {
		t.Fatalf("expected captured, got %+v", result)
	}
	capture, _ := f.paymentRepo.GetCaptureByReference("pay_cap")
	if capture == nil || capture.Amount.String() != "1050.00" || capture.Currency != "INR" || capture.UserID != 42 {
		t.Fatalf("unexpected capture: %+v", capture)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	f := newStoreFixture(t)
	svc := newWebhookService(f)
	body, sig := signedBody(`{"event_id":"","status":"succeeded"}`)
	if _, err := svc.Handle(context.Background(), body, sig); !errors.Is(err, ErrInvalidWebhookPayload) {
		t.Fatalf("expected ErrInvalidWebhookPayload, got %v", err)
	}
	body, sig = signedBody(`{"event_id":"evt_x","status":"exploded"}`)
	if _, err := svc.Handle(context.Background(), body, sig); !errors.Is(err, ErrInvalidWebhookPayload) {
		t.Fatalf("expected ErrInvalidWebhookPayload, got %v", err)
	}
}
