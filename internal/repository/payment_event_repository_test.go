package repository

import (
	"testing"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/models"
)

func TestMarkCaptureConsumedOnlyOnce(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewPaymentEventRepository(db)
	capture := &models.PaymentCapture{
		Reference: "pay_ref_1",
		Amount:    models.MustMoney("1050.00"),
		Currency:  "INR",
		Status:    constants.CaptureStatusCaptured,
	}
	if err := repo.CreateCapture(capture); err != nil {
		t.Fatalf("create capture failed: %v", err)
	}

	ok, err := repo.MarkCaptureConsumed("pay_ref_1", "01HZXORDER", time.Now())
	if err != nil || !ok {
		t.Fatalf("first consume want ok, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkCaptureConsumed("pay_ref_1", "01HZXOTHER", time.Now())
	if err != nil || ok {
		t.Fatalf("second consume must fail, got ok=%v err=%v", ok, err)
	}

	got, err := repo.GetCaptureByReference("pay_ref_1")
	if err != nil || got == nil {
		t.Fatalf("reload capture failed: %v", err)
	}
	if got.Status != constants.CaptureStatusConsumed || got.OrderID != "01HZXORDER" || got.ConsumedAt == nil {
		t.Fatalf("unexpected capture state: %+v", got)
	}
}

func TestPaymentEventIDUnique(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewPaymentEventRepository(db)
	event := &models.PaymentEvent{EventID: "evt_1", Reference: "pay_ref_1", Status: "succeeded", Result: constants.PaymentEventResultCaptured}
	if err := repo.CreateEvent(event); err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	dup := &models.PaymentEvent{EventID: "evt_1", Reference: "pay_ref_1", Status: "succeeded", Result: constants.PaymentEventResultNoop}
	if err := repo.CreateEvent(dup); err == nil {
		t.Fatalf("duplicate event id should be rejected")
	}
	got, err := repo.GetEventByEventID("evt_1")
	if err != nil || got == nil || got.Result != constants.PaymentEventResultCaptured {
		t.Fatalf("lookup event failed: %+v err=%v", got, err)
	}
}
