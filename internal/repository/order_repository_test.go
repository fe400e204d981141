package repository

import (
	"testing"
	"time"

	"github.com/sixpine/internal/models"
)

func TestOrderUpdateWithVersion(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, db, 1, "01HZXORDER00000000000000001")

	ok, err := repo.UpdateWithVersion(order.ID, 0, map[string]interface{}{"status": "confirmed"})
	if err != nil || !ok {
		t.Fatalf("first update want ok, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateWithVersion(order.ID, 0, map[string]interface{}{"status": "cancelled"})
	if err != nil {
		t.Fatalf("stale update failed: %v", err)
	}
	if ok {
		t.Fatalf("stale version must not update")
	}

	got, err := repo.GetByOrderID(order.OrderID)
	if err != nil || got == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.Status != "confirmed" || got.Version != 1 {
		t.Fatalf("unexpected order state status=%s version=%d", got.Status, got.Version)
	}
}

func TestOrderLookupsAndOwnership(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, db, 5, "01HZXORDER00000000000000002")

	got, err := repo.GetByIdempotencyKey(order.IdempotencyKey)
	if err != nil || got == nil || got.OrderID != order.OrderID {
		t.Fatalf("idempotency lookup failed: %+v err=%v", got, err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "Cushion" {
		t.Fatalf("items should be preloaded: %+v", got.Items)
	}
	if blank, _ := repo.GetByIdempotencyKey(" "); blank != nil {
		t.Fatalf("blank key should not match")
	}

	foreign, err := repo.GetByOrderIDAndUser(order.OrderID, 6)
	if err != nil || foreign != nil {
		t.Fatalf("order must not be visible to another user")
	}
}

func TestGetLatestDerivedByUser(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	createTestOrder(t, db, 8, "01HZXORDER00000000000000010")
	older := createTestOrder(t, db, 8, "01HZXORDER00000000000000011")
	newer := createTestOrder(t, db, 8, "01HZXORDER00000000000000012")
	db.Model(&models.Order{}).Where("id = ?", older.ID).Update("idempotency_key", DerivedIdempotencyPrefix+"older")
	db.Model(&models.Order{}).Where("id = ?", newer.ID).Update("idempotency_key", DerivedIdempotencyPrefix+"newer")

	got, err := repo.GetLatestDerivedByUser(8, time.Now().Add(-time.Hour))
	if err != nil || got == nil || got.OrderID != newer.OrderID {
		t.Fatalf("expected latest derived order %s, got %+v err=%v", newer.OrderID, got, err)
	}
	if other, _ := repo.GetLatestDerivedByUser(9, time.Now().Add(-time.Hour)); other != nil {
		t.Fatalf("another user's orders must not match")
	}
	if stale, _ := repo.GetLatestDerivedByUser(8, time.Now().Add(time.Hour)); stale != nil {
		t.Fatalf("orders before since must not match")
	}
}

func TestOrderListFilters(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	createTestOrder(t, db, 1, "01HZXORDER00000000000000003")
	createTestOrder(t, db, 1, "01HZXORDER00000000000000004")
	other := createTestOrder(t, db, 2, "01HZXORDER00000000000000005")
	if _, err := repo.UpdateWithVersion(other.ID, 0, map[string]interface{}{"payment_status": "paid"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	mine, total, err := repo.ListByUser(OrderListFilter{UserID: 1, Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || len(mine) != 1 || mine[0].OrderID != "01HZXORDER00000000000000004" {
		t.Fatalf("unexpected user list total=%d len=%d", total, len(mine))
	}

	paid, total, err := repo.ListAdmin(OrderListFilter{PaymentStatus: "paid"})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if total != 1 || paid[0].OrderID != other.OrderID {
		t.Fatalf("admin list should filter payment status")
	}
}

func TestOrderHistoryAppendOrder(t *testing.T) {
	db := openRepositoryTestDB(t)
	order := createTestOrder(t, db, 1, "01HZXORDER00000000000000006")
	history := NewOrderHistoryRepository(db)

	err := history.Append(
		&models.OrderStatusHistory{OrderID: order.ID, Kind: "fulfillment", FromStatus: "shipped", ToStatus: "delivered", CreatedBy: "admin:1"},
		&models.OrderStatusHistory{OrderID: order.ID, Kind: "payment", FromStatus: "pending", ToStatus: "paid", CreatedBy: "system:cod"},
	)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := history.AppendNote(&models.OrderNote{OrderID: order.ID, Note: "called customer", CreatedBy: "admin:1"}); err != nil {
		t.Fatalf("append note failed: %v", err)
	}

	entries, err := history.ListByOrder(order.ID)
	if err != nil {
		t.Fatalf("list history failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != "fulfillment" || entries[1].Kind != "payment" {
		t.Fatalf("history should keep append order: %+v", entries)
	}
	got, _ := NewOrderRepository(db).GetByOrderID(order.OrderID)
	if len(got.StatusHistory) != 2 || len(got.Notes) != 1 {
		t.Fatalf("detail should preload history and notes")
	}
}
