package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/models"
)

func TestCheckoutCommitsOrderAndClearsCart(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "cushion", "500.00", 5)
	address := f.createAddress(t, 7)
	f.addToCart(t, 7, product.ID, 0, 2)

	result, err := f.checkout.Checkout(context.Background(), UserPrincipal(7), CheckoutInput{OrderNotes: "leave at door"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	order := result.Order
	if result.Replayed {
		t.Fatalf("first checkout must not be a replay")
	}
	if order.OrderID == "" || len(order.OrderID) != 26 {
		t.Fatalf("expected ulid order id, got %q", order.OrderID)
	}
	if order.Subtotal.String() != "1000.00" || order.Tax.String() != "50.00" || order.ShippingCost.String() != "0.00" {
		t.Fatalf("unexpected pricing: subtotal=%s tax=%s shipping=%s", order.Subtotal, order.Tax, order.ShippingCost)
	}
	if order.Total.String() != "1050.00" {
		t.Fatalf("total want 1050.00, got %s", order.Total)
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("unexpected statuses: %s/%s", order.Status, order.PaymentStatus)
	}
	if order.ShippingAddress.Line1 != address.Line1 || order.ShippingAddress.PostalCode != address.PostalCode {
		t.Fatalf("address snapshot mismatch: %+v", order.ShippingAddress)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice.String() != "500.00" || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if got := f.productStock(t, product.ID); got != 3 {
		t.Fatalf("stock want 3, got %d", got)
	}
	if got := f.cartSize(t, 7); got != 0 {
		t.Fatalf("cart should be empty, got %d lines", got)
	}

	stored, err := f.queries.GetForUser(UserPrincipal(7), order.OrderID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(stored.StatusHistory) != 1 {
		t.Fatalf("expected one history entry, got %d", len(stored.StatusHistory))
	}
	entry := stored.StatusHistory[0]
	if entry.ToStatus != constants.OrderStatusPending || entry.Notes != "Order created" || entry.CreatedBy != "user:7" {
		t.Fatalf("unexpected initial history: %+v", entry)
	}
	if types := f.tasks.eventTypes(); len(types) != 1 || types[0] != constants.OrderEventCreated {
		t.Fatalf("expected order.created event, got %v", types)
	}
}

func TestCheckoutStockConflictLeavesStateUntouched(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "throw", "500.00", 5)
	f.createAddress(t, 8)
	f.addToCart(t, 8, product.ID, 0, 2)

	if err := f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock_quantity", 1).Error; err != nil {
		t.Fatalf("lower stock failed: %v", err)
	}

	_, err := f.checkout.Checkout(context.Background(), UserPrincipal(8), CheckoutInput{})
	if !errors.Is(err, ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}
	var conflictErr *StockConflictError
	if !errors.As(err, &conflictErr) || len(conflictErr.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", err)
	}
	conflict := conflictErr.Conflicts[0]
	if conflict.Requested != 2 || conflict.Available != 1 || conflict.Reason != StockConflictInsufficient {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if ErrorKind(err) != "StockConflict" {
		t.Fatalf("unexpected error kind: %s", ErrorKind(err))
	}
	if got := f.productStock(t, product.ID); got != 1 {
		t.Fatalf("stock must stay 1, got %d", got)
	}
	if got := f.cartSize(t, 8); got != 1 {
		t.Fatalf("cart must be untouched, got %d lines", got)
	}
	var orders int64
	f.db.Model(&models.Order{}).Count(&orders)
	if orders != 0 {
		t.Fatalf("no order should be created, got %d", orders)
	}
}

func TestCheckoutRequiresShippingAddress(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "runner", "300.00", 5)
	f.addToCart(t, 9, product.ID, 0, 1)

	_, err := f.checkout.Checkout(context.Background(), UserPrincipal(9), CheckoutInput{})
	if !errors.Is(err, ErrNoShippingAddress) {
		t.Fatalf("expected ErrNoShippingAddress, got %v", err)
	}
	var addresses int64
	f.db.Model(&models.Address{}).Count(&addresses)
	if addresses != 0 {
		t.Fatalf("checkout must not fabricate an address")
	}
	if got := f.cartSize(t, 9); got != 1 {
		t.Fatalf("cart must be untouched, got %d", got)
	}
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "mat", "300.00", 5)
	other := f.createAddress(t, 99)
	f.createAddress(t, 10)
	f.addToCart(t, 10, product.ID, 0, 1)

	_, err := f.checkout.Checkout(context.Background(), UserPrincipal(10), CheckoutInput{ShippingAddressID: other.ID})
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newStoreFixture(t)
	f.createAddress(t, 11)
	_, err := f.checkout.Checkout(context.Background(), UserPrincipal(11), CheckoutInput{})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutRequiresUserPrincipal(t *testing.T) {
	f := newStoreFixture(t)
	_, err := f.checkout.Checkout(context.Background(), AdminPrincipal(1, "ops"), CheckoutInput{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCheckoutReplaysSameIdempotencyKey(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "quilt", "500.00", 5)
	f.createAddress(t, 12)
	f.addToCart(t, 12, product.ID, 0, 2)

	first, err := f.checkout.Checkout(context.Background(), UserPrincipal(12), CheckoutInput{IdempotencyKey: "tap-1"})
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	f.addToCart(t, 12, product.ID, 0, 1)
	second, err := f.checkout.Checkout(context.Background(), UserPrincipal(12), CheckoutInput{IdempotencyKey: "tap-1"})
	if err != nil {
		t.Fatalf("replayed checkout failed: %v", err)
	}
	if !second.Replayed || second.Order.OrderID != first.Order.OrderID {
		t.Fatalf("expected replay of %s, got %+v", first.Order.OrderID, second)
	}
	if got := f.productStock(t, product.ID); got != 3 {
		t.Fatalf("stock must be decremented once, got %d", got)
	}
	if got := f.cartSize(t, 12); got != 1 {
		t.Fatalf("replay must not touch the new cart, got %d", got)
	}
}

func TestIdempotencyKeyIsScopedPerUser(t *testing.T) {
	if scopedIdempotencyKey(1, "same") == scopedIdempotencyKey(2, "same") {
		t.Fatalf("keys from different users must differ")
	}
}

func TestDeriveIdempotencyKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := []models.CartItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, VariantID: 5, Quantity: 1}}
	b := []models.CartItem{{ProductID: 2, VariantID: 5, Quantity: 1}, {ProductID: 1, Quantity: 2}}

	keyA := deriveIdempotencyKey(1, a, 3, "cod", now, 10*time.Minute)
	keyB := deriveIdempotencyKey(1, b, 3, "cod", now.Add(time.Minute), 10*time.Minute)
	if keyA != keyB {
		t.Fatalf("same cart in the same window must derive the same key")
	}
	if keyA == deriveIdempotencyKey(1, a, 3, "cod", now.Add(11*time.Minute), 10*time.Minute) {
		t.Fatalf("a later window must derive a different key")
	}
	if keyA == deriveIdempotencyKey(1, a, 4, "cod", now, 10*time.Minute) {
		t.Fatalf("a different address must derive a different key")
	}
	readded := []models.CartItem{{ID: 9, ProductID: 1, Quantity: 2}, {ProductID: 2, VariantID: 5, Quantity: 1}}
	if keyA == deriveIdempotencyKey(1, readded, 3, "cod", now, 10*time.Minute) {
		t.Fatalf("a re-added cart line must derive a different key")
	}
}

func TestRepeatPurchaseInWindowCreatesNewOrder(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "mug", "250.00", 10)
	first := f.placeOrder(t, 70, product.ID, 1)

	f.addToCart(t, 70, product.ID, 0, 1)
	second, err := f.checkout.Checkout(context.Background(), UserPrincipal(70), CheckoutInput{})
	if err != nil {
		t.Fatalf("second checkout failed: %v", err)
	}
	if second.Replayed || second.Order.OrderID == first.OrderID {
		t.Fatalf("second purchase must commit a new order, got replayed=%v order=%s", second.Replayed, second.Order.OrderID)
	}
	if got := f.productStock(t, product.ID); got != 8 {
		t.Fatalf("stock want 8 got %d", got)
	}
	if got := f.cartSize(t, 70); got != 0 {
		t.Fatalf("cart must be cleared, got %d lines", got)
	}
}

func TestRetryAfterCommitWithoutKeyReturnsOrder(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "lamp", "800.00", 4)
	first := f.placeOrder(t, 71, product.ID, 1)

	retry, err := f.checkout.Checkout(context.Background(), UserPrincipal(71), CheckoutInput{})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !retry.Replayed || retry.Order.OrderID != first.OrderID {
		t.Fatalf("retry must replay %s, got %+v", first.OrderID, retry)
	}
	if got := f.productStock(t, product.ID); got != 3 {
		t.Fatalf("retry must not decrement stock, got %d", got)
	}

	other, err := f.addresses.Create(71, AddressInput{
		FullName: "Asha Rao", Phone: "+91 98450 00000", Line1: "4 Church Street",
		City: "Bengaluru", PostalCode: "560001", Country: "IN",
	})
	if err != nil {
		t.Fatalf("create second address failed: %v", err)
	}
	_, err = f.checkout.Checkout(context.Background(), UserPrincipal(71), CheckoutInput{ShippingAddressID: other.ID})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("another address with an empty cart want ErrCartEmpty, got %v", err)
	}
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "lamp", "200.00", 3)
	const buyers = 8
	for i := 1; i <= buyers; i++ {
		userID := uint(100 + i)
		f.createAddress(t, userID)
		f.addToCart(t, userID, product.ID, 0, 1)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
		others    []error
	)
	for i := 1; i <= buyers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.checkout.Checkout(context.Background(), UserPrincipal(userID), CheckoutInput{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrStockConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(uint(100 + i))
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if succeeded != 3 || conflicts != buyers-3 {
		t.Fatalf("want 3 orders and %d conflicts, got %d/%d", buyers-3, succeeded, conflicts)
	}
	if got := f.productStock(t, product.ID); got != 0 {
		t.Fatalf("stock want 0, got %d", got)
	}
}

func TestCheckoutVariantUsesOverridePriceAndStock(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "bedsheet", "600.00", 50)
	variant := f.createVariant(t, product.ID, "BS-IND-Q", models.MoneyPtr("700.00"), 2)
	f.createAddress(t, 13)
	f.addToCart(t, 13, product.ID, variant.ID, 1)

	result, err := f.checkout.Checkout(context.Background(), UserPrincipal(13), CheckoutInput{})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	item := result.Order.Items[0]
	if item.UnitPrice.String() != "700.00" || item.SKU != "BS-IND-Q" || item.VariantLabel != "Indigo / Queen" {
		t.Fatalf("unexpected variant snapshot: %+v", item)
	}
	if got := f.variantStock(t, variant.ID); got != 1 {
		t.Fatalf("variant stock want 1, got %d", got)
	}
	if got := f.productStock(t, product.ID); got != 50 {
		t.Fatalf("product stock must not change, got %d", got)
	}
}

func TestPrepaidCheckoutConsumesCaptureOnce(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "rug", "500.00", 5)
	capture := &models.PaymentCapture{
		Reference: "pay_001",
		Amount:    models.MustMoney("1050.00"),
		Currency:  "INR",
		Status:    constants.CaptureStatusCaptured,
	}
	if err := f.paymentRepo.CreateCapture(capture); err != nil {
		t.Fatalf("create capture failed: %v", err)
	}
	f.createAddress(t, 14)
	f.addToCart(t, 14, product.ID, 0, 2)

	result, err := f.checkout.Checkout(context.Background(), UserPrincipal(14), CheckoutInput{
		PaymentMethod:    constants.PaymentMethodPrepaid,
		PaymentReference: "pay_001",
	})
	if err != nil {
		t.Fatalf("prepaid checkout failed: %v", err)
	}
	if result.Order.PaymentStatus != constants.PaymentStatusPaid || result.Order.PaidAt == nil {
		t.Fatalf("prepaid order should be paid: %+v", result.Order)
	}
	stored, _ := f.paymentRepo.GetCaptureByReference("pay_001")
	if stored == nil || stored.Status != constants.CaptureStatusConsumed || stored.OrderID != result.Order.OrderID {
		t.Fatalf("capture should be consumed by the order: %+v", stored)
	}

	f.addToCart(t, 14, product.ID, 0, 2)
	_, err = f.checkout.Checkout(context.Background(), UserPrincipal(14), CheckoutInput{
		PaymentMethod:    constants.PaymentMethodPrepaid,
		PaymentReference: "pay_001",
		IdempotencyKey:   "second",
	})
	if !errors.Is(err, ErrPaymentVerificationFailed) {
		t.Fatalf("expected ErrPaymentVerificationFailed, got %v", err)
	}
	if got := f.productStock(t, product.ID); got != 3 {
		t.Fatalf("failed verification must roll back stock, got %d", got)
	}
}

func TestPrepaidCheckoutRequiresReference(t *testing.T) {
	f := newStoreFixture(t)
	_, err := f.checkout.Checkout(context.Background(), UserPrincipal(15), CheckoutInput{PaymentMethod: "prepaid"})
	if !errors.Is(err, ErrPaymentReferenceNeeded) {
		t.Fatalf("expected ErrPaymentReferenceNeeded, got %v", err)
	}
	_, err = f.checkout.Checkout(context.Background(), UserPrincipal(15), CheckoutInput{PaymentMethod: "wallet"})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, nil
}

func TestCheckoutInflightLockRejectsDuplicate(t *testing.T) {
	f := newStoreFixture(t)
	product := f.createProduct(t, "vase", "100.00", 5)
	f.createAddress(t, 16)
	f.addToCart(t, 16, product.ID, 0, 1)
	f.checkout.locker = heldLocker{}

	_, err := f.checkout.Checkout(context.Background(), UserPrincipal(16), CheckoutInput{})
	if !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if ErrorKind(err) != "ConcurrencyConflict" {
		t.Fatalf("unexpected error kind: %s", ErrorKind(err))
	}
}
