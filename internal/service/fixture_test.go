package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/queue"
	"github.com/sixpine/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

type recordingTasks struct {
	mu       sync.Mutex
	refunds  []queue.RefundRequestPayload
	notifies []queue.OrderStatusNotifyPayload
	events   []queue.OrderEventPayload
}

func (r *recordingTasks) EnqueueRefundRequest(payload queue.RefundRequestPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = append(r.refunds, payload)
	return nil
}

func (r *recordingTasks) EnqueueOrderStatusNotify(payload queue.OrderStatusNotifyPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifies = append(r.notifies, payload)
	return nil
}

func (r *recordingTasks) EnqueueOrderEvent(payload queue.OrderEventPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload)
	return nil
}

func (r *recordingTasks) refundCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refunds)
}

func (r *recordingTasks) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

// storeFixture 组装一套基于 sqlite 的完整服务
type storeFixture struct {
	db          *gorm.DB
	tasks       *recordingTasks
	productRepo *repository.GormProductRepository
	variantRepo *repository.GormVariantRepository
	cartRepo    *repository.GormCartRepository
	addressRepo *repository.GormAddressRepository
	orderRepo   *repository.GormOrderRepository
	historyRepo *repository.GormOrderHistoryRepository
	paymentRepo *repository.GormPaymentEventRepository
	pricing     *PricingEngine
	cart        *CartService
	addresses   *AddressService
	checkout    *CheckoutService
	machine     *OrderStatusMachine
	queries     *OrderQueryService
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	db := openServiceTestDB(t)
	tasks := &recordingTasks{}
	f := &storeFixture{
		db:          db,
		tasks:       tasks,
		productRepo: repository.NewProductRepository(db),
		variantRepo: repository.NewVariantRepository(db),
		cartRepo:    repository.NewCartRepository(db),
		addressRepo: repository.NewAddressRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		historyRepo: repository.NewOrderHistoryRepository(db),
		paymentRepo: repository.NewPaymentEventRepository(db),
	}
	discountRepo := repository.NewDiscountRepository(db)
	f.pricing = NewPricingEngine(nil, discountRepo)
	f.cart = NewCartService(f.cartRepo, f.productRepo, f.variantRepo, f.pricing)
	f.addresses = NewAddressService(db, f.addressRepo)
	f.checkout = NewCheckoutService(CheckoutServiceOptions{
		DB:           db,
		CartRepo:     f.cartRepo,
		ProductRepo:  f.productRepo,
		VariantRepo:  f.variantRepo,
		AddressRepo:  f.addressRepo,
		OrderRepo:    f.orderRepo,
		HistoryRepo:  f.historyRepo,
		DiscountRepo: discountRepo,
		Pricing:      f.pricing,
		Validator:    NewStockValidator(f.productRepo, f.variantRepo),
		Verifier:     NewCapturePaymentVerifier(f.paymentRepo),
		Tasks:        tasks,
	})
	f.machine = NewOrderStatusMachine(db, f.orderRepo, f.historyRepo, f.productRepo, f.variantRepo, tasks)
	f.queries = NewOrderQueryService(f.orderRepo)
	return f
}

func (f *storeFixture) createProduct(t *testing.T, slug, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:    1,
		Slug:          slug,
		Title:         "Product " + slug,
		PriceAmount:   models.MustMoney(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := f.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (f *storeFixture) createVariant(t *testing.T, productID uint, sku string, price *models.Money, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID:     productID,
		SKU:           sku,
		Color:         "Indigo",
		Size:          "Queen",
		PriceAmount:   price,
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := f.db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}

func (f *storeFixture) createAddress(t *testing.T, userID uint) *models.Address {
	t.Helper()
	address, err := f.addresses.Create(userID, AddressInput{
		FullName:   "Asha Rao",
		Phone:      "+91 98450 00000",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	})
	if err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	return address
}

func (f *storeFixture) addToCart(t *testing.T, userID, productID, variantID uint, quantity int) {
	t.Helper()
	if _, err := f.cart.AddItem(userID, AddCartItemInput{ProductID: productID, VariantID: variantID, Quantity: quantity}); err != nil {
		t.Fatalf("add cart item failed: %v", err)
	}
}

func (f *storeFixture) productStock(t *testing.T, productID uint) int {
	t.Helper()
	var product models.Product
	if err := f.db.Unscoped().First(&product, productID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product.StockQuantity
}

func (f *storeFixture) variantStock(t *testing.T, variantID uint) int {
	t.Helper()
	var variant models.ProductVariant
	if err := f.db.Unscoped().First(&variant, variantID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	return variant.StockQuantity
}

func (f *storeFixture) cartSize(t *testing.T, userID uint) int {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	return int(count)
}

func (f *storeFixture) historyCount(t *testing.T, orderPK uint) int {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.OrderStatusHistory{}).Where("order_id = ?", orderPK).Count(&count).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	return int(count)
}

// placeOrder 以货到付款方式下单一件商品
func (f *storeFixture) placeOrder(t *testing.T, userID uint, productID uint, quantity int) *models.Order {
	t.Helper()
	f.createAddress(t, userID)
	f.addToCart(t, userID, productID, 0, quantity)
	result, err := f.checkout.Checkout(context.Background(), UserPrincipal(userID), CheckoutInput{})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return result.Order
}
