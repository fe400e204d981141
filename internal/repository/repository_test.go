package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sixpine/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:    1,
		Slug:          slug,
		Title:         "Product " + slug,
		PriceAmount:   models.MustMoney(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestVariant(t *testing.T, db *gorm.DB, productID uint, sku string, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ProductID:     productID,
		SKU:           sku,
		Color:         "Blue",
		Size:          "L",
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}

func createTestOrder(t *testing.T, db *gorm.DB, userID uint, orderID string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderID:        orderID,
		UserID:         userID,
		Status:         "pending",
		PaymentStatus:  "pending",
		PaymentMethod:  "cod",
		Currency:       "INR",
		Subtotal:       models.MustMoney("100.00"),
		Total:          models.MustMoney("155.00"),
		IdempotencyKey: "idem-" + orderID,
	}
	items := []models.OrderItem{
		{ProductID: 1, Title: "Cushion", UnitPrice: models.MustMoney("100.00"), Quantity: 1, LineTotal: models.MustMoney("100.00")},
	}
	if err := NewOrderRepository(db).Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
