package repository

import (
	"testing"

	"github.com/sixpine/internal/models"
)

func TestCartListFillsVariantAndKeepsOrder(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCartRepository(db)
	towel := createTestProduct(t, db, "towel", "250.00", 5)
	shirt := createTestProduct(t, db, "shirt", "499.00", 0)
	variant := createTestVariant(t, db, shirt.ID, "SHIRT-BL-L", 3)

	if err := repo.Create(&models.CartItem{UserID: 7, ProductID: towel.ID, Quantity: 2}); err != nil {
		t.Fatalf("create cart line failed: %v", err)
	}
	if err := repo.Create(&models.CartItem{UserID: 7, ProductID: shirt.ID, VariantID: variant.ID, Quantity: 1}); err != nil {
		t.Fatalf("create variant cart line failed: %v", err)
	}

	items, err := repo.ListByUser(7)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("cart lines want 2 got %d", len(items))
	}
	if items[0].ProductID != towel.ID || items[0].Variant != nil {
		t.Fatalf("first line should be towel without variant: %+v", items[0])
	}
	if items[1].Variant == nil || items[1].Variant.SKU != "SHIRT-BL-L" {
		t.Fatalf("second line should carry variant: %+v", items[1])
	}
	if items[1].Product == nil || items[1].Product.Slug != "shirt" {
		t.Fatalf("second line should carry product")
	}
}

func TestCartLineUniqueness(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCartRepository(db)
	towel := createTestProduct(t, db, "towel", "250.00", 5)

	if err := repo.Create(&models.CartItem{UserID: 1, ProductID: towel.ID, Quantity: 1}); err != nil {
		t.Fatalf("create cart line failed: %v", err)
	}
	if err := repo.Create(&models.CartItem{UserID: 1, ProductID: towel.ID, Quantity: 1}); err == nil {
		t.Fatalf("duplicate cart line should violate unique index")
	}

	line, err := repo.FindLine(1, towel.ID, 0)
	if err != nil || line == nil {
		t.Fatalf("find line failed: %v", err)
	}
	if err := repo.UpdateQuantity(line.ID, 4); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	got, err := repo.GetByIDAndUser(line.ID, 1)
	if err != nil || got == nil || got.Quantity != 4 {
		t.Fatalf("quantity want 4 got %+v err=%v", got, err)
	}
	other, err := repo.GetByIDAndUser(line.ID, 2)
	if err != nil || other != nil {
		t.Fatalf("other user must not see the line")
	}
}

func TestCartClearByUserOnlyTouchesOwner(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCartRepository(db)
	towel := createTestProduct(t, db, "towel", "250.00", 5)
	_ = repo.Create(&models.CartItem{UserID: 1, ProductID: towel.ID, Quantity: 1})
	_ = repo.Create(&models.CartItem{UserID: 2, ProductID: towel.ID, Quantity: 1})

	if err := repo.ClearByUser(1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	mine, _ := repo.ListByUser(1)
	theirs, _ := repo.ListByUser(2)
	if len(mine) != 0 || len(theirs) != 1 {
		t.Fatalf("clear should only remove owner lines, mine=%d theirs=%d", len(mine), len(theirs))
	}
}
