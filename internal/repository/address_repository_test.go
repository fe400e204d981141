package repository

import (
	"testing"

	"github.com/sixpine/internal/models"
)

func createTestAddress(t *testing.T, repo *GormAddressRepository, userID uint, city string, isDefault bool) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:     userID,
		FullName:   "Asha Rao",
		Phone:      "+91-9000000000",
		Line1:      "12 MG Road",
		City:       city,
		PostalCode: "560001",
		Country:    "IN",
		IsDefault:  isDefault,
	}
	if err := repo.Create(address); err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	return address
}

func TestAddressUnsetDefaultKeepsException(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewAddressRepository(db)
	first := createTestAddress(t, repo, 1, "Bengaluru", true)
	second := createTestAddress(t, repo, 1, "Mysuru", true)
	createTestAddress(t, repo, 2, "Pune", true)

	if err := repo.UnsetDefault(1, second.ID); err != nil {
		t.Fatalf("unset default failed: %v", err)
	}
	got, err := repo.GetDefault(1)
	if err != nil || got == nil || got.ID != second.ID {
		t.Fatalf("default want %d got %+v err=%v", second.ID, got, err)
	}
	reloaded, _ := repo.GetByIDAndUser(first.ID, 1)
	if reloaded.IsDefault {
		t.Fatalf("first address should no longer be default")
	}
	other, _ := repo.GetDefault(2)
	if other == nil {
		t.Fatalf("other user's default must be untouched")
	}
}

func TestAddressDeleteIsSoft(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewAddressRepository(db)
	address := createTestAddress(t, repo, 1, "Chennai", false)
	if err := repo.Delete(address.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err := repo.GetByIDAndUser(address.ID, 1)
	if err != nil || got != nil {
		t.Fatalf("deleted address should be hidden")
	}
	var count int64
	db.Unscoped().Model(&models.Address{}).Where("id = ?", address.ID).Count(&count)
	if count != 1 {
		t.Fatalf("address row should remain for audit")
	}
}
