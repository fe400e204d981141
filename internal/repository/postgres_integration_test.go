//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sixpine/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	all := models.AllModels()
	_ = db.Migrator().DropTable(all...)
	if err := db.AutoMigrate(all...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(all...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentDecrementNeverOversells(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	product := createTestProduct(t, db, "pg-limited", "100.00", 3)
	repo := NewProductRepository(db)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				ok, err := repo.WithTx(tx).DecrementStock(product.ID, 1)
				if err != nil {
					return err
				}
				if ok {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				t.Errorf("decrement tx failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 3 {
		t.Fatalf("succeeded decrements want 3 got %d", succeeded)
	}
	got, _ := repo.GetByID(product.ID)
	if got.StockQuantity != 0 {
		t.Fatalf("stock want 0 got %d", got.StockQuantity)
	}
}

func TestPostgresCaseInsensitiveSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	createTestProduct(t, db, "pg-linen-shirt", "499.00", 1)

	rows, total, err := NewProductRepository(db).List(ProductListFilter{Search: "LINEN"})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d len=%d", total, len(rows))
	}
}
