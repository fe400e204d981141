package main

import (
	"errors"

	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/provider"
	"github.com/sixpine/internal/repository"
	"github.com/sixpine/internal/service"

	"github.com/shopspring/decimal"
)

type seedVariant struct {
	sku   string
	color string
	size  string
	stock int
	price string
}

type seedProduct struct {
	category string
	slug     string
	title    string
	price    string
	oldPrice string
	stock    int
	variants []seedVariant
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	log := logger.S()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		log.Fatalw("seed_db_init_failed", "error", err)
	}
	if err := models.AutoMigrate(); err != nil {
		log.Fatalw("seed_db_migrate_failed", "error", err)
	}

	c := provider.NewContainerWithDB(cfg, models.DB)
	if err := c.AuthService.EnsureDefaultAdmin(); err != nil {
		log.Fatalw("seed_default_admin_failed", "error", err)
	}

	categoryIDs := seedCategories(c)
	seedCatalog(c, categoryIDs)
	seedDiscount(c, categoryIDs["sarees"])
	seedShopper(c)
	log.Infow("seed_completed", "categories", len(categoryIDs))
}

func seedCategories(c *provider.Container) map[string]uint {
	inputs := []service.CreateCategoryInput{
		{Slug: "kurtas", Name: "Kurtas", SortOrder: 30},
		{Slug: "sarees", Name: "Sarees", SortOrder: 20},
		{Slug: "home-linen", Name: "Home Linen", SortOrder: 10},
	}
	for _, input := range inputs {
		if _, err := c.CategoryService.Create(input); err != nil && !errors.Is(err, service.ErrSlugExists) {
			logger.S().Fatalw("seed_category_failed", "slug", input.Slug, "error", err)
		}
	}
	categories, err := c.CategoryService.List()
	if err != nil {
		logger.S().Fatalw("seed_category_list_failed", "error", err)
	}
	ids := make(map[string]uint, len(categories))
	for _, category := range categories {
		ids[category.Slug] = category.ID
	}
	return ids
}

func seedCatalog(c *provider.Container, categoryIDs map[string]uint) {
	products := []seedProduct{
		{
			category: "kurtas", slug: "indigo-block-print-kurta", title: "Indigo Block Print Kurta",
			price: "1299.00", oldPrice: "1599.00",
			variants: []seedVariant{
				{sku: "KUR-IND-S", color: "Indigo", size: "S", stock: 12},
				{sku: "KUR-IND-M", color: "Indigo", size: "M", stock: 20},
				{sku: "KUR-IND-L", color: "Indigo", size: "L", stock: 8, price: "1349.00"},
			},
		},
		{
			category: "sarees", slug: "kanjivaram-silk-saree", title: "Kanjivaram Silk Saree",
			price: "8999.00",
			variants: []seedVariant{
				{sku: "SAR-KAN-MAR", color: "Maroon", stock: 4},
				{sku: "SAR-KAN-GRN", color: "Emerald", stock: 3},
			},
		},
		{
			category: "home-linen", slug: "handloom-cotton-towel", title: "Handloom Cotton Towel",
			price: "249.00", stock: 150,
		},
	}

	for _, item := range products {
		input := service.CreateProductInput{
			CategoryID:    categoryIDs[item.category],
			Slug:          item.slug,
			Title:         item.title,
			PriceAmount:   decimal.RequireFromString(item.price),
			StockQuantity: item.stock,
		}
		if item.oldPrice != "" {
			old := decimal.RequireFromString(item.oldPrice)
			input.OldPriceAmount = &old
		}
		product, err := c.ProductService.Create(input)
		if errors.Is(err, service.ErrSlugExists) {
			logger.Infow("seed_product_exists", "slug", item.slug)
			continue
		}
		if err != nil {
			logger.S().Fatalw("seed_product_failed", "slug", item.slug, "error", err)
		}
		for _, v := range item.variants {
			variantInput := service.VariantInput{SKU: v.sku, Color: v.color, Size: v.size, StockQuantity: v.stock}
			if v.price != "" {
				price := decimal.RequireFromString(v.price)
				variantInput.PriceAmount = &price
			}
			if _, err := c.ProductService.CreateVariant(product.ID, variantInput); err != nil && !errors.Is(err, service.ErrSKUExists) {
				logger.S().Fatalw("seed_variant_failed", "sku", v.sku, "error", err)
			}
		}
		logger.Infow("seed_product_created", "slug", item.slug, "product_id", product.ID, "variants", len(item.variants))
	}
}

func seedDiscount(c *provider.Container, sareeCategoryID uint) {
	existing, _, err := c.DiscountService.List(repository.DiscountListFilter{Page: 1, PageSize: 1})
	if err != nil {
		logger.S().Fatalw("seed_discount_list_failed", "error", err)
	}
	if len(existing) > 0 {
		return
	}
	inputs := []service.DiscountInput{
		{
			Name:        "Festive 10%",
			Type:        "percentage",
			Value:       decimal.RequireFromString("10"),
			MinSubtotal: decimal.RequireFromString("2000.00"),
			MaxDiscount: decimal.RequireFromString("1500.00"),
		},
		{
			Name:       "Saree flat 500",
			Type:       "flat",
			Value:      decimal.RequireFromString("500.00"),
			CategoryID: &sareeCategoryID,
		},
	}
	for _, input := range inputs {
		if _, err := c.DiscountService.Create(input); err != nil {
			logger.S().Fatalw("seed_discount_failed", "name", input.Name, "error", err)
		}
	}
}

func seedShopper(c *provider.Container) {
	user, _, _, err := c.UserAuthService.Register(service.RegisterInput{
		Email:       "shopper@example.com",
		Password:    "shopper123",
		DisplayName: "Demo Shopper",
		Locale:      "en-US",
	})
	if errors.Is(err, service.ErrEmailExists) {
		logger.Infow("seed_shopper_exists", "email", "shopper@example.com")
		return
	}
	if err != nil {
		logger.S().Fatalw("seed_shopper_failed", "error", err)
	}
	if _, err := c.AddressService.Create(user.ID, service.AddressInput{
		FullName:   "Demo Shopper",
		Phone:      "+91 90000 00000",
		Line1:      "221 Residency Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560025",
		Country:    "IN",
		IsDefault:  true,
	}); err != nil {
		logger.S().Fatalw("seed_address_failed", "error", err)
	}
	logger.Infow("seed_shopper_created", "user_id", user.ID)
}
