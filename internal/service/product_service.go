package service

import (
	"strings"

	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品与规格业务服务
type ProductService struct {
	repo        repository.ProductRepository
	variantRepo repository.VariantRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, variantRepo repository.VariantRepository) *ProductService {
	return &ProductService{repo: repo, variantRepo: variantRepo}
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	CategoryID     uint
	Slug           string
	Title          string
	Description    string
	PriceAmount    decimal.Decimal
	OldPriceAmount *decimal.Decimal
	StockQuantity  int
	Images         []string
	IsActive       *bool
	SortOrder      int
}

// VariantInput 创建/更新规格输入
type VariantInput struct {
	SKU            string
	Color          string
	Size           string
	Pattern        string
	PriceAmount    *decimal.Decimal
	OldPriceAmount *decimal.Decimal
	StockQuantity  int
	IsActive       *bool
	SortOrder      int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     search,
		OnlyActive: true,
	})
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     search,
	})
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	product := &models.Product{IsActive: true}
	if err := s.applyProductInput(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	// is_active 列默认 true，创建时的 false 需要补写
	if !product.IsActive {
		if err := s.repo.Update(product); err != nil {
			return nil, err
		}
	}
	logger.Infow("product_created", "product_id", product.ID, "slug", product.Slug)
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	product, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.applyProductInput(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品（软删除，历史订单保留快照）
func (s *ProductService) Delete(id uint) error {
	if _, err := s.GetAdminByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// CreateVariant 为商品新增规格
func (s *ProductService) CreateVariant(productID uint, input VariantInput) (*models.ProductVariant, error) {
	if _, err := s.GetAdminByID(productID); err != nil {
		return nil, err
	}
	variant := &models.ProductVariant{ProductID: productID, IsActive: true}
	if err := s.applyVariantInput(variant, input); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Create(variant); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSKUExists
		}
		return nil, err
	}
	if !variant.IsActive {
		if err := s.variantRepo.Update(variant); err != nil {
			return nil, err
		}
	}
	return variant, nil
}

// UpdateVariant 更新规格
func (s *ProductService) UpdateVariant(productID, variantID uint, input VariantInput) (*models.ProductVariant, error) {
	variant, err := s.getVariant(productID, variantID)
	if err != nil {
		return nil, err
	}
	if err := s.applyVariantInput(variant, input); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Update(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant 删除规格
func (s *ProductService) DeleteVariant(productID, variantID uint) error {
	if _, err := s.getVariant(productID, variantID); err != nil {
		return err
	}
	return s.variantRepo.Delete(variantID)
}

func (s *ProductService) getVariant(productID, variantID uint) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || variant.ProductID != productID {
		return nil, ErrVariantNotFound
	}
	return variant, nil
}

func (s *ProductService) applyProductInput(product *models.Product, input CreateProductInput) error {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	title := strings.TrimSpace(input.Title)
	price := input.PriceAmount.Round(2)
	if slug == "" || title == "" || !price.IsPositive() || input.StockQuantity < 0 {
		return ErrInvalidProduct
	}
	count, err := s.repo.CountBySlug(slug, product.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugExists
	}

	product.CategoryID = input.CategoryID
	product.Slug = slug
	product.Title = title
	product.Description = strings.TrimSpace(input.Description)
	product.PriceAmount = models.NewMoneyFromDecimal(price)
	product.OldPriceAmount = optionalMoney(input.OldPriceAmount)
	product.StockQuantity = input.StockQuantity
	product.Images = models.StringArray(input.Images)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return nil
}

func (s *ProductService) applyVariantInput(variant *models.ProductVariant, input VariantInput) error {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" || input.StockQuantity < 0 {
		return ErrInvalidVariant
	}
	if input.PriceAmount != nil && !input.PriceAmount.IsPositive() {
		return ErrInvalidVariant
	}
	count, err := s.variantRepo.CountBySKU(variant.ProductID, sku, variant.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSKUExists
	}

	variant.SKU = sku
	variant.Color = strings.TrimSpace(input.Color)
	variant.Size = strings.TrimSpace(input.Size)
	variant.Pattern = strings.TrimSpace(input.Pattern)
	variant.PriceAmount = optionalMoney(input.PriceAmount)
	variant.OldPriceAmount = optionalMoney(input.OldPriceAmount)
	variant.StockQuantity = input.StockQuantity
	variant.SortOrder = input.SortOrder
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}
	return nil
}

func optionalMoney(value *decimal.Decimal) *models.Money {
	if value == nil {
		return nil
	}
	money := models.NewMoneyFromDecimal(*value)
	return &money
}
