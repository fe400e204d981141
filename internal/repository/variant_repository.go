package repository

import (
	"errors"

	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// VariantRepository 商品规格数据访问接口
type VariantRepository interface {
	GetByID(id uint) (*models.ProductVariant, error)
	GetByIDs(ids []uint) (map[uint]models.ProductVariant, error)
	ListByProduct(productID uint) ([]models.ProductVariant, error)
	CountActiveByProduct(productID uint) (int64, error)
	CountBySKU(productID uint, sku string, excludeID uint) (int64, error)
	Create(variant *models.ProductVariant) error
	Update(variant *models.ProductVariant) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
	WithTx(tx *gorm.DB) *GormVariantRepository
}

// GormVariantRepository GORM 实现
type GormVariantRepository struct {
	db *gorm.DB
}

// NewVariantRepository 创建规格仓库
func NewVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVariantRepository) WithTx(tx *gorm.DB) *GormVariantRepository {
	if tx == nil {
		return r
	}
	return &GormVariantRepository{db: tx}
}

// GetByID 获取规格
func (r *GormVariantRepository) GetByID(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// GetByIDs 批量获取规格
func (r *GormVariantRepository) GetByIDs(ids []uint) (map[uint]models.ProductVariant, error) {
	result := make(map[uint]models.ProductVariant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var variants []models.ProductVariant
	if err := r.db.Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, err
	}
	for _, variant := range variants {
		result[variant.ID] = variant
	}
	return result, nil
}

// ListByProduct 获取商品的全部规格
func (r *GormVariantRepository) ListByProduct(productID uint) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if err := r.db.Where("product_id = ?", productID).Order("sort_order DESC, id ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// CountActiveByProduct 统计启用中的规格数量
func (r *GormVariantRepository) CountActiveByProduct(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProductVariant{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Count(&count).Error
	return count, err
}

// Create 创建规格
func (r *GormVariantRepository) Create(variant *models.ProductVariant) error {
	return r.db.Create(variant).Error
}

// Update 更新规格
func (r *GormVariantRepository) Update(variant *models.ProductVariant) error {
	return r.db.Omit("Product").Save(variant).Error
}

// Delete 删除规格（软删除）
func (r *GormVariantRepository) Delete(id uint) error {
	return r.db.Delete(&models.ProductVariant{}, id).Error
}

// DecrementStock 条件扣减规格库存，库存不足时返回 false
func (r *GormVariantRepository) DecrementStock(id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementStock 回补规格库存
func (r *GormVariantRepository) IncrementStock(id uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}

// CountBySKU 统计同一商品下规格编码占用数量
func (r *GormVariantRepository) CountBySKU(productID uint, sku string, excludeID uint) (int64, error) {
	query := r.db.Unscoped().Model(&models.ProductVariant{}).Where("product_id = ? AND sku = ?", productID, sku)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
