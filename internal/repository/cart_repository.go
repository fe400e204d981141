package repository

import (
	"errors"

	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	FindLine(userID, productID, variantID uint) (*models.CartItem, error)
	GetByIDAndUser(id, userID uint) (*models.CartItem, error)
	Create(item *models.CartItem) error
	UpdateQuantity(id uint, quantity int) error
	Delete(id uint) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车行（含商品与规格），按加入顺序排列
// 已下架或已删除的商品行仍然返回，Product 为 nil 时由调用方判定不可售
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	if err := r.fillVariants(items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindLine 按 (user, product, variant) 查找购物车行
func (r *GormCartRepository) FindLine(userID, productID, variantID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("user_id = ? AND product_id = ? AND variant_id = ?", userID, productID, variantID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByIDAndUser 获取属于该用户的购物车行
func (r *GormCartRepository) GetByIDAndUser(id, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product").Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	items := []models.CartItem{item}
	if err := r.fillVariants(items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create 创建购物车行
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Omit("Product").Create(item).Error
}

// UpdateQuantity 更新购物车行数量
func (r *GormCartRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity).Error
}

// Delete 删除购物车行
func (r *GormCartRepository) Delete(id uint) error {
	return r.db.Delete(&models.CartItem{}, id).Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func (r *GormCartRepository) fillVariants(items []models.CartItem) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.VariantID != 0 {
			ids = append(ids, item.VariantID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var variants []models.ProductVariant
	if err := r.db.Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return err
	}
	byID := make(map[uint]*models.ProductVariant, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
	}
	for i := range items {
		if items[i].VariantID != 0 {
			items[i].Variant = byID[items[i].VariantID]
		}
	}
	return nil
}
