package repository

import (
	"errors"
	"strings"

	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetByIDs(ids []uint) (map[uint]models.Product, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	CountBySlug(slug string, excludeID uint) (int64, error)
	List(filter ProductListFilter) ([]models.Product, int64, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 获取商品（含启用中的规格）
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order DESC, id ASC")
	}).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs 批量获取商品
func (r *GormProductRepository) GetByIDs(ids []uint) (map[uint]models.Product, error) {
	result := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, product := range products {
		result[product.ID] = product
	}
	return result, nil
}

// GetBySlug 根据 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	var product models.Product
	query := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order DESC, id ASC")
	}).Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// CountBySlug 统计 slug 占用数量（含已删除商品，唯一索引不区分软删除）
func (r *GormProductRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	query := r.db.Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"title", "slug"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Variants").Order("sort_order DESC, id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品（不级联规格）
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Variants").Save(product).Error
}

// Delete 删除商品（软删除）
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// DecrementStock 条件扣减库存，库存不足时返回 false
// 条件更新在行级加锁后重新判断 WHERE，保证同一商品的并发扣减不会越过 0
func (r *GormProductRepository) DecrementStock(id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementStock 回补库存
func (r *GormProductRepository) IncrementStock(id uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}
