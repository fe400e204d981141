package repository

import (
	"errors"
	"time"

	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 折扣规则数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	ListActive(now time.Time) ([]models.Discount, error)
	Create(discount *models.Discount) error
	Update(discount *models.Discount) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建折扣仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// GetByID 获取折扣规则
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// List 折扣规则列表
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	query := r.db.Model(&models.Discount{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var discounts []models.Discount
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id DESC").Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// ListActive 在给定时间生效的折扣规则（按 ID 升序）
func (r *GormDiscountRepository) ListActive(now time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	err := r.db.
		Where("is_active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Order("id ASC").
		Find(&discounts).Error
	if err != nil {
		return nil, err
	}
	return discounts, nil
}

// Create 创建折扣规则
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Create(discount).Error
}

// Update 更新折扣规则
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Save(discount).Error
}

// Delete 删除折扣规则（软删除）
func (r *GormDiscountRepository) Delete(id uint) error {
	return r.db.Delete(&models.Discount{}, id).Error
}
