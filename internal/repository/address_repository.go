package repository

import (
	"errors"

	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	ListByUser(userID uint) ([]models.Address, error)
	GetByIDAndUser(id, userID uint) (*models.Address, error)
	GetDefault(userID uint) (*models.Address, error)
	CountByUser(userID uint) (int64, error)
	Create(address *models.Address) error
	Update(address *models.Address) error
	Delete(id uint) error
	UnsetDefault(userID uint, exceptID uint) error
	WithTx(tx *gorm.DB) *GormAddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) *GormAddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// ListByUser 用户地址列表（默认地址在前）
func (r *GormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Order("is_default DESC, id ASC").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByIDAndUser 获取属于该用户的地址
func (r *GormAddressRepository) GetByIDAndUser(id, userID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetDefault 获取默认地址
func (r *GormAddressRepository) GetDefault(userID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.Where("user_id = ? AND is_default = ?", userID, true).Order("id DESC").First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// CountByUser 统计用户地址数量
func (r *GormAddressRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create 创建地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// Update 更新地址
func (r *GormAddressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// Delete 删除地址（软删除，历史订单保留快照）
func (r *GormAddressRepository) Delete(id uint) error {
	return r.db.Delete(&models.Address{}, id).Error
}

// UnsetDefault 取消用户除 exceptID 外的默认地址
func (r *GormAddressRepository) UnsetDefault(userID uint, exceptID uint) error {
	query := r.db.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_default", false).Error
}
