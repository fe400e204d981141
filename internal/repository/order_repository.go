package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByOrderID(orderID string) (*models.Order, error)
	GetByOrderIDAndUser(orderID string, userID uint) (*models.Order, error)
	GetByIdempotencyKey(key string) (*models.Order, error)
	GetLatestDerivedByUser(userID uint, since time.Time) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateWithVersion(id uint, version uint, updates map[string]interface{}) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单及订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "StatusHistory", "Notes").Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
}

// GetByOrderID 根据对外订单号获取订单详情（订单项、状态历史、员工备注）
func (r *GormOrderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	return r.first(r.detailQuery().Where("order_id = ?", orderID))
}

// GetByOrderIDAndUser 获取属于该用户的订单详情
func (r *GormOrderRepository) GetByOrderIDAndUser(orderID string, userID uint) (*models.Order, error) {
	return r.first(r.detailQuery().Where("order_id = ? AND user_id = ?", orderID, userID))
}

// GetByIdempotencyKey 根据幂等键获取订单
func (r *GormOrderRepository) GetByIdempotencyKey(key string) (*models.Order, error) {
	if strings.TrimSpace(key) == "" {
		return nil, nil
	}
	return r.first(r.detailQuery().Where("idempotency_key = ?", key))
}

// GetLatestDerivedByUser 获取用户在 since 之后以推导幂等键创建的最新订单
func (r *GormOrderRepository) GetLatestDerivedByUser(userID uint, since time.Time) (*models.Order, error) {
	return r.first(r.detailQuery().
		Where("user_id = ? AND idempotency_key LIKE ? AND created_at >= ?", userID, DerivedIdempotencyPrefix+"%", since).
		Order("id DESC"))
}

// ListByUser 用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return r.list(query, filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if orderID := strings.TrimSpace(filter.OrderID); orderID != "" {
		query = query.Where("order_id LIKE ?", "%"+orderID+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return r.list(query, filter)
}

// UpdateWithVersion 按版本号条件更新订单并递增版本，版本不匹配时返回 false
func (r *GormOrderRepository) UpdateWithVersion(id uint, version uint, updates map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		values[key] = value
	}
	values["version"] = gorm.Expr("version + 1")
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormOrderRepository) detailQuery() *gorm.DB {
	return r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}

func (r *GormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) list(query *gorm.DB, filter OrderListFilter) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Items").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
