package repository

import (
	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// OrderHistoryRepository 订单状态历史与员工备注（只追加）
// 接口不提供修改与删除
type OrderHistoryRepository interface {
	Append(entries ...*models.OrderStatusHistory) error
	AppendNote(note *models.OrderNote) error
	ListByOrder(orderID uint) ([]models.OrderStatusHistory, error)
	ListNotesByOrder(orderID uint) ([]models.OrderNote, error)
	WithTx(tx *gorm.DB) *GormOrderHistoryRepository
}

// GormOrderHistoryRepository GORM 实现
type GormOrderHistoryRepository struct {
	db *gorm.DB
}

// NewOrderHistoryRepository 创建状态历史仓库
func NewOrderHistoryRepository(db *gorm.DB) *GormOrderHistoryRepository {
	return &GormOrderHistoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderHistoryRepository) WithTx(tx *gorm.DB) *GormOrderHistoryRepository {
	if tx == nil {
		return r
	}
	return &GormOrderHistoryRepository{db: tx}
}

// Append 追加状态历史，按参数顺序写入
func (r *GormOrderHistoryRepository) Append(entries ...*models.OrderStatusHistory) error {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if err := r.db.Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// AppendNote 追加员工备注
func (r *GormOrderHistoryRepository) AppendNote(note *models.OrderNote) error {
	if note == nil {
		return nil
	}
	return r.db.Create(note).Error
}

// ListByOrder 按时间顺序列出状态历史
func (r *GormOrderHistoryRepository) ListByOrder(orderID uint) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	if err := r.db.Where("order_id = ?", orderID).Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListNotesByOrder 按时间顺序列出员工备注
func (r *GormOrderHistoryRepository) ListNotesByOrder(orderID uint) ([]models.OrderNote, error) {
	var notes []models.OrderNote
	if err := r.db.Where("order_id = ?", orderID).Order("created_at ASC, id ASC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
