package repository

import (
	"errors"
	"time"

	"github.com/sixpine/internal/constants"
	"github.com/sixpine/internal/models"

	"gorm.io/gorm"
)

// PaymentEventRepository 支付回调事件与预付款项数据访问接口
type PaymentEventRepository interface {
	GetEventByEventID(eventID string) (*models.PaymentEvent, error)
	CreateEvent(event *models.PaymentEvent) error
	GetCaptureByReference(reference string) (*models.PaymentCapture, error)
	CreateCapture(capture *models.PaymentCapture) error
	MarkCaptureConsumed(reference string, orderID string, at time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormPaymentEventRepository
}

// GormPaymentEventRepository GORM 实现
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository 创建支付事件仓库
func NewPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentEventRepository) WithTx(tx *gorm.DB) *GormPaymentEventRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentEventRepository{db: tx}
}

// GetEventByEventID 按网关事件 ID 查询
func (r *GormPaymentEventRepository) GetEventByEventID(eventID string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	if err := r.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// CreateEvent 记录回调事件
func (r *GormPaymentEventRepository) CreateEvent(event *models.PaymentEvent) error {
	return r.db.Create(event).Error
}

// GetCaptureByReference 按网关流水号查询预付款项
func (r *GormPaymentEventRepository) GetCaptureByReference(reference string) (*models.PaymentCapture, error) {
	var capture models.PaymentCapture
	if err := r.db.Where("reference = ?", reference).First(&capture).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &capture, nil
}

// CreateCapture 记录到账款项
func (r *GormPaymentEventRepository) CreateCapture(capture *models.PaymentCapture) error {
	return r.db.Create(capture).Error
}

// MarkCaptureConsumed 核销预付款项，仅 captured 状态可核销，重复核销返回 false
func (r *GormPaymentEventRepository) MarkCaptureConsumed(reference string, orderID string, at time.Time) (bool, error) {
	result := r.db.Model(&models.PaymentCapture{}).
		Where("reference = ? AND status = ?", reference, constants.CaptureStatusCaptured).
		Updates(map[string]interface{}{
			"status":      constants.CaptureStatusConsumed,
			"order_id":    orderID,
			"consumed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
