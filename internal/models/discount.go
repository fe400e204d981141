package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 折扣规则（百分比或固定金额），多条命中时只取优惠最大的一条
type Discount struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(120);not null" json:"name"`
	Type        string         `gorm:"type:varchar(20);not null" json:"type"`
	Value       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value"`
	MinSubtotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_subtotal"`
	MaxDiscount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`
	CategoryID  *uint          `gorm:"index" json:"category_id,omitempty"`
	IsActive    bool           `gorm:"not null;default:true;index" json:"is_active"`
	ValidFrom   *time.Time     `gorm:"index" json:"valid_from,omitempty"`
	ValidUntil  *time.Time     `gorm:"index" json:"valid_until,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// ActiveAt 规则在给定时间是否生效
func (d Discount) ActiveAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	return true
}
