package models

import "time"

// OrderNote 员工备注（只追加）
type OrderNote struct {
	ID        uint      `gorm:"primarykey" json:"id"`                        // 主键
	OrderID   uint      `gorm:"index;not null" json:"-"`                     // 订单主键
	Note      string    `gorm:"type:text;not null" json:"note"`              // 内容
	CreatedBy string    `gorm:"type:varchar(64);not null" json:"created_by"` // 操作者
	CreatedAt time.Time `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (OrderNote) TableName() string {
	return "order_notes"
}
