package models

import "time"

// OrderStatusHistory 订单状态历史（只追加，不修改、不删除）
type OrderStatusHistory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                              // 主键
	OrderID    uint      `gorm:"index;not null" json:"-"`                           // 订单主键
	Kind       string    `gorm:"type:varchar(20);not null" json:"kind"`             // 维度（fulfillment/payment）
	FromStatus string    `gorm:"type:varchar(20)" json:"previous_status,omitempty"` // 变更前
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"status"`           // 变更后
	Notes      string    `gorm:"type:text" json:"notes"`                            // 说明
	CreatedBy  string    `gorm:"type:varchar(64);not null" json:"created_by"`       // 操作者（kind:id）
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                           // 创建时间
}

// TableName 指定表名
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
