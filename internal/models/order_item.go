package models

import "time"

// OrderItem 订单项（下单时冻结单价）
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID      uint      `gorm:"index;not null" json:"-"`                                 // 订单主键
	ProductID    uint      `gorm:"index;not null" json:"product_id"`                        // 商品ID
	VariantID    uint      `gorm:"not null;default:0" json:"variant_id,omitempty"`          // 规格ID
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`                 // 商品标题快照
	VariantLabel string    `gorm:"type:varchar(255)" json:"variant_label,omitempty"`        // 规格描述快照
	SKU          string    `gorm:"type:varchar(64)" json:"sku,omitempty"`                   // 规格编码快照
	UnitPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 成交单价
	Quantity     int       `gorm:"not null" json:"quantity"`                                // 数量
	LineTotal    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"` // 行小计
	CreatedAt    time.Time `json:"created_at"`                                              // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
