package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单表
// 金额、订单项与地址快照在创建后不可变；状态字段只由状态机修改
type Order struct {
	ID                uint            `gorm:"primarykey" json:"-"`                                        // 主键
	OrderID           string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_id"`      // 对外订单号（ULID）
	UserID            uint            `gorm:"index;not null" json:"user_id"`                              // 用户ID
	Status            string          `gorm:"type:varchar(20);index;not null" json:"status"`              // 履约状态
	PaymentStatus     string          `gorm:"type:varchar(20);index;not null" json:"payment_status"`      // 支付状态
	PaymentMethod     string          `gorm:"type:varchar(20);not null" json:"payment_method"`            // 支付方式（cod/prepaid）
	PaymentReference  string          `gorm:"type:varchar(128);index" json:"payment_reference,omitempty"` // 预付款流水号
	Currency          string          `gorm:"type:varchar(8);not null" json:"currency"`                   // 币种
	Subtotal          Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 商品小计
	ShippingCost      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"` // 运费
	Tax               Money           `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`           // 税费
	TaxRate           decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"tax_rate"`      // 下单时税率
	Discount          Money           `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`      // 折扣
	Total             Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total"`         // 应付总额
	DiscountID        *uint           `gorm:"index" json:"discount_id,omitempty"`                         // 命中的折扣规则
	IdempotencyKey    string          `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`            // 幂等键
	ShippingAddress   AddressSnapshot `gorm:"type:json;not null" json:"shipping_address"`                 // 收货地址快照
	OrderNotes        string          `gorm:"type:text" json:"order_notes,omitempty"`                     // 买家备注
	TrackingNumber    string          `gorm:"type:varchar(128)" json:"tracking_number,omitempty"`         // 物流单号
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`                               // 预计送达
	Version           uint            `gorm:"not null;default:0" json:"-"`                                // 乐观锁版本
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty"`                                     // 确认时间
	ShippedAt         *time.Time      `json:"shipped_at,omitempty"`                                       // 发货时间
	DeliveredAt       *time.Time      `json:"delivered_at,omitempty"`                                     // 签收时间
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`                                     // 取消时间
	PaidAt            *time.Time      `json:"paid_at,omitempty"`                                          // 支付时间
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt         time.Time       `json:"updated_at"`                                                 // 更新时间

	Items         []OrderItem          `gorm:"foreignKey:OrderID" json:"items,omitempty"`          // 订单项
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_history,omitempty"` // 状态历史
	Notes         []OrderNote          `gorm:"foreignKey:OrderID" json:"notes,omitempty"`          // 员工备注
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
