package models

import "time"

// PaymentEvent 支付网关回调事件（event_id 去重）
type PaymentEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	EventID   string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"event_id"` // 网关事件ID
	OrderID   string    `gorm:"type:varchar(32);index" json:"order_id,omitempty"`       // 订单号
	Reference string    `gorm:"type:varchar(128);index" json:"reference"`               // 网关流水号
	Status    string    `gorm:"type:varchar(32);not null" json:"status"`                // 事件状态
	Amount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`    // 金额
	Currency  string    `gorm:"type:varchar(8)" json:"currency"`                        // 币种
	Result    string    `gorm:"type:varchar(20);not null" json:"result"`                // 处理结果
	Payload   JSON      `gorm:"type:json" json:"payload"`                               // 原始报文
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                // 接收时间
}

// TableName 指定表名
func (PaymentEvent) TableName() string {
	return "payment_events"
}

// PaymentCapture 先付后下单场景中已到账的款项，下单时核销
type PaymentCapture struct {
	ID         uint       `gorm:"primarykey" json:"id"`                                    // 主键
	Reference  string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"` // 网关流水号
	UserID     uint       `gorm:"index" json:"user_id,omitempty"`                          // 付款用户（网关回传时填充）
	Amount     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`     // 到账金额
	Currency   string     `gorm:"type:varchar(8);not null" json:"currency"`                // 币种
	Status     string     `gorm:"type:varchar(20);not null;index" json:"status"`           // captured / consumed
	OrderID    string     `gorm:"type:varchar(32);index" json:"order_id,omitempty"`        // 核销订单号
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`                                   // 核销时间
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt  time.Time  `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (PaymentCapture) TableName() string {
	return "payment_captures"
}
