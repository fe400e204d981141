package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Address 用户收货地址；同一用户至多一条默认地址
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`                           // 主键
	UserID     uint           `gorm:"not null;index" json:"user_id"`                  // 用户ID
	FullName   string         `gorm:"type:varchar(120);not null" json:"full_name"`    // 收件人
	Phone      string         `gorm:"type:varchar(32);not null" json:"phone"`         // 电话
	Line1      string         `gorm:"type:varchar(255);not null" json:"line1"`        // 地址行1
	Line2      string         `gorm:"type:varchar(255)" json:"line2"`                 // 地址行2
	City       string         `gorm:"type:varchar(120);not null" json:"city"`         // 城市
	State      string         `gorm:"type:varchar(120)" json:"state"`                 // 省/州
	PostalCode string         `gorm:"type:varchar(32);not null" json:"postal_code"`   // 邮编
	Country    string         `gorm:"type:varchar(64);not null" json:"country"`       // 国家
	IsDefault  bool           `gorm:"not null;default:false;index" json:"is_default"` // 是否默认
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                     // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}

// Snapshot 复制为订单地址快照
func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// AddressSnapshot 下单时复制的地址值，不随地址簿修改而变化
type AddressSnapshot struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Value 实现 driver.Valuer 接口
func (s AddressSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *AddressSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = AddressSnapshot{}
		return nil
	}
	raw, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
