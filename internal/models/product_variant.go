package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格（颜色/尺码/花色），可覆盖价格并独立计库存
type ProductVariant struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                                             // 主键
	ProductID      uint           `gorm:"not null;index;uniqueIndex:idx_product_variant_sku" json:"product_id"`             // 商品ID
	SKU            string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_variant_sku" json:"sku"`         // 规格编码（同商品内唯一）
	Color          string         `gorm:"type:varchar(64)" json:"color,omitempty"`                                          // 颜色
	Size           string         `gorm:"type:varchar(64)" json:"size,omitempty"`                                           // 尺码
	Pattern        string         `gorm:"type:varchar(64)" json:"pattern,omitempty"`                                        // 花色
	PriceAmount    *Money         `gorm:"type:decimal(20,2)" json:"price_amount,omitempty"`                                 // 覆盖价格（为空时使用商品价格）
	OldPriceAmount *Money         `gorm:"type:decimal(20,2)" json:"old_price_amount,omitempty"`                             // 覆盖划线价
	StockQuantity  int            `gorm:"not null;default:0" json:"stock_quantity"`                                         // 库存
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                                              // 是否启用
	SortOrder      int            `gorm:"default:0;index" json:"sort_order"`                                                // 排序权重
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                                          // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                                       // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                                   // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// IsInStock 是否有货
func (v ProductVariant) IsInStock() bool {
	return v.StockQuantity > 0
}

// Label 规格描述，例如 "Blue / L / Striped"
func (v ProductVariant) Label() string {
	parts := make([]string, 0, 3)
	for _, value := range []string{v.Color, v.Size, v.Pattern} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " / ")
}
