package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
// 无规格商品直接使用 StockQuantity；有规格商品以规格库存为准
type Product struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID     uint           `gorm:"index" json:"category_id"`                                  // 分类ID
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`                   // 标题
	Description    string         `gorm:"type:text" json:"description"`                              // 描述
	PriceAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 基础价格
	OldPriceAmount *Money         `gorm:"type:decimal(20,2)" json:"old_price_amount,omitempty"`      // 划线价（仅展示）
	StockQuantity  int            `gorm:"not null;default:0" json:"stock_quantity"`                  // 库存（无规格商品）
	Images         StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder      int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// IsInStock 是否有货
func (p Product) IsInStock() bool {
	return p.StockQuantity > 0
}
