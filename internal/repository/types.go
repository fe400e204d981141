package repository

import "time"

// DerivedIdempotencyPrefix 服务端推导的下单幂等键前缀
const DerivedIdempotencyPrefix = "d:"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderID       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// DiscountListFilter 查询折扣规则列表的过滤条件
type DiscountListFilter struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}
