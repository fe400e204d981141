package repository

import "gorm.io/gorm"

// applyPagination 应用分页参数；page 小于 1 时按第一页处理，pageSize 非正数时不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
