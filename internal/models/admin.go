package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 员工账号；非超级管理员的权限由 casbin 角色决定
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`         // 登录名
	DisplayName        string         `gorm:"type:varchar(64)" json:"display_name"`         // 显示名（写入状态历史）
	PasswordHash       string         `gorm:"not null" json:"-"`                            // 密码哈希
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // Token 版本
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 该时间点前签发的 Token 失效
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 超级管理员（跳过 RBAC）
	LastLoginAt        *time.Time     `json:"last_login_at"`                                // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
