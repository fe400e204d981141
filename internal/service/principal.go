package service

import (
	"fmt"
	"strings"

	"github.com/sixpine/internal/constants"
)

// Principal 显式传入的操作者身份，核心操作不从全局上下文读取登录态
type Principal struct {
	Kind string
	ID   uint
	Name string
}

// UserPrincipal 购物者
func UserPrincipal(id uint) Principal {
	return Principal{Kind: constants.PrincipalUser, ID: id}
}

// AdminPrincipal 员工
func AdminPrincipal(id uint, name string) Principal {
	return Principal{Kind: constants.PrincipalAdmin, ID: id, Name: name}
}

// SystemPrincipal 系统内部流转（如货到付款签收自动置为已支付）
func SystemPrincipal(name string) Principal {
	return Principal{Kind: constants.PrincipalSystem, Name: name}
}

// WebhookPrincipal 支付网关回调
func WebhookPrincipal(eventID string) Principal {
	return Principal{Kind: constants.PrincipalWebhook, Name: eventID}
}

// Actor 写入历史的操作者标识 kind:id，无 ID 时使用 kind:name
func (p Principal) Actor() string {
	if p.ID != 0 {
		return fmt.Sprintf("%s:%d", p.Kind, p.ID)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return p.Kind
	}
	return p.Kind + ":" + name
}

// IsUser 是否购物者
func (p Principal) IsUser() bool {
	return p.Kind == constants.PrincipalUser && p.ID != 0
}

// IsStaff 员工、系统或网关
func (p Principal) IsStaff() bool {
	switch p.Kind {
	case constants.PrincipalAdmin:
		return p.ID != 0
	case constants.PrincipalSystem, constants.PrincipalWebhook:
		return true
	default:
		return false
	}
}
