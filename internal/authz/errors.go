package authz

import "errors"

// ErrRoleNotFound 角色不存在
var ErrRoleNotFound = errors.New("role not found")
