package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 预置角色矩阵
// order_support 只能写备注；fulfillment 推进履约状态；finance 修改支付状态
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "catalog_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/products/:id/variants", Action: "*"},
				{Object: "/admin/products/:id/variants/:variant_id", Action: "*"},
				{Object: "/admin/discounts", Action: "*"},
				{Object: "/admin/discounts/:id", Action: "*"},
			},
		},
		{
			Role:     "order_support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/orders/:id/add_note", Action: "POST"},
			},
		},
		{
			Role:     "fulfillment",
			Inherits: []string{"order_support"},
			Policies: []Policy{
				{Object: "/admin/orders/:id/update_status", Action: "POST"},
			},
		},
		{
			Role:     "finance",
			Inherits: []string{"order_support"},
			Policies: []Policy{
				{Object: "/admin/orders/:id/update_payment_status", Action: "POST"},
				{Object: "/admin/settings/pricing", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（幂等）
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
			return fmt.Errorf("create builtin role failed: %w", err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
