package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// student 只能操作自己的订单与处罚记录，vendor 管理本档口，admin 全量放行。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "student",
			Policies: []Policy{
				{Object: "/auth/me", Action: "GET"},
				{Object: "/orders", Action: "GET"},
				{Object: "/orders", Action: "POST"},
				{Object: "/orders/:token", Action: "GET"},
				{Object: "/orders/:token/cancel", Action: "POST"},
				{Object: "/penalties/me", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role: "vendor",
			Policies: []Policy{
				{Object: "/auth/me", Action: "GET"},
				{Object: "/vendor/orders", Action: "GET"},
				{Object: "/vendor/orders/active", Action: "GET"},
				{Object: "/vendor/orders/:token/status", Action: "PATCH"},
				{Object: "/vendor/orders/:token/cancel", Action: "POST"},
				{Object: "/vendor/open", Action: "PATCH"},
				{Object: "/vendor/stats", Action: "GET"},
				{Object: "/vendor/busy-hours", Action: "GET"},
				{Object: "/vendor/food-items", Action: "*"},
				{Object: "/vendor/food-items/:id", Action: "*"},
				{Object: "/vendor/food-items/:id/availability", Action: "PATCH"},
			},
			Immutable: true,
		},
		{
			Role: "admin",
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
