package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	cases := []struct {
		role  string
		obj   string
		act   string
		allow bool
	}{
		{"student", "/api/v1/orders", "POST", true},
		{"student", "/api/v1/orders/AB12CD", "GET", true},
		{"student", "/api/v1/orders/AB12CD/cancel", "POST", true},
		{"student", "/api/v1/vendor/orders", "GET", false},
		{"student", "/api/v1/admin/vendors", "GET", false},
		{"vendor", "/api/v1/vendor/orders/AB12CD/status", "PATCH", true},
		{"vendor", "/api/v1/vendor/food-items/7", "DELETE", true},
		{"vendor", "/api/v1/admin/vendors", "GET", false},
		{"admin", "/api/v1/admin/vendors/3", "DELETE", true},
		{"admin", "/api/v1/vendor/stats", "GET", true},
	}
	for _, c := range cases {
		allow, err := svc.EnforceUser(0, c.role, c.obj, c.act)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", c.role, c.act, c.obj, err)
		}
		if allow != c.allow {
			t.Fatalf("enforce %s %s %s = %v, want %v", c.role, c.act, c.obj, allow, c.allow)
		}
	}
}

func TestEnforceUserDirectPolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	// 学生角色默认无权访问分析接口
	allow, err := svc.EnforceUser(42, "student", "/api/v1/admin/analytics", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("expected deny before direct grant")
	}

	if err := svc.GrantUserPolicy(42, "/admin/analytics", "GET"); err != nil {
		t.Fatalf("grant user policy failed: %v", err)
	}
	allow, err = svc.EnforceUser(42, "student", "/api/v1/admin/analytics", "GET")
	if err != nil {
		t.Fatalf("enforce after grant failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow after direct grant")
	}

	policies, err := svc.GetUserPolicies(42)
	if err != nil {
		t.Fatalf("get user policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/analytics" {
		t.Fatalf("unexpected user policies: %+v", policies)
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("auditor", "/admin/penalties", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.Enforce("role:auditor", "/api/v1/admin/penalties", "get")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow")
	}

	if err := svc.RevokeRolePolicy("auditor", "/admin/penalties", "GET"); err != nil {
		t.Fatalf("revoke role policy failed: %v", err)
	}
	allow, err = svc.Enforce("role:auditor", "/api/v1/admin/penalties", "GET")
	if err != nil {
		t.Fatalf("enforce after revoke failed: %v", err)
	}
	if allow {
		t.Fatalf("expected deny after revoke")
	}
}

func TestNormalizeObjectStripsPrefix(t *testing.T) {
	cases := map[string]string{
		"/api/v1/orders": "/orders",
		"/api/v1":        "/",
		"orders":         "/orders",
		"":               "/",
		"/vendor/stats":  "/vendor/stats",
	}
	for in, want := range cases {
		if got := NormalizeObject(in); got != want {
			t.Fatalf("NormalizeObject(%q) = %q, want %q", in, got, want)
		}
	}
}
