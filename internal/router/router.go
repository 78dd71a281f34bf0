package router

import (
	"fmt"
	"strings"

	"github.com/canteen-rush/internal/cache"
	"github.com/canteen-rush/internal/config"
	adminhandlers "github.com/canteen-rush/internal/http/handlers/admin"
	publichandlers "github.com/canteen-rush/internal/http/handlers/public"
	vendorhandlers "github.com/canteen-rush/internal/http/handlers/vendorapi"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按学生/档口/管理端分组）
	publicHandler := publichandlers.New(c)
	vendorHandler := vendorhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cr"
	}
	redisClient := cache.Client()
	orderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order", redisPrefix),
		WindowSeconds: cfg.Security.OrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.OrderRateLimit.BlockSeconds,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口（无需登录）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", publicHandler.Login)
		}

		// 档口浏览接口（无需登录）
		apiV1.GET("/vendors", publicHandler.ListVendors)
		apiV1.GET("/vendors/:id", publicHandler.GetVendor)
		apiV1.GET("/vendors/:id/menu", publicHandler.GetVendorMenu)

		// 学生接口（需鉴权）
		student := apiV1.Group("")
		student.Use(JWTAuthMiddleware(cfg.JWT.SecretKey), RBACMiddleware(c.AuthzService))
		{
			student.GET("/auth/me", publicHandler.Me)
			student.POST("/orders",
				RateLimitMiddleware(redisClient, orderRule, KeyByUserID),
				publicHandler.PlaceOrder)
			student.GET("/orders", publicHandler.ListMyOrders)
			student.GET("/orders/:token", publicHandler.GetMyOrder)
			student.POST("/orders/:token/cancel", publicHandler.CancelMyOrder)
			student.GET("/penalties/me", publicHandler.ListMyPenalties)
		}

		// 档口接口
		vendorGroup := apiV1.Group("/vendor")
		vendorGroup.Use(JWTAuthMiddleware(cfg.JWT.SecretKey), RBACMiddleware(c.AuthzService))
		{
			vendorGroup.GET("/orders", vendorHandler.ListOrders)
			vendorGroup.GET("/orders/active", vendorHandler.ListActiveOrders)
			vendorGroup.PATCH("/orders/:token/status", vendorHandler.UpdateOrderStatus)
			vendorGroup.POST("/orders/:token/cancel", vendorHandler.CancelOrder)
			vendorGroup.PATCH("/open", vendorHandler.SetOpen)
			vendorGroup.GET("/stats", vendorHandler.GetStats)
			vendorGroup.GET("/busy-hours", vendorHandler.GetBusyHours)
			vendorGroup.GET("/food-items", vendorHandler.ListFoodItems)
			vendorGroup.POST("/food-items", vendorHandler.CreateFoodItem)
			vendorGroup.PUT("/food-items/:id", vendorHandler.UpdateFoodItem)
			vendorGroup.PATCH("/food-items/:id/availability", vendorHandler.ToggleFoodItem)
			vendorGroup.DELETE("/food-items/:id", vendorHandler.DeleteFoodItem)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey), RBACMiddleware(c.AuthzService))
		{
			admin.GET("/vendors", adminHandler.ListVendors)
			admin.POST("/vendors", adminHandler.CreateVendor)
			admin.PUT("/vendors/:id", adminHandler.UpdateVendor)
			admin.DELETE("/vendors/:id", adminHandler.DeleteVendor)

			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:id/unblock", adminHandler.UnblockStudent)

			admin.GET("/penalties", adminHandler.ListPenalties)
			admin.POST("/penalties/:id/clear", adminHandler.ClearPenalty)

			admin.GET("/analytics", adminHandler.GetAnalytics)

			admin.GET("/authz/roles", adminHandler.ListRoles)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantRolePolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeRolePolicy)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
