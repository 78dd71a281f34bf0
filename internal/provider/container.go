package provider

import (
	"github.com/canteen-rush/internal/authz"
	"github.com/canteen-rush/internal/cache"
	"github.com/canteen-rush/internal/config"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/prediction"
	"github.com/canteen-rush/internal/queue"
	"github.com/canteen-rush/internal/realtime"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Predictor   *prediction.Client
	Publisher   *realtime.Publisher

	// Repositories
	UserRepo         repository.UserRepository
	VendorRepo       repository.VendorRepository
	FoodItemRepo     repository.FoodItemRepository
	OrderRepo        repository.OrderRepository
	PenaltyRepo      repository.PenaltyRepository
	OrderHistoryRepo repository.OrderHistoryRepository
	StatsRepo        repository.StatsRepository

	// Services
	AuthzService     *authz.Service
	AuthService      *service.AuthService
	OrderService     *service.OrderService
	PenaltyService   *service.PenaltyService
	VendorService    *service.VendorService
	FoodService      *service.FoodService
	AnalyticsService *service.AnalyticsService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Predictor:   prediction.New(cfg.Prediction.BaseURL, cfg.Prediction.TimeoutSeconds),
		Publisher:   realtime.NewPublisher(cache.Client()),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.VendorRepo = repository.NewVendorRepository(db)
	c.FoodItemRepo = repository.NewFoodItemRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PenaltyRepo = repository.NewPenaltyRepository(db)
	c.OrderHistoryRepo = repository.NewOrderHistoryRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.PenaltyService = service.NewPenaltyService(c.PenaltyRepo, c.UserRepo, c.Publisher)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.UserRepo,
		c.VendorRepo,
		c.FoodItemRepo,
		c.OrderHistoryRepo,
		c.PenaltyService,
		c.QueueClient,
		c.Predictor,
		c.Publisher,
	)
	c.VendorService = service.NewVendorService(c.VendorRepo, c.StatsRepo)
	c.FoodService = service.NewFoodService(c.FoodItemRepo, c.VendorRepo)
	c.AnalyticsService = service.NewAnalyticsService(c.StatsRepo, c.OrderHistoryRepo)
}
