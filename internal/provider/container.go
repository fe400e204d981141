package provider

import (
	"github.com/sixpine/internal/authz"
	"github.com/sixpine/internal/cache"
	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/events"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/queue"
	"github.com/sixpine/internal/repository"
	"github.com/sixpine/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	DB             *gorm.DB
	QueueClient    *queue.Client
	EventPublisher events.Publisher

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	CategoryRepo     repository.CategoryRepository
	ProductRepo      repository.ProductRepository
	VariantRepo      repository.VariantRepository
	CartRepo         repository.CartRepository
	AddressRepo      repository.AddressRepository
	OrderRepo        repository.OrderRepository
	HistoryRepo      repository.OrderHistoryRepository
	DiscountRepo     repository.DiscountRepository
	PaymentEventRepo repository.PaymentEventRepository
	SettingRepo      repository.SettingRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	UserAuthService       *service.UserAuthService
	SettingService        *service.SettingService
	PricingEngine         *service.PricingEngine
	CategoryService       *service.CategoryService
	ProductService        *service.ProductService
	DiscountService       *service.DiscountService
	CartService           *service.CartService
	AddressService        *service.AddressService
	CheckoutService       *service.CheckoutService
	OrderStatusMachine    *service.OrderStatusMachine
	OrderQueryService     *service.OrderQueryService
	PaymentWebhookService *service.PaymentWebhookService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，失败时退化为不投递的空客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:         cfg,
		DB:             models.DB,
		QueueClient:    queueClient,
		EventPublisher: events.NewPublisher(cfg.Events),
	}
	c.wire()
	return c
}

// NewContainerWithDB 基于给定数据库构建容器，不连接外部 Redis、队列与 Kafka
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) *Container {
	queueClient, _ := queue.NewClient(nil)
	c := &Container{
		Config:         cfg,
		DB:             db,
		QueueClient:    queueClient,
		EventPublisher: events.NoopPublisher{},
	}
	c.wire()
	return c
}

func (c *Container) wire() {
	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logger.Warnw("provider_close_event_publisher_failed", "error", err)
		}
	}
}

func (c *Container) initRepositories() {
	db := c.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewVariantRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.HistoryRepo = repository.NewOrderHistoryRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.PaymentEventRepo = repository.NewPaymentEventRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)

	c.SettingService = service.NewSettingService(c.SettingRepo, service.PricingParamsFromConfig(c.Config.Pricing))
	c.PricingEngine = service.NewPricingEngine(c.SettingService, c.DiscountRepo)

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VariantRepo)
	c.DiscountService = service.NewDiscountService(c.DiscountRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.VariantRepo, c.PricingEngine)
	c.AddressService = service.NewAddressService(c.DB, c.AddressRepo)

	c.CheckoutService = service.NewCheckoutService(service.CheckoutServiceOptions{
		DB:                c.DB,
		CartRepo:          c.CartRepo,
		ProductRepo:       c.ProductRepo,
		VariantRepo:       c.VariantRepo,
		AddressRepo:       c.AddressRepo,
		OrderRepo:         c.OrderRepo,
		HistoryRepo:       c.HistoryRepo,
		DiscountRepo:      c.DiscountRepo,
		Pricing:           c.PricingEngine,
		Validator:         service.NewStockValidator(c.ProductRepo, c.VariantRepo),
		Verifier:          service.NewCapturePaymentVerifier(c.PaymentEventRepo),
		Locker:            cache.NewLocker(),
		Tasks:             c.QueueClient,
		IdempotencyWindow: c.Config.Checkout.IdempotencyWindow,
		InflightLockTTL:   c.Config.Checkout.InflightLockTTL,
	})
	c.OrderStatusMachine = service.NewOrderStatusMachine(c.DB, c.OrderRepo, c.HistoryRepo, c.ProductRepo, c.VariantRepo, c.QueueClient)
	c.OrderQueryService = service.NewOrderQueryService(c.OrderRepo)
	c.PaymentWebhookService = service.NewPaymentWebhookService(c.Config.Payment.WebhookSecret, c.PaymentEventRepo, c.OrderStatusMachine)
}
