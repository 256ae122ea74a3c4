package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"coursehub-backend/internal/config"
	infraCache "coursehub-backend/internal/infrastructure/cache"
	infraDB "coursehub-backend/internal/infrastructure/database"
	"coursehub-backend/pkg/cache"
	"coursehub-backend/pkg/database"
	"coursehub-backend/pkg/jwt"

	cartHandler "coursehub-backend/internal/domains/cart/handler"
	cartRepo "coursehub-backend/internal/domains/cart/repository"
	cartService "coursehub-backend/internal/domains/cart/service"
	courseHandler "coursehub-backend/internal/domains/course/handler"
	courseRepo "coursehub-backend/internal/domains/course/repository"
	courseService "coursehub-backend/internal/domains/course/service"
	enrollmentHandler "coursehub-backend/internal/domains/enrollment/handler"
	enrollmentRepo "coursehub-backend/internal/domains/enrollment/repository"
	enrollmentService "coursehub-backend/internal/domains/enrollment/service"
	idempotencyRepo "coursehub-backend/internal/domains/idempotency/repository"
	idempotencyService "coursehub-backend/internal/domains/idempotency/service"
	orderHandler "coursehub-backend/internal/domains/order/handler"
	orderRepo "coursehub-backend/internal/domains/order/repository"
	orderService "coursehub-backend/internal/domains/order/service"
	paymentHandler "coursehub-backend/internal/domains/payment/handler"
	paymentRepo "coursehub-backend/internal/domains/payment/repository"
	paymentService "coursehub-backend/internal/domains/payment/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the full dependency graph. Initialization order matters:
// config, infrastructure, repositories, services, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config      *config.Config
	DB          *infraDB.PostgresDB
	Cache       cache.Cache
	RedisClient *infraCache.RedisClient
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	TxRunner    database.TxRunner

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	CourseRepo      courseRepo.RepositoryInterface
	CartRepo        cartRepo.RepositoryInterface
	OrderRepo       orderRepo.RepositoryInterface
	EnrollmentRepo  enrollmentRepo.RepositoryInterface
	PaymentRepo     paymentRepo.RepositoryInterface
	IdempotencyRepo idempotencyRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	IdempotencyService *idempotencyService.Service
	ValidationService  *cartService.ValidationService
	CourseService      courseService.ServiceInterface
	CartService        cartService.ServiceInterface
	OrderService       orderService.ServiceInterface
	EnrollmentService  enrollmentService.ServiceInterface
	PaymentService     paymentService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	CourseHandler     *courseHandler.CourseHandler
	CartHandler       *cartHandler.CartHandler
	OrderHandler      *orderHandler.OrderHandler
	EnrollmentHandler *enrollmentHandler.EnrollmentHandler
	PaymentHandler    *paymentHandler.PaymentHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds and wires the whole dependency graph
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := infraDB.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	c.TxRunner = database.NewPoolRunner(db.Pool)
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE + QUEUE CLIENT
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Cache misses degrade to DB reads; not fatal
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}

	c.RedisClient = redisClient
	c.Cache = infraCache.NewCache(redisClient)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	// ========================================
	// STEP 4: INITIALIZE REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 5: INITIALIZE SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 6: INITIALIZE HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CourseRepo = courseRepo.NewPostgresRepository(pool, c.Cache)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresRepository(pool)
	c.EnrollmentRepo = enrollmentRepo.NewPostgresRepository(pool)
	c.PaymentRepo = paymentRepo.NewPostgresRepository(pool)
	c.IdempotencyRepo = idempotencyRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	// Idempotency first: cart checkout and payment attempts wrap it
	c.IdempotencyService = idempotencyService.NewService(
		c.IdempotencyRepo,
		c.TxRunner,
		c.Config.Idempotency.RecordTTL,
	)

	c.ValidationService = cartService.NewValidationService(c.CourseRepo, c.EnrollmentRepo)

	c.CourseService = courseService.NewCourseService(c.CourseRepo)

	c.CartService = cartService.NewCartService(
		c.CartRepo,
		c.OrderRepo,
		c.EnrollmentRepo,
		c.ValidationService,
		c.IdempotencyService,
		c.TxRunner,
	)

	c.OrderService = orderService.NewOrderService(c.OrderRepo)

	c.EnrollmentService = enrollmentService.NewEnrollmentService(
		c.EnrollmentRepo,
		c.IdempotencyService,
		c.TxRunner,
	)

	c.PaymentService = paymentService.NewPaymentService(
		c.PaymentRepo,
		c.EnrollmentRepo,
		c.IdempotencyService,
		c.TxRunner,
		c.AsynqClient,
	)
}

func (c *Container) initHandlers() {
	c.CourseHandler = courseHandler.NewCourseHandler(c.CourseService)
	c.CartHandler = cartHandler.NewCartHandler(c.CartService)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.EnrollmentHandler = enrollmentHandler.NewEnrollmentHandler(c.EnrollmentService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
}

// ========================================
// HELPER METHODS
// ========================================

// Cleanup releases infrastructure resources on shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
