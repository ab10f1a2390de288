package router

import (
	"time"

	"diplomsklad/internal/cache"
	"diplomsklad/internal/config"
	"diplomsklad/internal/handler"
	"diplomsklad/internal/infra"
	"diplomsklad/internal/middleware"
	"diplomsklad/internal/repository"
	"diplomsklad/internal/service"
	"diplomsklad/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: the barcode cache and the sync retry queue are then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, accountingCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout()))
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	var pusher infra.SyncPusher
	if cfg.SyncEndpointURL != "" {
		pusher = infra.NewAccountingClient(cfg.SyncEndpointURL)
	}
	var queue service.SyncQueue
	if rdb != nil {
		queue = worker.NewDispatcher(rdb)
	}
	itemCache := cache.NewItemCache(rdb, cache.DefaultTTL)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	guard := service.NewSecretGuard(cfg.AdminSecret, cfg.AdminSecretHash)
	tokens := service.NewAdminTokenIssuer(cfg.AdminTokenSecret, cfg.AdminTokenTTL())
	userSvc := service.NewUserService(userRepo, guard, tokens)
	operationSvc := service.NewOperationService(itemRepo, userRepo, locationRepo, operationRepo, itemCache)
	itemSvc := service.NewItemService(itemRepo, userRepo, locationRepo, operationSvc, itemCache)
	locationSvc := service.NewLocationService(locationRepo)
	syncSvc := service.NewSyncService(syncLogRepo, pusher, accountingCB, queue)

	// ── Handlers ─────────────────────────────────────────────────────────────
	usersH := handler.NewUserHandler(userSvc)
	itemsH := handler.NewItemHandler(itemSvc)
	operationsH := handler.NewOperationHandler(operationSvc)
	locationsH := handler.NewLocationHandler(locationSvc)
	syncH := handler.NewSyncHandler(syncSvc)
	adminH := handler.NewAdminHandler(itemSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, accountingCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/register", middleware.SecretRateLimiter(), usersH.Register)
		api.POST("/check-admin-secret", middleware.SecretRateLimiter(), usersH.CheckAdminSecret)

		api.GET("/users/:external_id", usersH.Get)
		api.GET("/users/:external_id/items", itemsH.ListByOwner)

		api.POST("/items/scan", itemsH.Scan)
		api.POST("/items", itemsH.Create)

		api.POST("/operations", operationsH.Create)

		api.GET("/locations", locationsH.List)
		api.POST("/locations", locationsH.Create)
		api.PUT("/locations/:id", locationsH.Update)
		api.DELETE("/locations/:id", locationsH.Delete)

		api.POST("/sync", syncH.Sync)
	}

	// Admin surface, bearer token from check-admin-secret
	admin := api.Group("/admin", middleware.AdminAuth(cfg.AdminTokenSecret))
	{
		admin.GET("/operations", operationsH.List)
		admin.GET("/items/export", adminH.ExportStock)
		admin.GET("/items/:id/label", adminH.ItemLabel)
		admin.GET("/sync-logs", syncH.ListLogs)
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
