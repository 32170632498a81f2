package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/cache"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/config"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/logger"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/persistence"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/pim"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/woocommerce"
	"github.com/mugfulmuse/woo-connector/internal/interfaces/http/handler"
	"github.com/mugfulmuse/woo-connector/internal/interfaces/http/middleware"
	"github.com/mugfulmuse/woo-connector/internal/interfaces/http/router"
)

const maxRequestBodySize = 1 << 20 // 1MB

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting WooCommerce Connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	mappingRepo := persistence.NewGormFieldMappingRepository(db.DB)
	historyRepo := persistence.NewGormSyncHistoryRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)

	// Run lock: Redis when reachable, otherwise a process-local lock
	var runLock appconnector.RunLocker
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-process run lock", zap.Error(err))
		runLock = cache.NewInMemoryRunLock()
	} else {
		runLock = cache.NewRedisRunLock(redisClient, cfg.Sync.RunLockTTL)
		log.Info("Redis run lock enabled",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Sync.RunLockTTL))
	}
	cancelPing()
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Source catalog client
	pimClient, err := pim.NewClient(cfg.PIM)
	if err != nil {
		log.Fatal("Failed to configure catalog client", zap.Error(err))
	}

	// Commerce platform gateway, re-built per run from stored settings
	gatewayProvider := woocommerce.NewGatewayProvider(settingRepo, cfg.Sync.GatewayTimeout)

	// Initialize application services
	syncService := appconnector.NewSyncService(
		mappingRepo, historyRepo, settingRepo,
		pimClient, pimClient, pimClient,
		gatewayProvider, runLock, log,
	)
	mappingService := appconnector.NewMappingService(mappingRepo)
	settingsService := appconnector.NewSettingsService(settingRepo, gatewayProvider,
		woocommerce.NewGatewayBuilder(cfg.Sync.GatewayTimeout), log)
	discoveryService := appconnector.NewDiscoveryService(gatewayProvider)

	// Initialize HTTP handlers
	syncHandler := handler.NewSyncHandler(syncService)
	mappingHandler := handler.NewMappingHandler(mappingService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(maxRequestBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(syncHandler).
		Register(mappingHandler).
		Register(settingsHandler).
		Register(discoveryHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		resp := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			resp["pool"] = stats
		}
		c.JSON(http.StatusOK, resp)
	}
}
