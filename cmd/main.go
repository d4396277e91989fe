package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/cache"
	"catalog-service/internal/catalog"
	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/store"
	"catalog-service/internal/taxonomy"
)

// @title Catalog Service API
// @version 1.0
// @description Storefront catalog query service: filtered product listings, facet statistics, exports.
// @BasePath /api/v1
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	logger.Info("✓ Database connected")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, continuing without Redis")
		} else {
			redisClient = redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				logger.WithError(err).Warn("Redis unreachable, continuing with in-process cache only")
				redisClient = nil
			} else {
				logger.Info("✓ Redis connected")
			}
			cancel()
		}
	}

	tax, err := taxonomy.Load(cfg.CatalogPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load category taxonomy")
	}
	logger.WithField("categories", len(tax.Categories())).Info("✓ Taxonomy loaded")

	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unreachable, search analytics disabled")
		} else {
			logger.Info("✓ NATS connected")
			defer publisher.Close()
		}
	}

	productStore := store.NewPostgresStore(db, logger)
	resultCache := cache.New(redisClient, logger)
	compiler := catalog.NewCompiler(tax, logger)
	planner := catalog.NewPlanner(productStore, cfg.StoreTimeout, logger)
	aggregator := catalog.NewAggregator(productStore, compiler, cfg.StoreTimeout, logger)

	catalogHandler := handlers.NewCatalogHandler(compiler, planner, aggregator, resultCache, tax, publisher, logger)
	healthHandler := handlers.NewHealthHandler(db)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.GET("/categories", catalogHandler.GetCategories)

	catalogRoutes := api.Group("/catalog")
	catalogRoutes.Use(middleware.RateLimiter(cfg.RateLimitRPS))
	{
		catalogRoutes.GET("", catalogHandler.GetCatalog)
		catalogRoutes.GET("/stats", catalogHandler.GetCatalogStats)
		catalogRoutes.POST("/export", catalogHandler.ExportCatalog)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("✓ Catalog service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("✓ Server stopped")
}
