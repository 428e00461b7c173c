package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/adcrafted/adspace-service/internal/application/service"
	"github.com/adcrafted/adspace-service/internal/domain/inventory"
	"github.com/adcrafted/adspace-service/internal/domain/store"
	"github.com/adcrafted/adspace-service/internal/infrastructure/blob"
	"github.com/adcrafted/adspace-service/internal/infrastructure/cache"
	"github.com/adcrafted/adspace-service/internal/infrastructure/persistence"
	"github.com/adcrafted/adspace-service/internal/interfaces/http/handlers"
	"github.com/adcrafted/adspace-service/pkg/config"
	"github.com/adcrafted/adspace-service/pkg/logger"
	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-health-check" {
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel, cfg.Environment)

	schema := store.KeySchema{
		cfg.Store.AdSpaceTable: {HashAttr: inventory.AttrAdSpaceID},
		cfg.Store.AdTable:      {HashAttr: inventory.AttrAdSpaceID, RangeAttr: inventory.AttrAdID},
	}

	items, cleanup, err := initItemStore(cfg, schema)
	if err != nil {
		logger.Fatalf("Failed to initialize item store: %v", err)
	}
	defer cleanup()
	logger.Infof("Using %s item store", cfg.Store.Backend)

	blobs, err := initBlobStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize blob store: %v", err)
	}
	logger.Infof("Using %s blob store", cfg.Blob.Backend)

	svcConfig := service.Config{
		Tables: service.Tables{
			AdSpace: cfg.Store.AdSpaceTable,
			Ad:      cfg.Store.AdTable,
		},
		StrictUploads: cfg.Blob.StrictUploads,
	}
	adSpaceService := service.NewAdSpaceService(items, blobs, logger, svcConfig)
	adService := service.NewAdService(items, blobs, logger, svcConfig)

	adSpaceHandler := handlers.NewAdSpaceHandler(adSpaceService)
	adHandler := handlers.NewAdHandler(adService)

	router := setupRouter(cfg, logger)
	adSpaceHandler.RegisterRoutes(router)
	adHandler.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(monitoring.PrometheusHandler()))

	// Disk-backed blobs are served straight from the blob directory.
	if cfg.Blob.Backend == "disk" {
		router.Static("/blobs", cfg.Blob.Dir)
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Infof("Starting AdSpace API server on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func initItemStore(cfg *config.Config, schema store.KeySchema) (store.ItemStore, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		db, err := initDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return persistence.NewPostgresItemStore(db, schema), func() { db.Close() }, nil

	case "redis":
		client, err := initRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisItemStore(client, schema), func() { client.Close() }, nil

	case "memory", "":
		return persistence.NewMemoryItemStore(schema), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown item store backend %q", cfg.Store.Backend)
	}
}

func initBlobStore(cfg *config.Config) (store.BlobStore, error) {
	switch cfg.Blob.Backend {
	case "disk":
		return blob.NewDiskBlobStore(cfg.Blob.Dir, cfg.Blob.PublicBaseURL)
	case "memory", "":
		return blob.NewMemoryBlobStore(cfg.Blob.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown blob store backend %q", cfg.Blob.Backend)
	}
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpenConns := cfg.Database.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 50
	}
	maxIdleConns := cfg.Database.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 10
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	poolSize := cfg.Redis.PoolSize
	if poolSize == 0 {
		poolSize = 100
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     poolSize,
		ReadTimeout:  time.Duration(cfg.Redis.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Redis.WriteTimeoutSeconds) * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func setupRouter(cfg *config.Config, logger *logger.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(loggingMiddleware(logger))
	router.Use(monitoring.MetricsMiddleware())

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func loggingMiddleware(logger *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: logger.Writer(),
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("[%s] %s %s %d %s %s\n",
				param.TimeStamp.Format("2006-01-02 15:04:05"),
				param.Method,
				param.Path,
				param.StatusCode,
				param.Latency,
				param.ClientIP,
			)
		},
	})
}
