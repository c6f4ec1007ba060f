package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"obsidiana-backend/config"
	_ "obsidiana-backend/docs" // Important for Swagger
	"obsidiana-backend/internal/content"
	"obsidiana-backend/internal/delivery/http/middleware"
	v1 "obsidiana-backend/internal/delivery/http/v1"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/repository/postgres"
	"obsidiana-backend/internal/usecase"
	"obsidiana-backend/pkg/database"
	"obsidiana-backend/pkg/logger"
	"obsidiana-backend/pkg/redis"
	"obsidiana-backend/pkg/security"
	"obsidiana-backend/pkg/web3forms"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Código Obsidiana API
// @version         1.0
// @description     Contact form relay and content index for the Código Obsidiana site.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting obsidiana backend", "port", cfg.Port)

	env := "development"
	if cfg.IsProduction() {
		env = "production"
	}
	secLog := security.InitSecurityLogger("obsidiana-backend", env)
	defer secLog.Sync()

	ctx := context.Background()
	checks := map[string]usecase.HealthCheck{}

	// 3. Optional Database
	var (
		submissionRepo domain.SubmissionRepository
		contentRepo    domain.ContentRepository
	)
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		submissionRepo = postgres.NewSubmissionRepository(dbPool)
		contentRepo = postgres.NewContentRepository(dbPool)
		checks["database"] = dbPool.Ping
	}

	// 4. Optional Redis for rate limiting
	var redisClient *goredis.Client
	if cfg.UpstashRedisURL != "" {
		redisClient, err = redis.Connect(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }
		}
	}
	rateLimiter := middleware.NewRateLimiter(redisClient, secLog)
	defer rateLimiter.Close()

	// 5. Web3Forms relay
	relay := web3forms.NewClient(web3forms.Config{
		Endpoint:  cfg.Web3FormsEndpoint,
		AccessKey: cfg.Web3FormsAccessKey,
		Timeout:   cfg.Web3FormsTimeout,
	})
	if !relay.IsConfigured() {
		logger.Log.Warn("Web3Forms access key not configured - contact submissions will be unavailable")
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(relay, submissionRepo, secLog, usecase.ContactConfig{
		SiteName:      cfg.ContactSiteName,
		FallbackError: cfg.ContactFallbackError,
		FallbackEmail: cfg.ContactFallbackEmail,
		FormTTL:       cfg.ContactFormTTL,
	})
	defer contactUC.Close()

	contentUC := usecase.NewContentUsecase(contentRepo)
	healthUC := usecase.NewHealthUsecase(checks)

	var indexer v1.Reindexer
	if contentRepo != nil {
		indexer = usecase.NewContentIndexer(contentUC, cfg.ContentRoot, content.Options{AssetsDir: cfg.ContentAssetsDir})
	}

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:   contactUC,
		ContentUC:   contentUC,
		HealthUC:    healthUC,
		Indexer:     indexer,
		RateLimiter: rateLimiter,
		SecLog:      secLog,
		Config:      cfg,
	})

	// 8. Start Server
	// Mood streams stay open until their request context ends, so Shutdown
	// cancels the base context instead of waiting them out.
	baseCtx, stopStreams := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(stopStreams)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
