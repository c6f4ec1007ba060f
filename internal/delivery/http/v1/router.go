package v1

import (
	"time"

	"obsidiana-backend/config"
	"obsidiana-backend/internal/delivery/http/middleware"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/usecase"
	"obsidiana-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC   domain.ContactUsecase
	ContentUC   domain.ContentUsecase
	HealthUC    usecase.HealthUsecase
	Indexer     Reindexer // nil disables POST /admin/content/sync
	RateLimiter *middleware.RateLimiter
	SecLog      *security.SecurityLogger
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Public routes
	contactLimit := deps.RateLimiter.Middleware(middleware.ContactRateLimitConfig(cfg.RateLimitContactThreshold, window))
	NewContactHandler(v1, deps.ContactUC, contactLimit)
	NewContentHandler(v1, deps.ContentUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.AdminJWTSecret, deps.SecLog))
	{
		NewAdminHandler(admin, deps.ContactUC, deps.Indexer)
	}

	return r
}
