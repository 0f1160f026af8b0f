package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/ecotrack-backend/internal/config"
	"github.com/ignatzorin/ecotrack-backend/internal/http/handlers"
	"github.com/ignatzorin/ecotrack-backend/internal/http/middleware"
	"github.com/ignatzorin/ecotrack-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	reportHandler *handlers.ReportHandler,
	collectionHandler *handlers.CollectionHandler,
	routeHandler *handlers.RouteHandler,
	hotspotHandler *handlers.HotspotHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	// Публичные маршруты: карта работает без авторизации.
	api.GET("/ws", wsHandler.Handle)
	api.GET("/hotspots", hotspotHandler.List)
	api.GET("/leaderboard", leaderboardHandler.List)
	api.GET("/reports", reportHandler.List)
	api.GET("/reports/:id", middleware.UUIDValidator("id"), reportHandler.Get)

	// Защищённые маршруты.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	rateLimitStore := middleware.NewRateLimitStore(cfg.RedisURL)
	protected.Use(middleware.RateLimitMiddleware(rateLimitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.POST("/reports", reportHandler.Create)
		protected.POST("/reports/:id/claim", middleware.UUIDValidator("id"), collectionHandler.Claim)
		protected.POST("/reports/:id/release", middleware.UUIDValidator("id"), collectionHandler.Release)
		protected.POST("/reports/:id/verify-before", middleware.UUIDValidator("id"), collectionHandler.VerifyBefore)
		protected.POST("/reports/:id/verify-after", middleware.UUIDValidator("id"), collectionHandler.VerifyAfter)

		protected.GET("/route", routeHandler.List)
		protected.POST("/route/:id", middleware.UUIDValidator("id"), routeHandler.Add)
		protected.DELETE("/route/:id", middleware.UUIDValidator("id"), routeHandler.Remove)
	}

	return r
}
