package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/ecotrack-backend/internal/ai"
	"github.com/ignatzorin/ecotrack-backend/internal/config"
	"github.com/ignatzorin/ecotrack-backend/internal/db"
	httpHandlers "github.com/ignatzorin/ecotrack-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/ecotrack-backend/internal/http/router"
	"github.com/ignatzorin/ecotrack-backend/internal/logger"
	"github.com/ignatzorin/ecotrack-backend/internal/repository"
	"github.com/ignatzorin/ecotrack-backend/internal/service"
	"github.com/ignatzorin/ecotrack-backend/internal/storage"
	"github.com/ignatzorin/ecotrack-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	reportRepo := repository.NewReportRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	rewardRepo := repository.NewRewardRepository(dbConn)

	// Сервисы.
	rewardService := service.NewRewardService(rewardRepo, userRepo, service.RewardConfig{
		ReportPoints:  cfg.ReportPoints,
		CollectPoints: cfg.CollectPoints,
	})

	var verifier service.VisionVerifier
	if cfg.AIBaseURL != "" && cfg.AIModel != "" {
		verifier = ai.NewClient(cfg.AIBaseURL, cfg.AIModel, cfg.AITimeout)
	} else {
		log.Printf("main: AI_BASE_URL не задан, верификация фото недоступна")
	}

	lifecycleService := service.NewLifecycleService(reportRepo, userRepo, verifier, photoStorage, rewardService, service.LifecycleConfig{
		MinConfidence:    cfg.VerifyMinConfidence,
		GeofenceRadiusKm: cfg.GeofenceRadiusKm,
	})
	routeService := service.NewRouteService(lifecycleService, reportRepo)
	cacheService := service.NewCacheService()
	defer cacheService.Stop()
	hotspotService := service.NewHotspotService(reportRepo, cacheService, service.HotspotConfig{
		RadiusM:    cfg.HotspotRadiusM,
		MinReports: cfg.HotspotMinReports,
		CacheTTL:   cfg.HotspotCacheTTL,
	})

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()
	lifecycleService.SetHub(hub)
	hotspotService.SetHub(hub)

	// HTTP хэндлеры.
	reportHandler := httpHandlers.NewReportHandler(lifecycleService, hotspotService)
	collectionHandler := httpHandlers.NewCollectionHandler(lifecycleService, hotspotService)
	routeHandler := httpHandlers.NewRouteHandler(routeService)
	hotspotHandler := httpHandlers.NewHotspotHandler(hotspotService)
	leaderboardHandler := httpHandlers.NewLeaderboardHandler(rewardService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, cfg.MediaStoragePath)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, reportHandler, collectionHandler, routeHandler, hotspotHandler, leaderboardHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
