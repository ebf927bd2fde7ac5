package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/studyflow/studyflow-api/api/swagger"
	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/handler"
	internalmiddleware "github.com/studyflow/studyflow-api/internal/middleware"
	"github.com/studyflow/studyflow-api/internal/optimizer"
	"github.com/studyflow/studyflow-api/internal/repository"
	"github.com/studyflow/studyflow-api/internal/service"
	"github.com/studyflow/studyflow-api/pkg/cache"
	"github.com/studyflow/studyflow-api/pkg/config"
	"github.com/studyflow/studyflow-api/pkg/database"
	"github.com/studyflow/studyflow-api/pkg/export"
	"github.com/studyflow/studyflow-api/pkg/jobs"
	"github.com/studyflow/studyflow-api/pkg/logger"
	corsmiddleware "github.com/studyflow/studyflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studyflow/studyflow-api/pkg/middleware/requestid"
	"github.com/studyflow/studyflow-api/pkg/storage"
)

// @title StudyFlow API
// @version 1.0.0
// @description Calendar schedule optimization service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
	} else {
		redisClient = client
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Optimizer.ResultCacheTTL, logr, cfg.Optimizer.CacheEnabled && redisClient != nil)
	defer cacheRepo.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "studyflow-api",
	})

	engine := optimizer.New(logr)
	optimizationSvc := service.NewOptimizationService(eventRepo, prefRepo, cacheSvc, metricsSvc, engine, validate, logr, service.OptimizationConfig{
		DefaultPreset:  cfg.Optimizer.DefaultPreset,
		Horizon:        cfg.Optimizer.Horizon,
		ResultCacheTTL: cfg.Optimizer.ResultCacheTTL,
	})
	reportStore, err := storage.NewLocalStorage(cfg.Reports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	reportSigner := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Reports.LinkTTL)
	reportSvc := service.NewReportService(optimizationSvc, export.NewCSVExporter(), export.NewPDFExporter(), reportStore, reportSigner, logr, cfg.Reports.Enabled)

	warmupQueue := jobs.NewQueue("optimizer-warmup", jobs.QueueConfig{Workers: cfg.Optimizer.WarmupConcurrency, Logger: logr})
	warmupQueue.Register(service.JobTypeCacheWarmup, func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(service.WarmupPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		_, err := optimizationSvc.Optimize(ctx, payload.UserID, dto.OptimizeScheduleRequest{Preset: payload.Preset})
		return err
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	warmupQueue.Start(ctx)
	defer warmupQueue.Stop()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reportSvc.CleanupArchived(cfg.Reports.LinkTTL)
			}
		}
	}()

	eventSvc := service.NewEventService(eventRepo, cacheSvc, warmupQueue, validate, logr)
	prefSvc := service.NewPreferenceService(prefRepo, cacheSvc, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	optimizationHandler := handler.NewOptimizationHandler(optimizationSvc, reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", internalmiddleware.JWT(authSvc), authHandler.Me)
		}

		// The signed token authorizes the download, no JWT needed.
		api.GET("/schedule/optimize/report/download", optimizationHandler.Download)

		protected := api.Group("")
		protected.Use(internalmiddleware.JWT(authSvc))
		{
			protected.GET("/events", eventHandler.List)
			protected.POST("/events", eventHandler.Create)
			protected.GET("/events/:id", eventHandler.Get)
			protected.PUT("/events/:id", eventHandler.Update)
			protected.DELETE("/events/:id", eventHandler.Delete)

			protected.GET("/preferences", prefHandler.Get)
			protected.PUT("/preferences", prefHandler.Update)
			protected.DELETE("/preferences", prefHandler.Reset)

			protected.POST("/schedule/optimize", optimizationHandler.Optimize)
			protected.POST("/schedule/optimize/apply", optimizationHandler.Apply)
			protected.GET("/schedule/optimize/report", optimizationHandler.Report)
			protected.POST("/schedule/optimize/report/link", optimizationHandler.ReportLink)

			protected.GET("/status", metricsHandler.Status)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
