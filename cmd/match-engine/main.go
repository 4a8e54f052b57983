package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/talentbridge/match-api/api/swagger"
	"github.com/talentbridge/match-api/internal/handler"
	"github.com/talentbridge/match-api/internal/middleware"
	"github.com/talentbridge/match-api/internal/repository"
	"github.com/talentbridge/match-api/internal/service"
	"github.com/talentbridge/match-api/pkg/cache"
	"github.com/talentbridge/match-api/pkg/config"
	"github.com/talentbridge/match-api/pkg/database"
	"github.com/talentbridge/match-api/pkg/jobs"
	"github.com/talentbridge/match-api/pkg/logger"
	corsmiddleware "github.com/talentbridge/match-api/pkg/middleware/cors"
	reqidmiddleware "github.com/talentbridge/match-api/pkg/middleware/requestid"
)

// @title TalentBridge Match API
// @version 0.1.0
// @description Student-listing matching engine
// @BasePath /
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

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.RecommendationTTL, logr, true)
		}
	}

	snapshotRepo := repository.NewSnapshotRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	queueRepo := repository.NewQueueRepository(db)
	mappingRepo := repository.NewSkillMappingRepository(db)

	scoringSvc := service.NewScoringService(snapshotRepo, historyRepo, mappingRepo, metricsSvc, logr)
	recomputeSvc := service.NewRecomputeService(scoringSvc, scoreRepo, queueRepo, historyRepo, cacheSvc, metricsSvc, cfg.Engine, logr)

	runner := jobs.NewRunner("recompute", recomputeSvc.Drain, jobs.RunnerConfig{
		Workers:      cfg.Engine.Workers,
		PollInterval: cfg.Engine.PollInterval,
		Logger:       logr,
	})
	recomputeSvc.SetNudger(runner)

	matchSvc := service.NewMatchService(scoringSvc, scoreRepo, queueRepo, snapshotRepo, historyRepo, cacheSvc, runner, cfg.Engine.SyncTimeout, logr)
	statsSvc := service.NewStatsService(scoreRepo, queueRepo, historyRepo, metricsSvc, cacheSvc, cfg.Cache.StatsTTL, logr)
	mappingSvc := service.NewSkillMappingService(mappingRepo, logr)

	recommendationHandler := handler.NewRecommendationHandler(matchSvc)
	eventHandler := handler.NewEventHandler(recomputeSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	mappingHandler := handler.NewSkillMappingHandler(mappingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/students/:id/recommendations", recommendationHandler.ListForStudent)
		api.GET("/students/:id/recommendations/:listingId", recommendationHandler.Explain)
		api.GET("/listings/:id/candidates", recommendationHandler.Candidates)

		protected := api.Group("")
		protected.Use(middleware.AdminAuth(cfg.Admin))
		{
			protected.POST("/internal/events", eventHandler.Ingest)
			protected.GET("/admin/stats", statsHandler.Get)
			protected.GET("/admin/stats/export", statsHandler.Export)
			protected.GET("/admin/queue", statsHandler.Queue)
			protected.GET("/admin/skill-mappings", mappingHandler.List)
			protected.POST("/admin/skill-mappings", mappingHandler.Create)
			protected.PUT("/admin/skill-mappings/:id", mappingHandler.Update)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("http shutdown", "error", err)
	}

	runner.Stop()
	logr.Sugar().Infow("server stopped")
}
