package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusops/registrar-api/api/swagger"
	"github.com/campusops/registrar-api/internal/handler"
	"github.com/campusops/registrar-api/internal/middleware"
	"github.com/campusops/registrar-api/internal/models"
	"github.com/campusops/registrar-api/internal/repository"
	"github.com/campusops/registrar-api/internal/service"
	"github.com/campusops/registrar-api/pkg/cache"
	"github.com/campusops/registrar-api/pkg/config"
	"github.com/campusops/registrar-api/pkg/database"
	"github.com/campusops/registrar-api/pkg/jobs"
	"github.com/campusops/registrar-api/pkg/logger"
	corsmiddleware "github.com/campusops/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/registrar-api/pkg/middleware/requestid"
	"github.com/campusops/registrar-api/pkg/storage"
)

// @title Registrar API
// @version 1.0.0
// @description Academic progress, degree audit and registration eligibility engine
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Progress.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, progress caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Progress.CacheTTL, logr, true)
		}
	}

	transcriptRepo := repository.NewTranscriptRepository(db)
	programRepo := repository.NewProgramRepository(db)
	windowRepo := repository.NewWindowRepository(db)
	waiverRepo := repository.NewWaiverRepository(db)
	userRepo := repository.NewUserRepository(db)

	scale := models.DefaultGradeScale()

	transcriptService := service.NewTranscriptService(transcriptRepo, scale, cacheService, cfg.Progress.CacheTTL, logr)
	degreeService := service.NewDegreeService(programRepo, transcriptRepo, scale, service.ParseMatchPolicy(cfg.Progress.MatchPolicy), logr)
	registrationService := service.NewRegistrationService(windowRepo, transcriptRepo, scale, validate, logr)
	waiverService := service.NewWaiverService(waiverRepo, validate, logr)
	gradebookService := service.NewGradebookService(transcriptRepo, transcriptService, scale, validate, logr)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reportHandler *handler.ReportHandler
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(transcriptService, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)

		reportRepo := repository.NewReportRepository(db)
		worker := service.NewReportWorker(reportRepo, exporter, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(rootCtx)
		defer exportQueue.Stop()

		reportService := service.NewReportService(reportRepo, exportQueue, exporter, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		reportService.RecoverPendingJobs(rootCtx)
		reportService.StartCleanup(rootCtx)
		reportHandler = handler.NewReportHandler(reportService)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	authHandler := handler.NewAuthHandler(authService)
	progressHandler := handler.NewProgressHandler(transcriptService, degreeService, registrationService)
	windowHandler := handler.NewWindowHandler(registrationService)
	waiverHandler := handler.NewWaiverHandler(waiverService)
	gradebookHandler := handler.NewGradebookHandler(gradebookService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/metrics/summary", middleware.RequireRoles(models.RoleRegistrar), metricsHandler.Summary)

	students := authed.Group("/students/:studentID")
	students.Use(middleware.RBAC("REGISTRAR", "ADVISOR", "SELF"))
	students.GET("/transcript", progressHandler.Transcript)
	students.GET("/gpa", progressHandler.GPA)
	students.GET("/progress", progressHandler.Progress)
	students.GET("/degree-audit", progressHandler.DegreeAudit)
	students.GET("/registration-window", progressHandler.RegistrationWindow)

	terms := authed.Group("/terms/:termID")
	terms.GET("/registration-windows", windowHandler.List)
	terms.PUT("/registration-windows", middleware.RequireRoles(models.RoleRegistrar), windowHandler.Replace)

	waivers := authed.Group("/waivers")
	waivers.POST("", waiverHandler.Create)
	waivers.GET("", waiverHandler.List)
	waivers.GET("/:id", waiverHandler.Get)
	waivers.POST("/:id/approve", middleware.RequireRoles(models.RoleRegistrar, models.RoleAdvisor, models.RoleInstructor), waiverHandler.Approve)
	waivers.POST("/:id/deny", middleware.RequireRoles(models.RoleRegistrar, models.RoleAdvisor, models.RoleInstructor), waiverHandler.Deny)

	sections := authed.Group("/sections/:sectionID")
	sections.Use(middleware.RequireRoles(models.RoleRegistrar, models.RoleInstructor))
	sections.GET("/grades", gradebookHandler.Roster)
	sections.PUT("/grades", gradebookHandler.Submit)

	if reportHandler != nil {
		authed.POST("/reports", reportHandler.Create)
		authed.GET("/reports/:id", reportHandler.Status)
		api.GET("/export/:token", reportHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logr.Sugar().Infow("server stopped")
}
