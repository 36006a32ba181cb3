package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/coursedocs/catalog-api/api/swagger"
	"github.com/coursedocs/catalog-api/internal/handler"
	"github.com/coursedocs/catalog-api/internal/middleware"
	"github.com/coursedocs/catalog-api/internal/repository"
	"github.com/coursedocs/catalog-api/internal/service"
	"github.com/coursedocs/catalog-api/pkg/blob"
	"github.com/coursedocs/catalog-api/pkg/cache"
	"github.com/coursedocs/catalog-api/pkg/config"
	"github.com/coursedocs/catalog-api/pkg/database"
	"github.com/coursedocs/catalog-api/pkg/logger"
	corsmiddleware "github.com/coursedocs/catalog-api/pkg/middleware/cors"
	reqidmiddleware "github.com/coursedocs/catalog-api/pkg/middleware/requestid"
)

// @title Course Catalog API
// @version 1.0.0
// @description Admin API for the course hierarchy and document storage
// @BasePath /api
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

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Hierarchy.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
	}

	store, err := blob.New(ctx, cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob storage", "error", err)
	}

	validate := validator.New()

	courseRepo := repository.NewCourseRepository(db)
	yearRepo := repository.NewYearRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthServiceConfig{
		TokenSecret: cfg.Auth.JWTSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
	})
	hierarchySvc := service.NewHierarchyService(
		courseRepo, yearRepo, semesterRepo, unitRepo,
		redisClient, metricsSvc, logr,
		service.HierarchyServiceConfig{
			CacheEnabled: cfg.Hierarchy.CacheEnabled,
			CacheTTL:     cfg.Hierarchy.CacheTTL,
		},
	)
	courseSvc := service.NewCourseService(courseRepo, hierarchySvc, validate, logr)
	yearSvc := service.NewYearService(yearRepo, courseRepo, hierarchySvc, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, yearRepo, hierarchySvc, validate, logr)
	unitSvc := service.NewUnitService(unitRepo, semesterRepo, hierarchySvc, validate, logr)
	documentSvc := service.NewDocumentService(
		documentRepo, courseRepo, yearRepo, semesterRepo, unitRepo,
		store, metricsSvc, validate, logr,
		service.DocumentServiceConfig{
			MaxFileSize:  cfg.Documents.MaxFileSizeBytes,
			AllowedMIMEs: cfg.Documents.AllowedMIMEs,
		},
	)
	exportSvc := service.NewExportService(courseRepo, logr)

	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logr.Sugar().Fatalw("failed to seed admin user", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Courses:   handler.NewCourseHandler(courseSvc),
		Years:     handler.NewYearHandler(yearSvc),
		Semesters: handler.NewSemesterHandler(semesterSvc),
		Units:     handler.NewUnitHandler(unitSvc),
		Documents: handler.NewDocumentHandler(documentSvc),
		Hierarchy: handler.NewHierarchyHandler(hierarchySvc),
		Exports:   handler.NewExportHandler(exportSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
