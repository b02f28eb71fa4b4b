package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/free-learning-api/api/swagger"
	"github.com/noah-isme/free-learning-api/internal/handler"
	"github.com/noah-isme/free-learning-api/internal/middleware"
	"github.com/noah-isme/free-learning-api/internal/repository"
	"github.com/noah-isme/free-learning-api/internal/service"
	"github.com/noah-isme/free-learning-api/pkg/cache"
	"github.com/noah-isme/free-learning-api/pkg/config"
	"github.com/noah-isme/free-learning-api/pkg/database"
	"github.com/noah-isme/free-learning-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/free-learning-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/free-learning-api/pkg/middleware/requestid"
	"github.com/noah-isme/free-learning-api/pkg/storage"
)

// @title Free Learning API
// @version 1.0.0
// @description Unit browsing, enrolment lifecycle and unit editing for the Free Learning programme
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient)
		defer redisClient.Close()
	}

	logoStore, err := storage.NewLocalStorage(cfg.Units.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload dir", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export dir", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	authorRepo := repository.NewUnitAuthorRepository(db)
	outcomeRepo := repository.NewUnitOutcomeRepository(db)
	blockRepo := repository.NewUnitBlockRepository(db)
	unitStudentRepo := repository.NewUnitStudentRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	classRepo := repository.NewUnitClassRepository(db)
	mentorRepo := repository.NewMentorRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewUnitStudentService(unitStudentRepo, discussionRepo, validate, logr)
	mentorSvc := service.NewMentorService(unitRepo, mentorRepo, logr)
	reportSvc := service.NewReportService(unitStudentRepo, exportStore, signer, logr, cfg.Reports)

	var editSvc *service.UnitEditService
	var browseSvc *service.BrowseService
	if cacheRepo != nil {
		editSvc = service.NewUnitEditService(unitRepo, authorRepo, outcomeRepo, blockRepo, logoStore, cacheRepo, metricsSvc, validate, logr, cfg.Units)
		browseSvc = service.NewBrowseService(classRepo, cacheRepo, metricsSvc, logr, cfg.Browse)
	} else {
		editSvc = service.NewUnitEditService(unitRepo, authorRepo, outcomeRepo, blockRepo, logoStore, nil, metricsSvc, validate, logr, cfg.Units)
		browseSvc = service.NewBrowseService(classRepo, nil, metricsSvc, logr, cfg.Browse)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	unitHandler := handler.NewUnitHandler(editSvc)
	studentHandler := handler.NewUnitStudentHandler(studentSvc)
	browseHandler := handler.NewBrowseHandler(browseSvc)
	mentorHandler := handler.NewMentorHandler(mentorSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	// download links carry their own HMAC signature, no bearer token needed
	if cfg.Reports.Enabled {
		api.GET("/exports/:token", reportHandler.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/units/:id/students", studentHandler.CurrentStudents)
		authed.GET("/units/:id/enrolment", studentHandler.Detail)
		authed.GET("/students/:id/units", studentHandler.History)
		authed.GET("/students/:id/learning-areas", studentHandler.LearningAreas)
		authed.GET("/collaborations/:key", studentHandler.Collaborators)
		authed.GET("/classes/:id/units", browseHandler.UnitsByClass)

		authed.POST("/enrolments", studentHandler.Enrol)
		authed.POST("/enrolments/:id/evidence", studentHandler.SubmitEvidence)
		authed.GET("/enrolments/:id/discussion", studentHandler.Discussion)

		if cfg.Mentoring.Enabled {
			authed.GET("/units/:id/mentors", mentorHandler.UnitMentors)
			authed.GET("/units/:id/collaborator-candidates", mentorHandler.CollaboratorCandidates)
		}

		if cfg.Reports.Enabled {
			authed.POST("/students/:id/units/export", reportHandler.ExportHistory)
		}

		managed := authed.Group("")
		managed.Use(middleware.RequireManageScope())
		{
			managed.PUT("/units/:id", middleware.Audit(userRepo, "unit.edit", "unit"), unitHandler.Edit)
			managed.GET("/review/evidence", studentHandler.EvidencePending)
			managed.GET("/review/enrolments", studentHandler.EnrolmentPending)
			managed.POST("/enrolments/:id/review", middleware.Audit(userRepo, "enrolment.review", "enrolment"), studentHandler.Review)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
