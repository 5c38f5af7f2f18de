package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/valiant-11/psu-enrollment-api/api/swagger"
	"github.com/valiant-11/psu-enrollment-api/internal/handler"
	"github.com/valiant-11/psu-enrollment-api/internal/middleware"
	"github.com/valiant-11/psu-enrollment-api/internal/repository"
	"github.com/valiant-11/psu-enrollment-api/internal/service"
	"github.com/valiant-11/psu-enrollment-api/pkg/cache"
	"github.com/valiant-11/psu-enrollment-api/pkg/config"
	"github.com/valiant-11/psu-enrollment-api/pkg/database"
	"github.com/valiant-11/psu-enrollment-api/pkg/export"
	"github.com/valiant-11/psu-enrollment-api/pkg/logger"
	corsmiddleware "github.com/valiant-11/psu-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/valiant-11/psu-enrollment-api/pkg/middleware/requestid"
	"github.com/valiant-11/psu-enrollment-api/pkg/storage"
)

// @title PSU Enrollment API
// @version 1.0.0
// @description Student enrollment portal for Palawan State University
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	fileStore, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Fatal("failed to init document storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	students := repository.NewStudentRepository(db)
	subjects := repository.NewSubjectRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	payments := repository.NewPaymentRepository(db)
	shifting := repository.NewShiftingRepository(db)
	grades := repository.NewGradeRepository(db)
	courses := repository.NewCourseRepository(db)
	documents := repository.NewDocumentRepository(db)
	otps := repository.NewOTPRepository(redisClient)
	selections := repository.NewSelectionRepository(redisClient)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	fees := service.FeeSchedule{
		TuitionPerUnit:   cfg.Fees.TuitionPerUnit,
		LabFeePerMajor:   cfg.Fees.LabFeePerMajor,
		MinFullTimeUnits: cfg.Fees.MinFullTimeUnits,
		MaxSemesterUnits: cfg.Fees.MaxSemesterUnits,
	}

	// Services.
	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	authSvc := service.NewAuthService(students, otps, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		OTPTTL:      cfg.OTP.TTL,
		OTPDigits:   cfg.OTP.Digits,
		EchoCode:    cfg.OTP.EchoCode,
		EmailDomain: cfg.Fees.EmailDomain,
	})
	studentSvc := service.NewStudentService(students, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(students, subjects, enrollments, selections,
		cacheRepo, cfg.Catalog.CacheTTL, metricsSvc, fees, validate, logr)
	paymentSvc := service.NewPaymentService(payments, enrollments, students, fees,
		export.NewCSVExporter(), export.NewPDFExporter(), validate, logr)
	scheduleSvc := service.NewScheduleService(enrollments, logr)
	shiftingSvc := service.NewShiftingService(shifting, students, courses, validate, logr)
	gradeSvc := service.NewGradeService(grades, logr)
	courseSvc := service.NewCourseService(courses, cacheRepo, cfg.Catalog.CacheTTL, metricsSvc, logr)
	documentSvc := service.NewDocumentService(documents, fileStore, signer, service.DocumentConfig{
		MaxFileSizeBytes: cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Documents.AllowedMIMEs,
		BasePath:         cfg.APIPrefix,
	}, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, metricsSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, metricsSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	shiftingHandler := handler.NewShiftingHandler(shiftingSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
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

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/otp/request", authHandler.RequestOTP)
		auth.POST("/otp/verify", authHandler.VerifyOTP)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	api.GET("/courses", courseHandler.List)
	api.GET("/documents/download", documentHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/me", studentHandler.Profile)
		protected.PUT("/me", studentHandler.UpdateProfile)

		protected.GET("/enrollment/offerings", enrollmentHandler.Eligible)
		protected.POST("/enrollment/selection/toggle", enrollmentHandler.Toggle)
		protected.GET("/enrollment/selection", enrollmentHandler.Quote)
		protected.DELETE("/enrollment/selection", enrollmentHandler.ClearSelection)
		protected.POST("/enrollment/confirm", enrollmentHandler.Confirm)
		protected.GET("/enrollment/enrolled", enrollmentHandler.Enrolled)

		protected.GET("/payments/assessment", paymentHandler.Assessment)
		protected.GET("/payments/assessment/export", paymentHandler.ExportPDF)
		protected.POST("/payments", paymentHandler.Record)
		protected.GET("/payments", paymentHandler.History)
		protected.GET("/payments/export", paymentHandler.ExportCSV)

		protected.GET("/schedule", scheduleHandler.Weekly)
		protected.GET("/grades", gradeHandler.Report)

		protected.GET("/shifting", shiftingHandler.Current)
		protected.POST("/shifting", shiftingHandler.Submit)
		protected.POST("/shifting/approve", shiftingHandler.Approve)
		protected.POST("/shifting/reject", shiftingHandler.Reject)
		protected.DELETE("/shifting", shiftingHandler.Cancel)

		protected.POST("/documents", documentHandler.Upload)
		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:id/url", documentHandler.Link)
		protected.DELETE("/documents/:id", documentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
