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

	_ "github.com/dekut-devs/clearance-api/api/swagger"
	"github.com/dekut-devs/clearance-api/internal/handler"
	"github.com/dekut-devs/clearance-api/internal/middleware"
	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/internal/notify"
	"github.com/dekut-devs/clearance-api/internal/payment"
	"github.com/dekut-devs/clearance-api/internal/repository"
	"github.com/dekut-devs/clearance-api/internal/service"
	"github.com/dekut-devs/clearance-api/pkg/cache"
	"github.com/dekut-devs/clearance-api/pkg/config"
	"github.com/dekut-devs/clearance-api/pkg/database"
	"github.com/dekut-devs/clearance-api/pkg/export"
	"github.com/dekut-devs/clearance-api/pkg/jobs"
	"github.com/dekut-devs/clearance-api/pkg/logger"
	corsmiddleware "github.com/dekut-devs/clearance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dekut-devs/clearance-api/pkg/middleware/requestid"
	"github.com/dekut-devs/clearance-api/pkg/storage"
)

// @title DeKUT Clearance API
// @version 1.0.0
// @description Graduation clearance tracking and gown booking
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

	if len(cfg.Clearance.DefaultDepartments) > 0 {
		models.DefaultDepartments = cfg.Clearance.DefaultDepartments
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	clearanceRepo := repository.NewClearanceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	var notifier *notify.EmailNotifier
	if cfg.Notifier.Enabled && cfg.SMTP.Host != "" {
		mailer := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:          cfg.SMTP.Host,
			Port:          cfg.SMTP.Port,
			User:          cfg.SMTP.User,
			Password:      cfg.SMTP.Password,
			From:          cfg.SMTP.From,
			SkipTLSVerify: cfg.SMTP.SkipTLSVerify,
		})
		notifier = notify.NewEmailNotifier(mailer, jobs.QueueConfig{
			Workers:    cfg.Notifier.Workers,
			BufferSize: cfg.Notifier.BufferSize,
			MaxRetries: cfg.Notifier.MaxRetries,
			RetryDelay: cfg.Notifier.RetryDelay,
			Logger:     logr,
		}, logr)
		notifier.Start(ctx)
		defer notifier.Stop()
	} else {
		logr.Info("email notifications disabled")
	}

	metricsSvc := service.NewMetricsService()

	var settingsSvc *service.SettingsService
	if cacheRepo != nil {
		settingsSvc = service.NewSettingsService(settingsRepo, cacheRepo, cfg.Cache.DefaultTTL, validate, logr)
	} else {
		settingsSvc = service.NewSettingsService(settingsRepo, nil, cfg.Cache.DefaultTTL, validate, logr)
	}

	var clearanceSvc *service.ClearanceService
	if notifier != nil {
		clearanceSvc = service.NewClearanceService(clearanceRepo, notifier, validate, logr)
	} else {
		clearanceSvc = service.NewClearanceService(clearanceRepo, nil, validate, logr)
	}

	bookingSvc := service.NewBookingService(bookingRepo, clearanceRepo, cfg.Clearance.Currency, validate, logr)
	authSvc := service.NewAuthService(staffRepo, studentRepo, settingsSvc, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	var paymentSvc *service.PaymentService
	if cfg.Mpesa.Enabled {
		gateway := payment.NewDarajaClient(payment.Config{
			BaseURL:        cfg.Mpesa.BaseURL,
			ConsumerKey:    cfg.Mpesa.ConsumerKey,
			ConsumerSecret: cfg.Mpesa.ConsumerSecret,
			ShortCode:      cfg.Mpesa.ShortCode,
			Passkey:        cfg.Mpesa.Passkey,
			CallbackURL:    cfg.Mpesa.CallbackURL,
			Timeout:        cfg.Mpesa.Timeout,
		}, logr)
		paymentSvc = service.NewPaymentService(gateway, clearanceRepo, bookingSvc, float64(cfg.Mpesa.GownAmount), validate, logr)
	} else {
		paymentSvc = service.NewPaymentService(nil, clearanceRepo, bookingSvc, float64(cfg.Mpesa.GownAmount), validate, logr)
	}

	certificateSvc := service.NewCertificateService(clearanceSvc, settingsSvc, export.NewCertificateRenderer(""), logr)
	exportSvc := service.NewExportService(clearanceSvc, export.NewCSVExporter(), logr)

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare document storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Clearance: handler.NewClearanceHandler(clearanceSvc, certificateSvc, exportSvc, metricsSvc),
		Bookings:  handler.NewBookingHandler(bookingSvc),
		Auth:      handler.NewAuthHandler(authSvc),
		Settings:  handler.NewSettingsHandler(settingsSvc),
		Payments:  handler.NewPaymentHandler(paymentSvc),
		Uploads:   handler.NewUploadHandler(clearanceSvc, store, signer),
	}, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
