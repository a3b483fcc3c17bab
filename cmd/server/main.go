package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CivicGate/civigate/internal/config"
	"github.com/CivicGate/civigate/internal/handler"
	"github.com/CivicGate/civigate/internal/middleware"
	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/CivicGate/civigate/internal/repository"
	"github.com/CivicGate/civigate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	// 3. Initialize Persistence
	db, err := repository.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	logger.Info("✅ Connected to PostgreSQL")

	reportRepo := repository.NewPostgresReportRepo(db, cfg.Database.TableReports)
	historyRepo := repository.NewPostgresHistoryRepo(db, cfg.Database.TableHistory)
	shelterRepo := repository.NewPostgresShelterRepo(db, cfg.Database.TableShelters)
	auditRepo := repository.NewPostgresAuditRepo(db, cfg.Database.TableAudit)

	// Rate limiting, idempotency and notifications (Redis > Memory).
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	idemTTL := time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second

	var limiter service.RateLimiter
	var idemStore middleware.IdempotencyStore
	var notifier service.ReportNotifier
	var feed *service.Feed

	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			limiter = repository.NewRedisRateLimiter(redisClient, cfg.Redis.RateLimitPrefix, window, cfg.RateLimit.Limit)
			idemStore = repository.NewRedisIdempotencyStore(redisClient, idemTTL)
			notifier = service.NewRedisNotifier(redisClient, cfg.Notify.Channel)
			feed = service.NewFeed(redisClient, cfg.Notify.Channel)
			feed.Start()
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if limiter == nil {
		limiter = service.NewMemoryRateLimiter(window, cfg.RateLimit.Limit)
	}
	if idemStore == nil {
		idemStore = middleware.NewInMemIdempotencyStore(idemTTL)
	}

	// 4. Initialize Core Services
	auditSvc, err := service.NewAuditService(cfg.Log.AuditDir, auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	reportSvc := service.NewReportService(reportRepo, reportRepo, historyRepo, auditSvc, notifier)
	shelterSvc := service.NewShelterService(shelterRepo, auditSvc)

	var uploadHandler *handler.UploadHandler
	if cfg.Storage.Bucket != "" {
		expires := time.Duration(cfg.Storage.PresignExpiresSeconds) * time.Second
		storageSvc, err := service.NewStorageService(context.Background(), cfg.Storage.Bucket, expires, auditSvc)
		if err != nil {
			log.Fatalf("Failed to initialize storage service: %v", err)
		}
		uploadHandler = handler.NewUploadHandler(storageSvc)
	} else {
		logger.Warn("No storage bucket configured, presign endpoints disabled")
	}

	// Audit retention sweep.
	if cfg.Database.AuditRetentionDays > 0 {
		go func() {
			interval := time.Duration(cfg.Database.CleanupIntervalMinutes) * time.Minute
			retention := time.Duration(cfg.Database.AuditRetentionDays) * 24 * time.Hour
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if err := auditRepo.Cleanup(ctx, retention); err != nil {
					logger.Warn("Audit cleanup failed", "error", err)
				}
				cancel()
			}
		}()
	}

	// 5. Initialize Handlers
	reportHandler := handler.NewReportHandler(reportSvc)
	shelterHandler := handler.NewShelterHandler(shelterSvc)

	// 6. Setup Router
	r := gin.New()
	r.Use(gin.Recovery())

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RequestLogMiddleware())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "civigate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))

	v1.GET("/shelters", shelterHandler.List)

	// Citizen intake: authenticated, rate-limited, replay-deduplicated.
	citizen := []gin.HandlerFunc{
		middleware.CitizenAuth(cfg),
		middleware.RateLimitMiddleware(limiter),
		middleware.IdempotencyMiddleware(idemStore),
	}
	v1.POST("/reports", append(citizen, reportHandler.Create)...)
	if uploadHandler != nil {
		v1.POST("/uploads/presign", append(citizen, uploadHandler.PresignPut)...)
	}

	// Staff console.
	staff := v1.Group("")
	staff.Use(middleware.StaffAuth(cfg))
	{
		staff.GET("/reports", reportHandler.List)
		staff.GET("/reports/export.csv", reportHandler.ExportCSV)
		staff.GET("/reports/:id", reportHandler.Get)
		staff.GET("/reports/:id/history", reportHandler.History)

		if uploadHandler != nil {
			staff.POST("/uploads/presign-get", uploadHandler.PresignGet)
		}

		operator := staff.Group("", middleware.RequireRole(model.RoleOperator))
		operator.GET("/reports/:id/contact", reportHandler.Contact)
		operator.PATCH("/reports/:id/status", reportHandler.UpdateStatus)
		operator.PATCH("/reports/:id/memo", reportHandler.AddMemo)

		admin := staff.Group("", middleware.RequireRole(model.RoleAdmin))
		admin.POST("/shelters", shelterHandler.Create)
		admin.PATCH("/shelters/:id", shelterHandler.Update)

		if feed != nil {
			feedHandler := handler.NewFeedHandler(feed)
			staff.GET("/feed", feedHandler.Stream)
		}
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 CiviGate started", "port", cfg.Server.Port, "read_only", cfg.Server.ReadOnly)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if feed != nil {
		feed.Stop()
	}
	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
