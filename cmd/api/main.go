package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-portal-backend/config"
	"job-portal-backend/internal/delivery/http/middleware"
	v1 "job-portal-backend/internal/delivery/http/v1"
	"job-portal-backend/internal/domain"
	"job-portal-backend/internal/repository/postgres"
	"job-portal-backend/internal/repository/postgres/migrations"
	"job-portal-backend/internal/usecase"
	"job-portal-backend/pkg/auth"
	"job-portal-backend/pkg/database"
	"job-portal-backend/pkg/logger"
	"job-portal-backend/pkg/metrics"
	"job-portal-backend/pkg/password"
	"job-portal-backend/pkg/redis"
	"job-portal-backend/pkg/security"
	"job-portal-backend/pkg/storage"
	"job-portal-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const serviceName = "job-portal-backend"

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Loggers
	appLog := logger.New(cfg.LogLevel)
	secLog := security.NewSecurityLogger(serviceName, cfg.GinMode)
	defer secLog.Sync()
	appLog.Info("Starting job portal backend", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, appLog)
	if err != nil {
		appLog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, dbPool, migrations.FS); err != nil {
			appLog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Repositories and collaborators
	accountRepo := postgres.NewAccountRepository(dbPool)

	hasher, err := password.NewBcrypt(password.Config{Cost: cfg.BcryptCost, MaxConcurrent: cfg.HashConcurrency})
	if err != nil {
		appLog.Error("Invalid hasher configuration", "error", err)
		os.Exit(1)
	}

	issuer, err := auth.NewIssuer(auth.IssuerConfig{Secret: []byte(cfg.SecretKey), TTL: cfg.TokenTTL})
	if err != nil {
		appLog.Error("Invalid token configuration", "error", err)
		os.Exit(1)
	}

	uploader, err := newUploader(ctx, cfg, appLog)
	if err != nil {
		appLog.Error("Failed to setup asset storage", "error", err)
		os.Exit(1)
	}

	probes := []usecase.Probe{{Name: "database", Check: accountRepo.Ping}}

	// Redis is optional; the rate limiter falls back to memory without it
	var scripter goredis.Scripter
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			appLog.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			defer redisClient.Close()
			scripter = redisClient
			probes = append(probes, usecase.Probe{
				Name:     "redis",
				Check:    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
				Optional: true,
			})
		}
	}

	rateLimiter := middleware.NewRateLimiter(scripter, secLog)
	go rateLimiter.Cleanup(ctx, 5*time.Minute)

	appMetrics := metrics.New()

	// 5. Setup UseCases
	authUC := usecase.NewAuthUsecase(
		accountRepo,
		hasher,
		issuer,
		uploader,
		usecase.JoinEvents(secLog, appMetrics),
		validation.New(cfg.AccountRoles),
		appLog,
		usecase.AuthConfig{
			PlaceholderAssetURL: cfg.PlaceholderAssetURL,
			CollaboratorTimeout: cfg.CollaboratorTimeout,
		},
	)
	healthUC := usecase.NewHealthUsecase(cfg.CollaboratorTimeout, probes...)

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:      authUC,
		HealthUC:    healthUC,
		Issuer:      issuer,
		RateLimiter: rateLimiter,
		Metrics:     appMetrics,
		SecurityLog: secLog,
		Logger:      appLog,
		Config:      cfg,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("Listen failed", "error", err)
			stop()
		}
	}()
	healthUC.MarkStarted()

	// Graceful Shutdown
	<-ctx.Done()
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exiting")
}

func newUploader(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.AssetUploader, error) {
	if !cfg.StorageConfigured() {
		return storage.PlaceholderUploader{URL: cfg.PlaceholderAssetURL}, nil
	}

	s3Cfg := storage.S3Config{
		Provider:        storage.S3Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		WasabiEndpoint:  cfg.WasabiEndpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		Image: storage.ImageOptions{
			MaxDimension: cfg.ImageMaxDimension,
			Quality:      cfg.ImageQuality,
		},
	}
	client, err := storage.NewS3Client(ctx, s3Cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Asset storage configured", "provider", cfg.S3Provider, "bucket", cfg.S3Bucket)
	return storage.NewS3Uploader(client, s3Cfg, log), nil
}
