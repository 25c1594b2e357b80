package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/api/handlers"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/config"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/database"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/health"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/middleware"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/migration"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/repository"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/services"
	"github.com/DurgaPrasad-54/helpline104-feedback/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	skipMigrations = flag.Bool("skip-migrations", false, "Do not run migrations on startup")
	healthInterval = flag.Duration("health-interval", 30*time.Second, "Interval of background health checks")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, log.Writer())
	utils.Logger = logger

	if err := cfg.ValidateServer(); err != nil {
		logger.WithError(err).Fatal("Server configuration validation failed")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if !*skipMigrations {
		if err := migration.NewRunner(dbManager, logger).RunMigrations(cfg.Migrations.Dir); err != nil {
			logger.WithError(err).Fatal("Migrations failed")
		}
	}

	cache := database.NewCache(dbManager.Redis, logger)
	repoManager := repository.NewRepositoryManager(dbManager.DB)
	feedbackService := services.NewFeedbackService(repoManager, cache, logger)

	checker := health.NewHealthChecker(cache, 2*(*healthInterval), logger,
		health.PingerFunc{ServiceName: "postgresql", Fn: dbManager.PingDatabase},
		health.PingerFunc{ServiceName: "redis", Fn: dbManager.PingRedis},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go checker.PeriodicHealthCheck(ctx, *healthInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)
	defer limiter.Stop()

	router := setupRouter(handlers.NewFeedbackHandler(feedbackService, logger), checker, limiter, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Feedback API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}

func setupRouter(feedback *handlers.FeedbackHandler, checker *health.HealthChecker, limiter *middleware.RateLimiter, logger *logrus.Logger) *gin.Engine {
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(metrics.Middleware())

	r.GET("/health", handlers.HealthHandler(checker))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	feedback.RegisterRoutes(r.Group("/api/v1"), limiter.RateLimit())

	return r
}
