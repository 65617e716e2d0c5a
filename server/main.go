// @title                       Festbook Booking Gateway API
// @version                     1.0
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"festbook/api/routes"
	"festbook/internal/bookings"
	"festbook/internal/notifications"
	"festbook/internal/shared/config"
	"festbook/internal/shared/database"
	"festbook/pkg/logger"
	"festbook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Smart environment loading
	envErr := godotenv.Load()

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release) before the logger picks its handler
	gin.SetMode(cfg.GinMode)
	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}
	appLogger.Info("Starting festbook gateway",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	// Initialize DB
	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), cfg.RateLimit)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Outcome notifications
	publisher, err := notifications.New(cfg.Notify, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize outcome publisher", slog.Any("error", err))
		appLogger.Info("Continuing without outcome notifications")
		publisher = notifications.Noop{}
	} else {
		appLogger.Info("Outcome publisher initialized", slog.String("broker", cfg.Notify.Broker))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing outcome publisher", slog.Any("error", err))
		}
	}()

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, publisher, appLogger)
	router := setupRouter(appRouter, rateLimiter, appLogger)

	// Dispose abandoned booking sessions
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	janitor := bookings.NewJanitor(appRouter.BookingService(), cfg.Booking.SweepInterval, appLogger)
	janitor.Start(janitorCtx)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("fest_api", cfg.FestAPI.BaseURL),
			slog.String("version", cfg.APIVersion),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	janitor.Stop()
	appRouter.BookingService().Shutdown(ctx)

	appLogger.Info("Server exited gracefully")
}

func setupRouter(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	// Logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
		if err := c.Errors.Last(); err != nil {
			l.LogHTTPError(c, err.Err, c.Writer.Status())
		}
	}
}
