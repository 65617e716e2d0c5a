// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "festbook/docs"
	"festbook/internal/attempts"
	"festbook/internal/bookings"
	"festbook/internal/checkout"
	"festbook/internal/festapi"
	"festbook/internal/notifications"
	"festbook/internal/programs"
	"festbook/internal/shared/config"
	"festbook/internal/shared/database"
	"festbook/internal/workflow"
	"festbook/pkg/cache"
	"festbook/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	log       *logger.Logger

	festClient *festapi.Client
	programs   programs.Service
	bookings   bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	return &Router{
		config:     cfg,
		db:         db,
		publisher:  publisher,
		log:        log,
		festClient: festapi.NewClient(cfg.FestAPI.BaseURL, cfg.FestAPI.Timeout, log),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Program directory must come first, booking sessions load programs through it
		r.setupProgramRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// BookingService returns the session layer built by SetupRoutes
func (r *Router) BookingService() bookings.Service {
	return r.bookings
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "festbook-gateway",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "festbook-gateway",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupProgramRoutes configures the cached program directory
func (r *Router) setupProgramRoutes(rg *gin.RouterGroup) {
	cacheService := cache.NewService(r.db.GetRedisClient(), r.log)
	r.programs = programs.NewService(r.festClient, cacheService, r.config.Redis.ProgramCacheTTL)
	programController := programs.NewController(r.programs)

	programs.SetupProgramRoutes(rg, programController)
}

// setupBookingRoutes configures booking sessions
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	attemptService := attempts.NewService(attempts.NewRepository(r.db.GetPostgreSQL()))

	r.bookings = bookings.NewService(bookings.Deps{
		Upstream:  r.festClient,
		Programs:  r.programs,
		Attempts:  attemptService,
		Publisher: r.publisher,
		Lock:      bookings.NewAttemptLock(r.db.GetRedisClient(), r.config.Booking.LockTTL),
		Logger:    r.log,
	}, bookings.Options{
		SessionTTL: r.config.Booking.SessionTTL,
		Checkout: workflow.CheckoutSettings{
			KeyID:      r.config.Checkout.KeyID,
			Currency:   r.config.Checkout.Currency,
			Name:       r.config.Checkout.Name,
			ThemeColor: r.config.Checkout.ThemeColor,
		},
		Verifier: checkout.NewVerifier(r.config.Checkout.KeySecret),
	})
	bookingController := bookings.NewController(r.bookings)

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}
