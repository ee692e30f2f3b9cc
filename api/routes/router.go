// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"eventbook/api/docs"
	"eventbook/internal/analytics"
	"eventbook/internal/auth"
	"eventbook/internal/bookings"
	"eventbook/internal/events"
	"eventbook/internal/notifications"
	"eventbook/internal/realtime"
	"eventbook/internal/seats"
	"eventbook/internal/shared/config"
	"eventbook/internal/shared/database"
	"eventbook/internal/shared/middleware"
	"eventbook/pkg/cache"
	"eventbook/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "eventbook-backend"

// Dependencies are the long-lived components built in main and shared by
// the route groups.
type Dependencies struct {
	Logger *logger.Logger
	Hub    *realtime.Hub
	// Publisher fans seat updates out. Defaults to Hub when nil.
	Publisher realtime.Publisher
	// Notifier receives booking lifecycle notifications. Defaults to a no-op.
	Notifier notifications.Publisher
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	deps   Dependencies

	authMiddleware gin.HandlerFunc
	cache          cache.Service
	locks          seats.Repository
	eventRepo      events.Repository
	eventService   events.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	if deps.Hub == nil {
		deps.Hub = realtime.NewHub(cfg.Realtime.ClientBuffer, deps.Logger)
	}
	if deps.Publisher == nil {
		deps.Publisher = deps.Hub
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NoopPublisher{}
	}
	return &Router{
		config: cfg,
		db:     db,
		deps:   deps,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	r.setupDocsRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Order matters: auth builds the JWT middleware and events builds the
		// catalog the booking flow depends on.
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupBookingRoutes(api)
		r.setupRealtimeRoutes(api)
		r.setupAnalyticsRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupDocsRoutes serves the OpenAPI document and the Swagger UI on top of it
func (r *Router) setupDocsRoutes(engine *gin.Engine) {
	engine.GET(docs.SpecPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", docs.OpenAPI)
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(docs.SpecPath)))
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	r.cache = cache.NewService(r.db.Redis, r.deps.Logger)
	r.authMiddleware = middleware.JWTAuthWithConfig(r.config, auth.NewRevocationStore(r.cache))

	authRepo := auth.NewRepository(r.db.PostgreSQL)
	authService := auth.NewService(authRepo, r.config, r.cache, r.deps.Logger)
	authController := auth.NewController(authService)

	auth.SetupAuthRoutes(rg, authController, r.authMiddleware)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	r.locks = seats.NewRepository(r.db.PostgreSQL, seats.WithDefaultTTL(r.config.Booking.LockTTL))
	r.eventRepo = events.NewRepository(r.db.PostgreSQL)
	r.eventService = events.NewService(r.eventRepo, r.locks, r.deps.Publisher, r.deps.Logger)

	events.SetupEventRoutes(rg, events.NewController(r.eventService), r.authMiddleware)
}

// setupBookingRoutes configures booking management routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.PostgreSQL)

	// Event deletion consults the booking ledger
	r.eventService.SetBookingLedger(bookingRepo)

	bookingService := bookings.NewService(
		bookingRepo,
		r.eventRepo,
		r.locks,
		r.eventService,
		r.deps.Logger,
		bookings.WithLockTTL(r.config.Booking.LockTTL),
		bookings.WithNotifier(r.deps.Notifier),
	)

	bookings.SetupBookingRoutes(rg, bookings.NewController(bookingService), r.authMiddleware)
}

// setupRealtimeRoutes configures the seat-update streams
func (r *Router) setupRealtimeRoutes(rg *gin.RouterGroup) {
	controller := realtime.NewController(r.deps.Hub, r.config.Realtime.HeartbeatInterval)
	realtime.SetupRealtimeRoutes(rg, controller)
}

// setupAnalyticsRoutes configures the admin sales dashboards
func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsService := analytics.NewService(analytics.NewRepository(r.db.PostgreSQL), r.cache, nil)
	analytics.SetupAnalyticsRoutes(rg, analytics.NewController(analyticsService), r.authMiddleware)
}
