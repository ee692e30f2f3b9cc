package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"eventbook/api/routes"
	"eventbook/internal/notifications"
	"eventbook/internal/realtime"
	"eventbook/internal/seats"
	"eventbook/internal/shared/config"
	"eventbook/internal/shared/database"
	"eventbook/internal/shared/utils/response"
	"eventbook/pkg/logger"
	"eventbook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// lockSweepInterval is how often lapsed seat locks are purged. Availability
// already ignores them; the sweep only keeps the table small.
const lockSweepInterval = time.Minute

func main() {
	envErr := godotenv.Load()

	// Built after .env so LOG_LEVEL from the file applies
	appLogger := logger.New()
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

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	appLogger.Info("Starting eventbook",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	var background sync.WaitGroup

	// Seat updates: the hub serves this process's streams, the Redis relay
	// carries updates between instances.
	hub := realtime.NewHub(cfg.Realtime.ClientBuffer, appLogger)
	var seatPublisher realtime.Publisher = hub
	if cfg.Realtime.RelayEnabled {
		relay := realtime.NewRedisRelay(db.Redis, cfg.Realtime.RedisChannel, hub, appLogger)
		seatPublisher = relay
		background.Add(1)
		go func() {
			defer background.Done()
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Error("Seat update relay stopped", slog.Any("error", err))
			}
		}()
		appLogger.Info("Seat update relay started", slog.String("channel", cfg.Realtime.RedisChannel))
	}

	notifier := setupNotifications(ctx, cfg, appLogger, &background)
	defer notifier.Close()

	locks := seats.NewRepository(db.PostgreSQL)
	background.Add(1)
	go func() {
		defer background.Done()
		sweepSeatLocks(ctx, locks, appLogger)
	}()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, rateLimiter, routes.Dependencies{
		Logger:    appLogger,
		Hub:       hub,
		Publisher: seatPublisher,
		Notifier:  notifier,
	})

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
			stop()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	stop()
	background.Wait()
	appLogger.Info("Server exited gracefully")
}

// setupNotifications returns the Kafka publisher and starts the email
// consumer when Kafka is enabled. Any failure degrades to a no-op publisher.
func setupNotifications(ctx context.Context, cfg *config.Config, log *logger.Logger, wg *sync.WaitGroup) notifications.Publisher {
	if !cfg.Kafka.Enabled {
		log.Info("Kafka disabled, booking notifications will not be sent")
		return notifications.NoopPublisher{}
	}

	publisher, err := notifications.NewKafkaPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("Failed to create Kafka publisher, continuing without notifications", slog.Any("error", err))
		return notifications.NoopPublisher{}
	}

	consumer, err := notifications.NewConsumer(cfg.Kafka, notifications.NewMailer(cfg.Email, log), log)
	if err != nil {
		log.Error("Failed to create notification consumer", slog.Any("error", err))
		return publisher
	}
	consumer.Start(ctx, cfg.Kafka.Workers)
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := consumer.Stop(); err != nil {
			log.Error("Error stopping notification consumer", slog.Any("error", err))
		}
	}()

	log.Info("Booking notifications enabled",
		slog.String("topic", cfg.Kafka.Topic),
		slog.Int("workers", cfg.Kafka.Workers),
	)
	return publisher
}

func sweepSeatLocks(ctx context.Context, locks seats.Repository, log *logger.Logger) {
	ticker := time.NewTicker(lockSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := locks.SweepExpired(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.WithError(err).Warn("Seat lock sweep failed")
				}
				continue
			}
			if n > 0 {
				log.Debug("Swept expired seat locks", slog.Int64("count", n))
			}
		}
	}
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, deps routes.Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(RequestLoggerMiddleware(deps.Logger), RecoveryMiddleware(deps.Logger))

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Last-Event-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, deps.Logger))
	}

	routes.NewRouter(cfg, db, deps).SetupRoutes(engine)

	return engine
}

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware tags each request with an id, echoed in the
// response, and logs it once handled.
func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()
		l.WithRequestID(requestID).LogHTTPRequest(c, time.Since(start))
	}
}

// RecoveryMiddleware turns a panic into a logged 500.
func RecoveryMiddleware(l *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		l.LogHTTPError(c, fmt.Errorf("panic: %v", recovered), http.StatusInternalServerError)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
		c.Abort()
	})
}
