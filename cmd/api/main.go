package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/trainingportal/internal/adapters/cache"
	"github.com/zatekoja/trainingportal/internal/adapters/database"
	"github.com/zatekoja/trainingportal/internal/adapters/events"
	"github.com/zatekoja/trainingportal/internal/adapters/identity"
	"github.com/zatekoja/trainingportal/internal/api/handlers"
	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/api/routes"
	"github.com/zatekoja/trainingportal/internal/application/loaders"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/redis"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	"github.com/zatekoja/trainingportal/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = observability.WithLogger(ctx, *logger)

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	pgClient.SetMetrics(metrics)
	logger.Info().Msg("PostgreSQL client initialized successfully")

	// Redis backs sessions, the program cache and the event bus when available.
	// Without it everything stays in process and streams must be embedded.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		memoryCache := cache.NewMemoryAdapter()
		defer memoryCache.Close()
		cacheProvider = memoryCache
		eventBus = events.NewLocalEventBus()
		if !cfg.Stream.Embedded {
			logger.Warn().Msg("STREAM_EMBEDDED=false needs Redis; serving streams from this process")
			cfg.Stream.Embedded = true
		}
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("Redis client initialized successfully")
	}

	// Initialize adapters
	userAdapter := database.NewUserAdapter(pgClient)
	accountAdapter := database.NewAccountAdapter(pgClient)
	registrationAdapter := database.NewRegistrationAdapter(pgClient)
	feedbackAdapter := database.NewFeedbackAdapter(pgClient)
	trainingAdapter := database.NewCachedTrainingAdapter(database.NewTrainingAdapter(pgClient), cacheProvider, metrics)

	identityProvider := identity.NewProvider(accountAdapter, cacheProvider, eventBus, cfg.Auth, identity.WithMetrics(metrics))

	// Initialize services
	authService := services.NewAuthService(identityProvider, userAdapter)
	trainingService := services.NewTrainingService(trainingAdapter, userAdapter, eventBus)
	enrollmentService := services.NewEnrollmentService(registrationAdapter, trainingAdapter, eventBus, metrics)
	feedbackService := services.NewFeedbackService(feedbackAdapter, trainingAdapter, eventBus, metrics)
	dashboardService := services.NewDashboardService(trainingAdapter, registrationAdapter, userAdapter)

	// Keep program caches in other processes coherent with writes made here
	cacheInvalidationService := services.NewCacheInvalidationService(cacheProvider, eventBus, database.TrainingCacheKeys)
	if err := cacheInvalidationService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cache invalidation service")
	} else {
		logger.Info().Msg("Cache invalidation service started successfully")
	}

	warmingService := services.NewCacheWarmingService(trainingAdapter)
	go warmingService.StartPeriodicWarming(ctx, 5*time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth)
	programHandler := handlers.NewProgramHandler(trainingService, enrollmentService, cfg.Listing.HomePageSize)
	adminHandler := handlers.NewAdminHandler(trainingService, cfg.Listing.AdminPageSize)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	var sseHandler *handlers.SSEHandler
	if cfg.Stream.Embedded {
		sseHandler = handlers.NewSSEHandler(authService, feedbackService, cfg.Stream.HeartbeatInterval, metrics)
	}

	// Set up router
	router := routes.NewRouter(
		authHandler,
		programHandler,
		adminHandler,
		feedbackHandler,
		dashboardHandler,
		sseHandler,
		routes.Middlewares{
			Session: middleware.SessionMiddleware(authService, cfg.Auth),
			Loaders: loaders.Middleware(userAdapter, trainingAdapter),
		},
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	if !cfg.Stream.Embedded {
		// Streams need an unbounded write deadline; only set one when none are served here
		server.WriteTimeout = 15 * time.Second
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Bool("streams", cfg.Stream.Embedded).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	cacheInvalidationService.Stop()

	// Close event bus
	if err := eventBus.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing event bus")
	}

	logger.Info().Msg("Server stopped")
}
