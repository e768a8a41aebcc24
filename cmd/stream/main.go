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
	"github.com/zatekoja/trainingportal/internal/application/services"
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

	observability.InitLogger(cfg.OTEL.ServiceName+"-stream", cfg.Server.Env)
	logger := observability.GetLogger()
	logger.Info().Msg("Starting SSE Server...")

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Redis is required: sessions and events are shared with the API process
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()
	logger.Info().Msg("Redis client initialized successfully")

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	pgClient.SetMetrics(metrics)

	sessionStore := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)

	userAdapter := database.NewUserAdapter(pgClient)
	trainingAdapter := database.NewTrainingAdapter(pgClient)
	identityProvider := identity.NewProvider(database.NewAccountAdapter(pgClient), sessionStore, eventBus, cfg.Auth, identity.WithMetrics(metrics))

	authService := services.NewAuthService(identityProvider, userAdapter)
	feedbackService := services.NewFeedbackService(database.NewFeedbackAdapter(pgClient), trainingAdapter, eventBus, metrics)

	sseHandler := handlers.NewSSEHandler(authService, feedbackService, cfg.Stream.HeartbeatInterval, metrics)

	router := routes.NewRouter(nil, nil, nil, nil, nil, sseHandler, routes.Middlewares{
		Session: middleware.SessionMiddleware(authService, cfg.Auth),
	}, metrics)
	handler := router.SetupStreamRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,  // Longer timeout for SSE
		IdleTimeout: 120 * time.Second, // Allow long-lived connections
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("SSE Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("SSE Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Int("connected_clients", sseHandler.GetClientCount()).Msg("SSE Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Closing the bus ends open streams so Shutdown does not wait on them
	if err := eventBus.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing event bus")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	logger.Info().Msg("SSE Server stopped")
}
