package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otcheredev/barmaster-pos/internal/adapters"
	"github.com/otcheredev/barmaster-pos/internal/cache"
	"github.com/otcheredev/barmaster-pos/internal/config"
	"github.com/otcheredev/barmaster-pos/internal/handlers"
	"github.com/otcheredev/barmaster-pos/internal/metrics"
	"github.com/otcheredev/barmaster-pos/internal/middleware"
	"github.com/otcheredev/barmaster-pos/internal/services"
	"github.com/otcheredev/barmaster-pos/internal/telemetry"
	"github.com/otcheredev/barmaster-pos/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "barmaster-pos"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("backend", cfg.Backend.Type).Msg("Starting BarMaster POS")

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	shutdownTracing := telemetry.Setup(context.Background(), serviceName, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)

	// Connect to the data backend
	backend, err := adapters.NewBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backend")
	}
	defer backend.Close()

	// Session store
	deps := map[string]handlers.Pinger{"backend": backend}
	var store cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		redisCache, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		deps["cache"] = redisCache
		store = redisCache
		log.Info().Msg("Redis session store initialized")
	} else {
		// Sessions always need a store, so a disabled cache still gets the in-process one
		store = cache.NewMemoryCache(time.Minute)
		log.Info().Msg("Memory session store initialized")
	}
	defer store.Close()

	// Initialize services
	admissionService := services.NewAdmissionService(backend, cfg.Location(), logger.Component("admission"))
	floorService := services.NewFloorService(backend, logger.Component("floor"))
	sessionService := services.NewSessionService(
		admissionService,
		floorService,
		store,
		cfg.Session.Secret,
		cfg.Session.TTL,
		logger.Component("session"),
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	loginLimiter := middleware.NewRateLimiter(cfg.Admission.LoginPerMinute, cfg.Admission.LoginBurst)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/sessions", sessionHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionToken)
			r.Get("/floor", sessionHandler.Floor)
			r.Delete("/sessions/current", sessionHandler.Logout)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, serviceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server stopped")
}
