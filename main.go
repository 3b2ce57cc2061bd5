package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/EcoRoute/eco-route-backend/config"
	"github.com/EcoRoute/eco-route-backend/handlers"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/pkg/flights"
	"github.com/EcoRoute/eco-route-backend/pkg/geocode"
	"github.com/EcoRoute/eco-route-backend/pkg/lodging"
	"github.com/EcoRoute/eco-route-backend/pkg/routing"
	"github.com/EcoRoute/eco-route-backend/pkg/transit"
	"github.com/EcoRoute/eco-route-backend/router"
	"github.com/EcoRoute/eco-route-backend/services"
	"github.com/EcoRoute/eco-route-backend/store"
	"github.com/EcoRoute/eco-route-backend/store/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres backs only the local-pin lookups; without it the planner
	// serves empty pin lists.
	var dbPool *pgxpool.Pool
	var pinStore store.PinStore = store.NoopPinStore{}
	if cfg.Database.Host != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnString())
		if err != nil {
			log.Fatalf("Failed to parse database config: %v", err)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
		if cfg.IsProduction() {
			poolConfig.ConnConfig.TLSConfig = &tls.Config{
				ServerName: cfg.Database.Host,
				MinVersion: tls.VersionTLS12,
			}
		}
		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()
		pinStore = postgres.NewPgPinStore(dbPool)
	}

	// Redis backs only rate limiting; without it the plan endpoints are
	// unthrottled.
	var redisClient *redis.Client
	var rateLimiter services.RateLimiterInterface
	if cfg.Redis.Address != "" {
		redisOptions := &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		if cfg.Redis.UseTLS {
			redisOptions.TLSConfig = &tls.Config{
				ServerName: cfg.Redis.Address,
				MinVersion: tls.VersionTLS12,
			}
		}
		redisClient = redis.NewClient(redisOptions)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warnw("Failed to close Redis client", "error", err)
			}
		}()
		rateLimiter = services.NewRateLimitService(redisClient)
	}

	ext := cfg.ExternalServices
	planner := services.NewPlannerService(
		geocode.NewResolver(),
		flights.NewClient(ext.FlightClientID, ext.FlightClientSecret, ext.FlightBaseURL),
		transit.NewClient(ext.TransitAPIKey, ext.TransitBaseURL),
		routing.NewClient(ext.RoutingBaseURL),
		lodging.NewClient(ext.LodgingAPIKey, ext.LodgingBaseURL),
		pinStore,
		cfg.Planner,
	)
	generator := services.NewGenerationService(ext.GeneratorURL, ext.GeneratorAPIKey)
	healthService := services.NewHealthService(dbPool, redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:           cfg,
		PlanHandler:      handlers.NewPlanHandler(planner, cfg.Planner),
		ItineraryHandler: handlers.NewItineraryHandler(generator),
		HealthHandler:    handlers.NewHealthHandler(healthService),
		RateLimiter:      rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}
