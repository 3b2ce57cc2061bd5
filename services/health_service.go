package services

import (
	"context"
	"time"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Health status values.
const (
	HealthStatusUp       = "up"
	HealthStatusDown     = "down"
	HealthStatusDisabled = "disabled"
)

// HealthComponent is one dependency's health.
type HealthComponent struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// HealthCheck is the aggregate health report.
type HealthCheck struct {
	Status     string                     `json:"status"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Timestamp  string                     `json:"timestamp"`
}

// HealthService reports on the optional infrastructure dependencies. Either
// client may be nil; the component is then reported as disabled rather than
// down, since the pipeline works without them.
type HealthService struct {
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	version     string
	log         *zap.SugaredLogger
}

func NewHealthService(dbPool *pgxpool.Pool, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		dbPool:      dbPool,
		redisClient: redisClient,
		version:     version,
		log:         logger.GetLogger(),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) HealthCheck {
	components := make(map[string]HealthComponent)
	overallStatus := HealthStatusUp

	dbStatus := h.checkDatabase(ctx)
	components["database"] = dbStatus
	if dbStatus.Status == HealthStatusDown {
		overallStatus = HealthStatusDown
	}

	redisStatus := h.checkRedis(ctx)
	components["redis"] = redisStatus
	if redisStatus.Status == HealthStatusDown {
		overallStatus = HealthStatusDown
	}

	return HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) HealthComponent {
	if h.dbPool == nil {
		return HealthComponent{Status: HealthStatusDisabled, Details: "Pin store not configured"}
	}
	if err := h.dbPool.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return HealthComponent{Status: HealthStatusDown, Details: "Database connection failed"}
	}
	return HealthComponent{Status: HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) HealthComponent {
	if h.redisClient == nil {
		return HealthComponent{Status: HealthStatusDisabled, Details: "Rate limiting not configured"}
	}
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return HealthComponent{Status: HealthStatusDown, Details: "Redis connection failed"}
	}
	return HealthComponent{Status: HealthStatusUp}
}
