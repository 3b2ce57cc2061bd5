// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	JwtSecretKey   string      `mapstructure:"JWT_SECRET_KEY" yaml:"jwt_secret_key"`
}

// DatabaseConfig holds PostgreSQL connection details for the pin store.
// An empty host disables the store; nearby recommendations then degrade to
// an empty list like any other provider failure.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
}

// ConnString returns a key=value pgx connection string.
func (c *DatabaseConfig) ConnString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode)
}

// RedisConfig holds Redis connection details for rate limiting. An empty
// address disables rate limiting.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
}

// ExternalServices holds credentials for the provider adapters and the
// narrative generator. Every key is optional: a missing credential degrades
// exactly that one adapter to an empty result, never the whole pipeline.
type ExternalServices struct {
	FlightClientID     string `mapstructure:"FLIGHT_CLIENT_ID"`
	FlightClientSecret string `mapstructure:"FLIGHT_CLIENT_SECRET"`
	FlightBaseURL      string `mapstructure:"FLIGHT_BASE_URL"`
	TransitAPIKey      string `mapstructure:"TRANSIT_API_KEY"`
	TransitBaseURL     string `mapstructure:"TRANSIT_BASE_URL"`
	RoutingBaseURL     string `mapstructure:"ROUTING_BASE_URL"`
	LodgingAPIKey      string `mapstructure:"LODGING_API_KEY"`
	LodgingBaseURL     string `mapstructure:"LODGING_BASE_URL"`
	GeneratorURL       string `mapstructure:"GENERATOR_URL"`
	GeneratorAPIKey    string `mapstructure:"GENERATOR_API_KEY"`
}

// PlannerConfig tunes the fan-out pipeline.
type PlannerConfig struct {
	// StageDelayMs is the minimum perceived duration of one narration stage.
	StageDelayMs int `mapstructure:"STAGE_DELAY_MS" yaml:"stage_delay_ms"`
	// StageJitterMs is the random jitter added on top of StageDelayMs.
	StageJitterMs int `mapstructure:"STAGE_JITTER_MS" yaml:"stage_jitter_ms"`
	// ProviderTimeoutSeconds bounds each individual provider call.
	ProviderTimeoutSeconds int `mapstructure:"PROVIDER_TIMEOUT_SECONDS" yaml:"provider_timeout_seconds"`
}

// RateLimitConfig holds configuration for the plan endpoint rate limiter.
type RateLimitConfig struct {
	PlanRequestsPerMinute int `mapstructure:"PLAN_REQUESTS_PER_MINUTE" yaml:"plan_requests_per_minute"`
	WindowSeconds         int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server           ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database         DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis            RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	ExternalServices ExternalServices `mapstructure:"EXTERNAL_SERVICES" yaml:"external_services"`
	Planner          PlannerConfig    `mapstructure:"PLANNER" yaml:"planner"`
	RateLimit        RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets defaults, unmarshals and validates.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("DATABASE.HOST", "")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "ecoroute_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("REDIS.ADDRESS", "")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("EXTERNAL_SERVICES.FLIGHT_BASE_URL", "https://api.amadeus.com")
	v.SetDefault("EXTERNAL_SERVICES.TRANSIT_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("EXTERNAL_SERVICES.ROUTING_BASE_URL", "https://router.project-osrm.org")
	v.SetDefault("EXTERNAL_SERVICES.LODGING_BASE_URL", "https://places.googleapis.com")
	v.SetDefault("PLANNER.STAGE_DELAY_MS", 2000)
	v.SetDefault("PLANNER.STAGE_JITTER_MS", 400)
	v.SetDefault("PLANNER.PROVIDER_TIMEOUT_SECONDS", 15)
	v.SetDefault("RATE_LIMIT.PLAN_REQUESTS_PER_MINUTE", 20)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.JWT_SECRET_KEY", "JWT_SECRET_KEY"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"EXTERNAL_SERVICES.FLIGHT_CLIENT_ID", "FLIGHT_CLIENT_ID"},
		{"EXTERNAL_SERVICES.FLIGHT_CLIENT_SECRET", "FLIGHT_CLIENT_SECRET"},
		{"EXTERNAL_SERVICES.FLIGHT_BASE_URL", "FLIGHT_BASE_URL"},
		{"EXTERNAL_SERVICES.TRANSIT_API_KEY", "TRANSIT_API_KEY"},
		{"EXTERNAL_SERVICES.TRANSIT_BASE_URL", "TRANSIT_BASE_URL"},
		{"EXTERNAL_SERVICES.ROUTING_BASE_URL", "ROUTING_BASE_URL"},
		{"EXTERNAL_SERVICES.LODGING_API_KEY", "LODGING_API_KEY"},
		{"EXTERNAL_SERVICES.LODGING_BASE_URL", "LODGING_BASE_URL"},
		{"EXTERNAL_SERVICES.GENERATOR_URL", "GENERATOR_URL"},
		{"EXTERNAL_SERVICES.GENERATOR_API_KEY", "GENERATOR_API_KEY"},
		{"PLANNER.STAGE_DELAY_MS", "PLANNER_STAGE_DELAY_MS"},
		{"PLANNER.STAGE_JITTER_MS", "PLANNER_STAGE_JITTER_MS"},
		{"PLANNER.PROVIDER_TIMEOUT_SECONDS", "PLANNER_PROVIDER_TIMEOUT_SECONDS"},
		{"RATE_LIMIT.PLAN_REQUESTS_PER_MINUTE", "RATE_LIMIT_PLAN_REQUESTS_PER_MINUTE"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"db_enabled", cfg.Database.Host != "",
		"redis_enabled", cfg.Redis.Address != "",
		"flight_provider_configured", cfg.ExternalServices.FlightClientID != "",
		"transit_provider_configured", cfg.ExternalServices.TransitAPIKey != "",
		"lodging_provider_configured", cfg.ExternalServices.LodgingAPIKey != "",
		"generator_configured", cfg.ExternalServices.GeneratorURL != "",
	)

	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
// Missing provider credentials are warnings, not errors: each absent key
// degrades a single adapter at request time.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.JwtSecretKey != "" && len(cfg.Server.JwtSecretKey) < minJWTLength {
		return fmt.Errorf("JWT secret key must be at least %d characters long", minJWTLength)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.Host == "" {
		log.Warn("Database host not set; local pin lookups will return empty results")
	}
	if cfg.Redis.Address == "" {
		log.Warn("Redis address not set; plan endpoints will not be rate limited")
	}
	if cfg.ExternalServices.FlightClientID == "" || cfg.ExternalServices.FlightClientSecret == "" {
		log.Warn("Flight provider credentials not set; flight search disabled")
	}
	if cfg.ExternalServices.TransitAPIKey == "" {
		log.Warn("Transit API key not set; ground transit search disabled")
	}
	if cfg.ExternalServices.LodgingAPIKey == "" {
		log.Warn("Lodging API key not set; hotel search disabled")
	}
	if cfg.ExternalServices.GeneratorURL == "" {
		log.Warn("Generator URL not set; itinerary generation disabled")
	}

	if cfg.Planner.StageDelayMs < 0 || cfg.Planner.StageJitterMs < 0 {
		return fmt.Errorf("planner stage delay and jitter must be non-negative")
	}
	if cfg.Planner.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("planner provider timeout must be positive")
	}
	if cfg.RateLimit.PlanRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit plan requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

// containsWildcard checks if the list of allowed origins contains "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
