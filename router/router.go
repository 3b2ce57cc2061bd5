package router

import (
	"time"

	"github.com/EcoRoute/eco-route-backend/config"
	"github.com/EcoRoute/eco-route-backend/handlers"
	"github.com/EcoRoute/eco-route-backend/middleware"
	"github.com/EcoRoute/eco-route-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds everything SetupRouter needs to wire the routes.
type Dependencies struct {
	Config           *config.Config
	PlanHandler      *handlers.PlanHandler
	ItineraryHandler *handlers.ItineraryHandler
	HealthHandler    *handlers.HealthHandler
	RateLimiter      services.RateLimiterInterface
}

// SetupRouter configures and returns the main Gin engine with all routes
// defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))

	r.GET("/health", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.CallerIdentity(deps.Config.Server.JwtSecretKey))

	plans := v1.Group("/plans")
	plans.Use(middleware.RateLimiter(deps.RateLimiter,
		deps.Config.RateLimit.PlanRequestsPerMinute,
		time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second))
	{
		plans.POST("", deps.PlanHandler.CreatePlan)
		plans.POST("/stream",
			middleware.SSEMiddleware(middleware.SSEConfig{AllowedOrigins: deps.Config.Server.AllowedOrigins}),
			deps.PlanHandler.StreamPlan)
		plans.POST("/itinerary", deps.ItineraryHandler.GenerateItinerary)
		plans.POST("/question", deps.ItineraryHandler.AnswerQuestion)
	}

	return r
}
