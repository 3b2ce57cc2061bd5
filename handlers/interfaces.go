package handlers

import (
	"context"

	"github.com/EcoRoute/eco-route-backend/services"
	"github.com/EcoRoute/eco-route-backend/types"
)

// PlannerInterface defines the planning pipeline methods needed by handlers.
type PlannerInterface interface {
	Plan(ctx context.Context, req types.TripPlanRequest, emit services.ProgressEmitter) (*types.PlanResult, error)
}
