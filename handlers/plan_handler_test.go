package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/EcoRoute/eco-route-backend/config"
	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/middleware"
	"github.com/EcoRoute/eco-route-backend/services"
	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.IsTest = true
	os.Exit(m.Run())
}

// MockPlanner implements PlannerInterface for handler tests.
type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Plan(ctx context.Context, req types.TripPlanRequest, emit services.ProgressEmitter) (*types.PlanResult, error) {
	args := m.Called(ctx, req, emit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlanResult), args.Error(1)
}

func testPlanCfg() config.PlannerConfig {
	// Zero pacing keeps handler tests fast.
	return config.PlannerConfig{ProviderTimeoutSeconds: 5}
}

func setupPlanRouter(planner PlannerInterface) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	h := NewPlanHandler(planner, testPlanCfg())
	r.POST("/v1/plans", h.CreatePlan)
	r.POST("/v1/plans/stream", h.StreamPlan)
	return r
}

func planRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(types.TripPlanRequest{
		StartLocation: "San Francisco",
		EndLocation:   "Los Angeles",
		ItineraryType: "nature",
		DepartureDate: "2026-09-15",
		DurationDays:  2,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func samplePlanResult() *types.PlanResult {
	return &types.PlanResult{
		TransitOptions: []types.TransitOption{
			{Mode: types.ModeDriving, Duration: "5h 30m", CarbonKg: 117.6},
			{Mode: types.ModeFlight, Duration: "1h 30m", CarbonKg: 153.0},
		},
		Destination: types.Coordinates{Lat: 34.0522, Lng: -118.2437},
		DistanceKm:  559.0,
	}
}

func TestCreatePlan_ReturnsResult(t *testing.T) {
	planner := new(MockPlanner)
	planner.On("Plan", mock.Anything, mock.Anything, mock.Anything).
		Return(samplePlanResult(), nil)

	r := setupPlanRouter(planner)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", planRequestBody(t))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result types.PlanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.TransitOptions, 2)
	assert.Equal(t, types.ModeDriving, result.TransitOptions[0].Mode)
	planner.AssertExpectations(t)
}

func TestCreatePlan_MalformedBodyRejected(t *testing.T) {
	planner := new(MockPlanner)
	r := setupPlanRouter(planner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	planner.AssertNotCalled(t, "Plan")
}

func TestCreatePlan_PipelineErrorMapped(t *testing.T) {
	planner := new(MockPlanner)
	planner.On("Plan", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.DestinationGeocodeFailed("Nowhereville", assert.AnError))

	r := setupPlanRouter(planner)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", planRequestBody(t))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStreamPlan_WritesEventPerUpdate(t *testing.T) {
	planner := new(MockPlanner)
	planner.On("Plan", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			emit := args.Get(2).(services.ProgressEmitter)
			_ = emit.Emit(types.ProgressUpdate{Stage: types.StageGeocoding, Message: "Locating Los Angeles...", ProgressPercent: 5})
			_ = emit.Emit(types.ProgressUpdate{Stage: types.StageFlights, Message: "Searching flights...", ProgressPercent: 15})
			_ = emit.Emit(types.ProgressUpdate{Stage: types.StageReady, Message: "Your travel options are ready", ProgressPercent: 70, Data: samplePlanResult()})
		}).
		Return(samplePlanResult(), nil)

	r := setupPlanRouter(planner)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/plans/stream", planRequestBody(t))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "event:geocoding")
	assert.Contains(t, body, "event:flights")
	assert.Contains(t, body, "event:ready")
	assert.Contains(t, body, `"progressPercent":70`)
}

func TestStreamPlan_ErrorEventEndsStream(t *testing.T) {
	planErr := apperrors.DestinationGeocodeFailed("Nowhereville", assert.AnError)
	planner := new(MockPlanner)
	planner.On("Plan", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			emit := args.Get(2).(services.ProgressEmitter)
			_ = emit.Emit(types.ProgressUpdate{Stage: types.StageGeocoding, ProgressPercent: 5})
			_ = emit.Emit(types.ProgressUpdate{Stage: types.StageError, Message: planErr.Error(), ProgressPercent: 5})
		}).
		Return(nil, planErr)

	r := setupPlanRouter(planner)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/plans/stream", planRequestBody(t))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event:error")
	assert.NotContains(t, body, "event:ready")
}
