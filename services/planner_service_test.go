package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/EcoRoute/eco-route-backend/config"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/store"
	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	resetPlannerMetricsForTesting()
	os.Exit(m.Run())
}

// Stub providers built from plain funcs, so each test declares exactly the
// behavior it needs inline.

type stubGeocoder struct {
	fn func(place string) (types.Coordinates, error)
}

func (s stubGeocoder) Geocode(_ context.Context, place string) (types.Coordinates, error) {
	return s.fn(place)
}

type stubFlights struct {
	fn func() ([]types.FlightItinerary, error)
}

func (s stubFlights) Search(_ context.Context, _, _, _ string) ([]types.FlightItinerary, error) {
	return s.fn()
}

type stubTransit struct {
	fn func() (*types.TransitRoute, error)
}

func (s stubTransit) Search(_ context.Context, _, _ types.Coordinates, _ string) (*types.TransitRoute, error) {
	return s.fn()
}

type stubDriving struct {
	fn func() (*types.DrivingRoute, error)
}

func (s stubDriving) Route(_ context.Context, _, _ types.Coordinates) (*types.DrivingRoute, error) {
	return s.fn()
}

type stubLodging struct {
	fn func() ([]types.EcoHotel, error)
}

func (s stubLodging) Search(_ context.Context, _ string, _ types.Coordinates, _ string) ([]types.EcoHotel, error) {
	return s.fn()
}

var testCoords = map[string]types.Coordinates{
	"San Francisco": {Lat: 37.7749, Lng: -122.4194},
	"Los Angeles":   {Lat: 34.0522, Lng: -118.2437},
}

func cityGeocoder() stubGeocoder {
	return stubGeocoder{fn: func(place string) (types.Coordinates, error) {
		if c, ok := testCoords[place]; ok {
			return c, nil
		}
		return types.Coordinates{}, fmt.Errorf("no results for %q", place)
	}}
}

func testPlannerConfig() config.PlannerConfig {
	return config.PlannerConfig{ProviderTimeoutSeconds: 5}
}

func validRequest() types.TripPlanRequest {
	return types.TripPlanRequest{
		StartLocation: "San Francisco",
		EndLocation:   "Los Angeles",
		ItineraryType: "nature",
		DepartureDate: "2026-09-15",
		DurationDays:  2,
	}
}

func newTestPlanner(flights stubFlights, transit stubTransit, driving stubDriving, lodging stubLodging) *PlannerService {
	return NewPlannerService(
		cityGeocoder(),
		flights,
		transit,
		driving,
		lodging,
		store.NoopPinStore{},
		testPlannerConfig(),
	)
}

func happyProviders() (stubFlights, stubTransit, stubDriving, stubLodging) {
	return stubFlights{fn: func() ([]types.FlightItinerary, error) {
			return []types.FlightItinerary{{ID: "f1", DurationMinutes: 90, Stops: 0}}, nil
		}},
		stubTransit{fn: func() (*types.TransitRoute, error) {
			return &types.TransitRoute{
				Legs:                 []types.RouteLeg{{VehicleClass: "rail", DistanceKm: 600, DurationMinutes: 420}},
				TotalDurationMinutes: 420,
				TotalDistanceKm:      600,
			}, nil
		}},
		stubDriving{fn: func() (*types.DrivingRoute, error) {
			return &types.DrivingRoute{DistanceKm: 615, DurationMinutes: 350}, nil
		}},
		stubLodging{fn: func() ([]types.EcoHotel, error) {
			return []types.EcoHotel{{ID: "h1", Name: "Green Stay", Address: "1 Eco Way"}}, nil
		}}
}

func TestPlan_HappyPath(t *testing.T) {
	planner := newTestPlanner(happyProviders())
	emitter := NewCollectingEmitter()

	result, err := planner.Plan(context.Background(), validRequest(), emitter)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, result.TransitOptions, 3)
	assert.Len(t, result.Hotels, 1)
	assert.NotNil(t, result.Origin)
	assert.Greater(t, result.DistanceKm, 500.0)

	updates := emitter.Updates()
	require.NotEmpty(t, updates)

	last := updates[len(updates)-1]
	assert.Equal(t, types.StageReady, last.Stage)
	assert.Equal(t, 70, last.ProgressPercent)
	assert.NotNil(t, last.Data)
}

func TestPlan_ProgressIsMonotonicAndOrdered(t *testing.T) {
	planner := newTestPlanner(happyProviders())
	emitter := NewCollectingEmitter()

	_, err := planner.Plan(context.Background(), validRequest(), emitter)
	require.NoError(t, err)

	updates := emitter.Updates()
	lastPercent := 0
	lastOrder := -1
	for _, u := range updates {
		assert.GreaterOrEqual(t, u.ProgressPercent, lastPercent,
			"progress must never move backwards (stage %s)", u.Stage)
		lastPercent = u.ProgressPercent

		order := u.Stage.Order()
		assert.GreaterOrEqual(t, order, lastOrder,
			"stages must appear in pipeline order (stage %s)", u.Stage)
		lastOrder = order
	}
}

func TestPlan_ProviderFailureIsIsolated(t *testing.T) {
	_, transit, driving, lodging := happyProviders()
	flights := stubFlights{fn: func() ([]types.FlightItinerary, error) {
		return nil, fmt.Errorf("upstream 503")
	}}

	planner := newTestPlanner(flights, transit, driving, lodging)
	emitter := NewCollectingEmitter()

	result, err := planner.Plan(context.Background(), validRequest(), emitter)
	require.NoError(t, err)

	// Flight search failed but train and driving survive.
	modes := make(map[types.TransitMode]bool)
	for _, opt := range result.TransitOptions {
		modes[opt.Mode] = true
	}
	assert.False(t, modes[types.ModeFlight])
	assert.True(t, modes[types.ModeTrain])
	assert.True(t, modes[types.ModeDriving])

	last := emitter.Updates()[len(emitter.Updates())-1]
	assert.Equal(t, types.StageReady, last.Stage)
}

func TestPlan_ProviderPanicIsIsolated(t *testing.T) {
	_, transit, driving, lodging := happyProviders()
	flights := stubFlights{fn: func() ([]types.FlightItinerary, error) {
		panic("provider decode blew up")
	}}

	planner := newTestPlanner(flights, transit, driving, lodging)

	result, err := planner.Plan(context.Background(), validRequest(), NewCollectingEmitter())
	require.NoError(t, err)
	assert.Len(t, result.TransitOptions, 2)
}

func TestPlan_DestinationGeocodeFailureIsFatal(t *testing.T) {
	flights, transit, driving, lodging := happyProviders()
	planner := newTestPlanner(flights, transit, driving, lodging)
	emitter := NewCollectingEmitter()

	req := validRequest()
	req.EndLocation = "Nowhereville"

	result, err := planner.Plan(context.Background(), req, emitter)
	require.Error(t, err)
	assert.Nil(t, result)

	updates := emitter.Updates()
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, types.StageError, last.Stage)
	assert.NotEmpty(t, last.Message)
}

func TestPlan_OriginGeocodeFailureFallsBackToDefaultDistance(t *testing.T) {
	flights, transit, driving, lodging := happyProviders()
	planner := newTestPlanner(flights, transit, driving, lodging)
	emitter := NewCollectingEmitter()

	req := validRequest()
	req.StartLocation = "Atlantis"

	result, err := planner.Plan(context.Background(), req, emitter)
	require.NoError(t, err)

	assert.Nil(t, result.Origin)
	assert.Equal(t, defaultDistanceKm, result.DistanceKm)

	// Without origin coordinates the coordinate-based providers are skipped;
	// only the flight option remains.
	require.Len(t, result.TransitOptions, 1)
	assert.Equal(t, types.ModeFlight, result.TransitOptions[0].Mode)
}

func TestPlan_InvalidRequestEmitsTerminalError(t *testing.T) {
	flights, transit, driving, lodging := happyProviders()
	planner := newTestPlanner(flights, transit, driving, lodging)
	emitter := NewCollectingEmitter()

	req := validRequest()
	req.DepartureDate = "15-09-2026"

	_, err := planner.Plan(context.Background(), req, emitter)
	require.Error(t, err)

	updates := emitter.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, types.StageError, updates[0].Stage)
}

func TestPlan_CancelledContextStopsNarration(t *testing.T) {
	_, transit, driving, lodging := happyProviders()
	// A slow provider keeps its settle channel pending, so the cancelled
	// context is the only ready branch when narration reaches it.
	flights := stubFlights{fn: func() ([]types.FlightItinerary, error) {
		time.Sleep(250 * time.Millisecond)
		return nil, nil
	}}
	planner := newTestPlanner(flights, transit, driving, lodging)
	emitter := NewCollectingEmitter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := planner.Plan(ctx, validRequest(), emitter)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	for _, u := range emitter.Updates() {
		assert.NotEqual(t, types.StageReady, u.Stage,
			"a cancelled plan must never emit ready")
	}
}

func TestHaversineKm(t *testing.T) {
	sf := testCoords["San Francisco"]
	la := testCoords["Los Angeles"]

	d := haversineKm(sf, la)
	assert.InDelta(t, 559.0, d, 10.0)
	assert.Zero(t, haversineKm(sf, sf))
}
