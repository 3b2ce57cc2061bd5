package services

import (
	"fmt"
	"sort"
	"testing"

	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSynthesize_RanksByCarbonAscending(t *testing.T) {
	options, _, _ := Synthesize(SynthesisInput{
		Flights: []types.FlightItinerary{
			{ID: "f1", DurationMinutes: 90, Stops: 0},
			{ID: "f2", DurationMinutes: 150, Stops: 1},
		},
		Transit: &types.TransitRoute{
			Legs: []types.RouteLeg{
				{VehicleClass: "rail", DistanceKm: 600, DurationMinutes: 240},
			},
			TotalDurationMinutes: 240,
			TotalDistanceKm:      600,
		},
		Driving:      &types.DrivingRoute{DistanceKm: 560, DurationMinutes: 330},
		DistanceKm:   560,
		DurationDays: 2,
	})

	require.NotEmpty(t, options)
	assert.True(t, sort.SliceIsSorted(options, func(i, j int) bool {
		return options[i].CarbonKg < options[j].CarbonKg
	}), "options must be sorted by carbon ascending")

	// Rail at 600 km is 24.6 kg, the cleanest thing on offer.
	assert.Equal(t, types.ModeTrain, options[0].Mode)
}

func TestSynthesize_FallbackWhenAllProvidersEmpty(t *testing.T) {
	options, polylines, _ := Synthesize(SynthesisInput{
		DistanceKm:   1000,
		DurationDays: 3,
	})

	require.Len(t, options, 2)
	assert.Empty(t, polylines)

	// Driving at 0.21 kg/km beats flying at 0.255 kg/km, so it ranks first.
	assert.Equal(t, types.ModeDriving, options[0].Mode)
	assert.InDelta(t, 210.0, options[0].CarbonKg, 0.001)
	assert.Equal(t, types.ModeFlight, options[1].Mode)
	assert.InDelta(t, 255.0, options[1].CarbonKg, 0.001)

	for _, opt := range options {
		assert.True(t, opt.Estimated, "fallback options must be marked estimated")
	}
}

func TestSynthesize_FallbackSuppressesDrivingOnLongRoutes(t *testing.T) {
	options, _, _ := Synthesize(SynthesisInput{
		DistanceKm:   5000,
		DurationDays: 7,
	})

	require.Len(t, options, 1)
	assert.Equal(t, types.ModeFlight, options[0].Mode)
	assert.True(t, options[0].Estimated)
	assert.InDelta(t, 1275.0, options[0].CarbonKg, 0.001)
}

func TestSynthesize_ZeroDistanceYieldsNoFallback(t *testing.T) {
	options, _, stats := Synthesize(SynthesisInput{
		DistanceKm:   0,
		DurationDays: 1,
	})

	assert.Empty(t, options)
	assert.Nil(t, stats.BestOption)
	assert.Nil(t, stats.WorstOption)
	assert.Zero(t, stats.TypicalTouristKg)
}

func TestSynthesize_CarbonStats(t *testing.T) {
	_, _, stats := Synthesize(SynthesisInput{
		Flights: []types.FlightItinerary{
			{ID: "f1", DurationMinutes: 90, Stops: 0},
		},
		Driving:      &types.DrivingRoute{DistanceKm: 560, DurationMinutes: 330},
		DistanceKm:   560,
		DurationDays: 2,
	})

	require.NotNil(t, stats.BestOption)
	require.NotNil(t, stats.WorstOption)

	// Driving: 560 * 0.21 = 117.6 kg. Flight: 90 * 1.7 = 153 kg.
	assert.Equal(t, types.ModeDriving, stats.BestOption.Mode)
	assert.InDelta(t, 117.6, stats.BestOption.CarbonKg, 0.001)
	assert.Equal(t, types.ModeFlight, stats.WorstOption.Mode)
	assert.InDelta(t, 153.0, stats.WorstOption.CarbonKg, 0.001)

	// Typical: 560*0.255 + 2*12 = 166.8 kg. Savings: round(29.49...) = 29.
	assert.InDelta(t, 166.8, stats.TypicalTouristKg, 0.001)
	assert.Equal(t, 29, stats.SavingsVsTypicalPercent)
	assert.InDelta(t, 1.76, stats.OffsetCostUsd, 0.001)
	assert.GreaterOrEqual(t, stats.SavingsVsTypicalPercent, 0)
}

func TestFlightCandidates_DeduplicatesAndPrefersNonstop(t *testing.T) {
	flights := []types.FlightItinerary{
		{ID: "dup", DurationMinutes: 120, Stops: 1},
		{ID: "dup", DurationMinutes: 120, Stops: 1},
		{ID: "direct", DurationMinutes: 95, Stops: 0},
	}

	options := flightCandidates(flights, 800)
	require.Len(t, options, 2)
	assert.Equal(t, 0, options[0].Stops, "nonstop itineraries come first")
	assert.Equal(t, 1, options[1].Stops)
}

func TestFlightCandidates_CapsAtTen(t *testing.T) {
	var flights []types.FlightItinerary
	for i := 0; i < 25; i++ {
		flights = append(flights, types.FlightItinerary{
			ID:              fmt.Sprintf("f%d", i),
			DurationMinutes: 100 + i,
			Stops:           i % 2,
		})
	}

	options := flightCandidates(flights, 800)
	assert.Len(t, options, maxFlightCandidates)
}

func TestTransitCandidates_RailRouteBecomesTrain(t *testing.T) {
	route := &types.TransitRoute{
		Legs: []types.RouteLeg{
			{VehicleClass: "bus", DistanceKm: 20, DurationMinutes: 30},
			{VehicleClass: "rail", DistanceKm: 400, DurationMinutes: 180},
		},
		TotalDurationMinutes: 210,
		TotalDistanceKm:      420,
	}

	options := transitCandidates(route, 420)
	require.Len(t, options, 1)
	assert.Equal(t, types.ModeTrain, options[0].Mode)

	// 20*0.089 + 400*0.041 = 18.18 kg.
	assert.InDelta(t, 18.18, options[0].CarbonKg, 0.001)
	assert.Len(t, options[0].Segments, 2)
}

func TestTransitCandidates_AllBusRouteBecomesBus(t *testing.T) {
	route := &types.TransitRoute{
		Legs: []types.RouteLeg{
			{VehicleClass: "bus", DistanceKm: 150, DurationMinutes: 150},
			{VehicleClass: "coach", DistanceKm: 300, DurationMinutes: 240},
		},
		TotalDurationMinutes: 390,
		TotalDistanceKm:      450,
	}

	options := transitCandidates(route, 450)
	require.Len(t, options, 1)
	assert.Equal(t, types.ModeBus, options[0].Mode)
}

func TestTransitCandidates_WalkOnlyRouteYieldsNothing(t *testing.T) {
	route := &types.TransitRoute{
		Legs: []types.RouteLeg{
			{VehicleClass: "foot", DistanceKm: 2, DurationMinutes: 25},
		},
		TotalDurationMinutes: 25,
		TotalDistanceKm:      2,
	}

	assert.Empty(t, transitCandidates(route, 2))
	assert.Empty(t, transitCandidates(nil, 100))
}

func TestSynthesize_CollectsPolylines(t *testing.T) {
	poly := strPtr("abc123_encoded")
	_, polylines, _ := Synthesize(SynthesisInput{
		Driving:      &types.DrivingRoute{DistanceKm: 100, DurationMinutes: 75, Polyline: poly},
		DistanceKm:   100,
		DurationDays: 1,
	})

	require.Len(t, polylines, 1)
	assert.Equal(t, *poly, polylines[0])
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45m", formatMinutes(45))
	assert.Equal(t, "2h", formatMinutes(120))
	assert.Equal(t, "3h 25m", formatMinutes(205))
}
