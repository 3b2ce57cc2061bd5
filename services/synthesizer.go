package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/pkg/carbon"
	"github.com/EcoRoute/eco-route-backend/types"
)

const (
	// maxFlightCandidates bounds the flight list before ranking.
	maxFlightCandidates = 10

	// fallbackDrivingMaxKm suppresses the synthesized driving option on
	// routes too long to plausibly drive.
	fallbackDrivingMaxKm = 2000.0

	// Assumed speeds for synthesized fallback options.
	fallbackFlightSpeedKmh  = 800.0
	fallbackDrivingSpeedKmh = 80.0
)

// railClasses marks a route leg as rail-like for the train/bus split.
var railClasses = map[string]bool{
	"rail":       true,
	"train":      true,
	"subway":     true,
	"commuter":   true,
	"high_speed": true,
	"highspeed":  true,
}

// SynthesisInput carries the settled provider results into the synthesizer.
// All sources have either succeeded or definitively failed by the time this
// is built; the synthesizer never sees a half-finished fan-out.
type SynthesisInput struct {
	Flights      []types.FlightItinerary
	Transit      *types.TransitRoute
	Driving      *types.DrivingRoute
	DistanceKm   float64
	DurationDays int
}

// Synthesize reduces raw provider results into the ranked option list, the
// polylines worth drawing, and the per-request carbon statistics.
func Synthesize(in SynthesisInput) ([]types.TransitOption, []string, types.CarbonStats) {
	options := make([]types.TransitOption, 0, maxFlightCandidates+3)

	options = append(options, flightCandidates(in.Flights, in.DistanceKm)...)
	options = append(options, transitCandidates(in.Transit, in.DistanceKm)...)
	if in.Driving != nil && in.Driving.DistanceKm > 0 {
		options = append(options, drivingCandidate(in.Driving))
	}

	// Stable sort keeps discovery order for equal-carbon options, which
	// makes ranking reproducible across runs.
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].CarbonKg < options[j].CarbonKg
	})

	if len(options) == 0 && in.DistanceKm > 0 {
		options = fallbackCandidates(in.DistanceKm)
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].CarbonKg < options[j].CarbonKg
		})
		logger.GetLogger().Infow("No provider options found, synthesized fallback estimates",
			"distanceKm", in.DistanceKm,
			"options", len(options))
	}

	polylines := make([]string, 0, 2)
	for _, opt := range options {
		if opt.Polyline != nil {
			polylines = append(polylines, *opt.Polyline)
		}
	}

	return options, polylines, computeStats(options, in.DistanceKm, in.DurationDays)
}

// flightCandidates deduplicates raw itineraries by provider id, prefers
// nonstop itineraries, then fills the remaining slots with connecting ones,
// capped at maxFlightCandidates.
func flightCandidates(flights []types.FlightItinerary, distanceKm float64) []types.TransitOption {
	seen := make(map[string]bool, len(flights))
	var nonstop, connecting []types.FlightItinerary
	for _, f := range flights {
		if f.ID != "" && seen[f.ID] {
			continue
		}
		if f.ID != "" {
			seen[f.ID] = true
		}
		if f.Stops == 0 {
			nonstop = append(nonstop, f)
		} else {
			connecting = append(connecting, f)
		}
	}

	picked := nonstop
	if len(picked) < maxFlightCandidates {
		picked = append(picked, connecting...)
	}
	if len(picked) > maxFlightCandidates {
		picked = picked[:maxFlightCandidates]
	}

	options := make([]types.TransitOption, 0, len(picked))
	for _, f := range picked {
		carbonKg := carbon.EstimateFlightCarbon(float64(f.DurationMinutes))
		options = append(options, types.TransitOption{
			Mode:         types.ModeFlight,
			Duration:     formatMinutes(f.DurationMinutes),
			CarbonKg:     carbonKg,
			CarbonRating: carbon.Rate(perKm(carbonKg, distanceKm)),
			Provider:     f.Provider,
			Price:        f.Price,
			FlightNumber: f.FlightNumber,
			Stops:        f.Stops,
			BookingURL:   f.BookingURL,
		})
	}
	return options
}

// transitCandidates splits one multi-leg response into at most one
// train-dominant and at most one bus-dominant candidate. A route with any
// rail leg is train-dominant; an all-bus route (no competing rail legs) is
// bus-dominant.
func transitCandidates(route *types.TransitRoute, distanceKm float64) []types.TransitOption {
	if route == nil || len(route.Legs) == 0 {
		return nil
	}

	hasRail := false
	hasBus := false
	carbonKg := 0.0
	for _, leg := range route.Legs {
		if railClasses[leg.VehicleClass] {
			hasRail = true
		}
		if leg.VehicleClass == "bus" || leg.VehicleClass == "coach" {
			hasBus = true
		}
		carbonKg += carbon.EstimateGroundCarbon(leg.DistanceKm, leg.VehicleClass)
	}

	ratingDistance := route.TotalDistanceKm
	if ratingDistance <= 0 {
		ratingDistance = distanceKm
	}

	option := types.TransitOption{
		Duration:     formatMinutes(route.TotalDurationMinutes),
		CarbonKg:     carbonKg,
		CarbonRating: carbon.Rate(perKm(carbonKg, ratingDistance)),
		Segments:     route.Legs,
		Polyline:     route.Polyline,
	}

	switch {
	case hasRail:
		option.Mode = types.ModeTrain
		return []types.TransitOption{option}
	case hasBus:
		option.Mode = types.ModeBus
		return []types.TransitOption{option}
	default:
		return nil
	}
}

func drivingCandidate(route *types.DrivingRoute) types.TransitOption {
	carbonKg := carbon.EstimateGroundCarbon(route.DistanceKm, "car")
	return types.TransitOption{
		Mode:         types.ModeDriving,
		Duration:     formatMinutes(route.DurationMinutes),
		CarbonKg:     carbonKg,
		CarbonRating: carbon.Rate(perKm(carbonKg, route.DistanceKm)),
		Polyline:     route.Polyline,
	}
}

// fallbackCandidates synthesizes estimated options from straight-line
// distance alone: always one flight, plus one driving option when the route
// is short enough to drive.
func fallbackCandidates(distanceKm float64) []types.TransitOption {
	flightKg := distanceKm * carbon.FallbackFlightKgPerKm
	options := []types.TransitOption{{
		Mode:         types.ModeFlight,
		Duration:     formatHours(distanceKm / fallbackFlightSpeedKmh),
		CarbonKg:     flightKg,
		CarbonRating: carbon.Rate(perKm(flightKg, distanceKm)),
		Estimated:    true,
	}}

	if distanceKm < fallbackDrivingMaxKm {
		drivingKg := distanceKm * carbon.FallbackDrivingKgPerKm
		options = append(options, types.TransitOption{
			Mode:         types.ModeDriving,
			Duration:     formatHours(distanceKm / fallbackDrivingSpeedKmh),
			CarbonKg:     drivingKg,
			CarbonRating: carbon.Rate(perKm(drivingKg, distanceKm)),
			Estimated:    true,
		})
	}
	return options
}

// computeStats derives the per-request carbon summary. An empty option list
// (the distance-zero edge case) yields zeroed stats, not an error.
func computeStats(options []types.TransitOption, distanceKm float64, durationDays int) types.CarbonStats {
	stats := types.CarbonStats{
		TypicalTouristKg: carbon.TypicalTouristKg(distanceKm, durationDays),
	}
	if len(options) == 0 {
		return stats
	}

	best := options[0]
	worst := options[len(options)-1]
	stats.BestOption = &best
	stats.WorstOption = &worst
	stats.OffsetCostUsd = carbon.OffsetCostUSD(best.CarbonKg)

	if stats.TypicalTouristKg > 0 {
		stats.SavingsVsTypicalPercent = int(math.Round((1 - best.CarbonKg/stats.TypicalTouristKg) * 100))
	}
	return stats
}

// perKm guards the rating input against zero-distance routes.
func perKm(carbonKg, distanceKm float64) float64 {
	if distanceKm <= 0 {
		return 0
	}
	return carbonKg / distanceKm
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func formatHours(hours float64) string {
	return formatMinutes(int(math.Round(hours * 60)))
}
