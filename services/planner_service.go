package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/EcoRoute/eco-route-backend/config"
	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/store"
	"github.com/EcoRoute/eco-route-backend/types"
	"go.uber.org/zap"
)

const (
	// defaultDistanceKm substitutes for the straight-line distance when the
	// origin cannot be geocoded. Keeps far-fetched origins from hard-failing
	// the whole pipeline.
	defaultDistanceKm = 500.0

	// pinSearchRadiusDeg is the half-width of the bounding box used for the
	// nearby-pin lookup, in degrees.
	pinSearchRadiusDeg = 0.25

	pinSearchLimit = 20
)

// PlannerService is the fan-out coordinator: it resolves coordinates, issues
// all provider searches concurrently, narrates progress, and hands the
// settled results to the synthesizer.
type PlannerService struct {
	geocoder types.Geocoder
	flights  types.FlightSearcher
	transit  types.TransitSearcher
	driving  types.DrivingRouter
	lodging  types.LodgingSearcher
	pins     store.PinStore
	cfg      config.PlannerConfig
	log      *zap.SugaredLogger
	metrics  *plannerMetrics
}

func NewPlannerService(
	geocoder types.Geocoder,
	flights types.FlightSearcher,
	transit types.TransitSearcher,
	driving types.DrivingRouter,
	lodging types.LodgingSearcher,
	pins store.PinStore,
	cfg config.PlannerConfig,
) *PlannerService {
	return &PlannerService{
		geocoder: geocoder,
		flights:  flights,
		transit:  transit,
		driving:  driving,
		lodging:  lodging,
		pins:     pins,
		cfg:      cfg,
		log:      logger.GetLogger().Named("planner"),
		metrics:  newPlannerMetrics(),
	}
}

// fanOutResults collects the settled provider results. Each field is written
// by exactly one goroutine and read only after that goroutine's done channel
// has closed.
type fanOutResults struct {
	flights []types.FlightItinerary
	transit *types.TransitRoute
	driving *types.DrivingRoute
	hotels  []types.EcoHotel
	pins    []types.LocalPin
}

// Plan runs phase one: validate, geocode, fan out, synthesize. Every stage
// transition is published through emit. On a fatal error the terminal error
// event has already been emitted when Plan returns.
//
// The emitter decides pacing and transport; Plan only decides order and
// content, so the pipeline is testable without wall-clock delays.
func (s *PlannerService) Plan(ctx context.Context, req types.TripPlanRequest, emit ProgressEmitter) (*types.PlanResult, error) {
	start := time.Now()
	s.metrics.plansStarted.Inc()

	lastPercent := 0
	send := func(stage types.Stage, message string, percent int, data interface{}) {
		if percent < lastPercent {
			percent = lastPercent
		}
		lastPercent = percent
		if err := emit.Emit(types.ProgressUpdate{
			Stage:           stage,
			Message:         message,
			ProgressPercent: percent,
			Data:            data,
		}); err != nil {
			s.log.Warnw("Progress emit failed, continuing", "stage", stage, "error", err)
		}
	}
	fail := func(err error) (*types.PlanResult, error) {
		s.metrics.plansFailed.Inc()
		send(types.StageError, err.Error(), lastPercent, nil)
		return nil, err
	}

	if err := req.Validate(); err != nil {
		// Validation failures are rejected before any I/O; no provider call
		// is ever issued for an invalid request.
		return fail(err)
	}

	geoBounds, _ := types.StageGeocoding.Bounds()
	send(types.StageGeocoding, fmt.Sprintf("Locating %s...", req.EndLocation), geoBounds.Lower, nil)

	destination, err := s.geocoder.Geocode(ctx, req.EndLocation)
	if err != nil {
		s.log.Errorw("Destination geocoding failed", "destination", req.EndLocation, "error", err)
		return fail(apperrors.DestinationGeocodeFailed(req.EndLocation, err))
	}

	var origin *types.Coordinates
	distanceKm := defaultDistanceKm
	if originCoords, err := s.geocoder.Geocode(ctx, req.StartLocation); err != nil {
		// Origin failure is recoverable: proceed on a default straight-line
		// distance estimate rather than failing the whole plan.
		s.log.Warnw("Origin geocoding failed, using default distance",
			"origin", req.StartLocation,
			"defaultKm", defaultDistanceKm,
			"error", err)
	} else {
		origin = &originCoords
		distanceKm = haversineKm(originCoords, destination)
	}

	send(types.StageGeocoding, "Route located", geoBounds.Upper, map[string]interface{}{
		"origin":      origin,
		"destination": destination,
		"distanceKm":  distanceKm,
	})

	// Launch every provider operation now, before any narration delay, so
	// pacing never holds up actual work.
	results := &fanOutResults{}
	flightsDone := s.fetch(ctx, "flights", func(opCtx context.Context) error {
		found, err := s.flights.Search(opCtx, req.StartLocation, req.EndLocation, req.DepartureDate)
		results.flights = found
		return err
	})
	transitDone := s.fetch(ctx, "transit", func(opCtx context.Context) error {
		if origin == nil {
			// Without origin coordinates there is nothing to route from.
			return nil
		}
		route, err := s.transit.Search(opCtx, *origin, destination, req.DepartureDate)
		results.transit = route
		return err
	})
	drivingDone := s.fetch(ctx, "driving", func(opCtx context.Context) error {
		if origin == nil {
			return nil
		}
		route, err := s.driving.Route(opCtx, *origin, destination)
		results.driving = route
		return err
	})
	hotelsDone := s.fetch(ctx, "hotels", func(opCtx context.Context) error {
		found, err := s.lodging.Search(opCtx, req.EndLocation, destination, req.ItineraryType)
		results.hotels = found
		return err
	})
	pinsDone := s.fetch(ctx, "pins", func(opCtx context.Context) error {
		found, err := s.pins.ListInBounds(opCtx,
			destination.Lat-pinSearchRadiusDeg, destination.Lng-pinSearchRadiusDeg,
			destination.Lat+pinSearchRadiusDeg, destination.Lng+pinSearchRadiusDeg,
			pinSearchLimit)
		results.pins = found
		return err
	})

	// Narrate each stage in the fixed total order as its provider settles.
	// The providers race freely; only the narration is ordered.
	stages := []struct {
		stage  types.Stage
		start  string
		done   func() string
		settle <-chan struct{}
	}{
		{types.StageFlights, "Searching flights...",
			func() string { return fmt.Sprintf("Found %d flights", len(results.flights)) }, flightsDone},
		{types.StageTransit, "Checking trains and buses...",
			func() string {
				if results.transit == nil {
					return "No ground transit found"
				}
				return fmt.Sprintf("Found a %d-leg ground route", len(results.transit.Legs))
			}, transitDone},
		{types.StageDriving, "Mapping a driving route...",
			func() string {
				if results.driving == nil {
					return "No driving route found"
				}
				return fmt.Sprintf("Driving route: %.0f km", results.driving.DistanceKm)
			}, drivingDone},
		{types.StageHotels, "Finding eco-friendly stays...",
			func() string { return fmt.Sprintf("Found %d places to stay", len(results.hotels)) }, hotelsDone},
		{types.StagePins, "Gathering local recommendations...",
			func() string { return fmt.Sprintf("Found %d local pins", len(results.pins)) }, pinsDone},
	}

	for _, st := range stages {
		bounds, _ := st.stage.Bounds()
		send(st.stage, st.start, bounds.Lower, nil)
		select {
		case <-st.settle:
		case <-ctx.Done():
			// The caller is gone. Remaining provider calls run to completion
			// and their results are discarded; nothing more to narrate.
			s.metrics.plansFailed.Inc()
			return nil, ctx.Err()
		}
		send(st.stage, st.done(), bounds.Upper, nil)
	}

	options, polylines, stats := Synthesize(SynthesisInput{
		Flights:      results.flights,
		Transit:      results.transit,
		Driving:      results.driving,
		DistanceKm:   distanceKm,
		DurationDays: req.DurationDays,
	})

	result := &types.PlanResult{
		TransitOptions: options,
		RoutePolylines: polylines,
		CarbonStats:    stats,
		Hotels:         results.hotels,
		Pins:           results.pins,
		Origin:         origin,
		Destination:    destination,
		DistanceKm:     distanceKm,
	}

	readyBounds, _ := types.StageReady.Bounds()
	send(types.StageReady, "Your travel options are ready", readyBounds.Upper, result)

	s.metrics.planDuration.Observe(time.Since(start).Seconds())
	s.log.Infow("Plan completed",
		"origin", req.StartLocation,
		"destination", req.EndLocation,
		"options", len(options),
		"duration", time.Since(start))

	return result, nil
}

// fetch runs one provider operation in its own goroutine with its own
// timeout and failure domain. A provider error or panic degrades to an
// empty result plus a logged warning; it never aborts the plan. The
// returned channel closes when the operation has settled.
func (s *PlannerService) fetch(ctx context.Context, name string, op func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				s.metrics.providerFailures.WithLabelValues(name).Inc()
				s.log.Warnw("Provider panicked, treating as empty result",
					"provider", name,
					"panic", r)
			}
		}()

		opCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.ProviderTimeoutSeconds)*time.Second)
		defer cancel()

		if err := op(opCtx); err != nil {
			s.metrics.providerFailures.WithLabelValues(name).Inc()
			s.log.Warnw("Provider failed, treating as empty result",
				"provider", name,
				"error", err)
		}
	}()
	return done
}

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(a, b types.Coordinates) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
