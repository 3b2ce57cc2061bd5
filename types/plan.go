package types

import (
	"time"

	"github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/pkg/carbon"
)

// TransitMode discriminates the TransitOption union.
type TransitMode string

const (
	ModeFlight  TransitMode = "flight"
	ModeTrain   TransitMode = "train"
	ModeBus     TransitMode = "bus"
	ModeDriving TransitMode = "driving"
)

// TripPlanRequest is the immutable input to the planning pipeline. It is
// validated before any I/O is issued.
type TripPlanRequest struct {
	StartLocation string `json:"startLocation"`
	EndLocation   string `json:"endLocation"`
	ItineraryType string `json:"itineraryType"`
	DepartureDate string `json:"departureDate"` // YYYY-MM-DD
	DurationDays  int    `json:"durationDays"`
}

// Validate checks the required request fields. All four string fields are
// required; a missing field fails the request before any provider is called.
func (r *TripPlanRequest) Validate() error {
	if r.StartLocation == "" {
		return errors.ValidationFailed("invalid plan request", "startLocation is required")
	}
	if r.EndLocation == "" {
		return errors.ValidationFailed("invalid plan request", "endLocation is required")
	}
	if r.ItineraryType == "" {
		return errors.ValidationFailed("invalid plan request", "itineraryType is required")
	}
	if r.DepartureDate == "" {
		return errors.ValidationFailed("invalid plan request", "departureDate is required")
	}
	if _, err := time.Parse("2006-01-02", r.DepartureDate); err != nil {
		return errors.ValidationFailed("invalid plan request", "departureDate must be YYYY-MM-DD")
	}
	if r.DurationDays < 1 {
		r.DurationDays = 1
	}
	return nil
}

// Coordinates is a geographic point. Produced only by the geocode resolver;
// never fabricated inside the pipeline.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteLeg is one segment of a multi-leg ground route.
type RouteLeg struct {
	VehicleClass    string  `json:"vehicleClass"`
	Line            *string `json:"line,omitempty"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	DurationMinutes int     `json:"durationMinutes"`
	DistanceKm      float64 `json:"distanceKm"`
}

// TransitOption is one ranked travel option. Mode-specific fields are
// pointers so absence is explicit rather than zero-valued.
type TransitOption struct {
	Mode         TransitMode   `json:"mode"`
	Duration     string        `json:"duration"`
	CarbonKg     float64       `json:"carbonKg"`
	CarbonRating carbon.Rating `json:"carbonRating"`

	// Flight-only fields.
	Provider     *string  `json:"provider,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	FlightNumber *string  `json:"flightNumber,omitempty"`
	Stops        int      `json:"stops"`
	BookingURL   *string  `json:"bookingUrl,omitempty"`

	// Train/bus-only field.
	Segments []RouteLeg `json:"segments,omitempty"`

	// Train/bus/driving field.
	Polyline *string `json:"polyline,omitempty"`

	// Estimated marks a synthesized fallback option, produced when no real
	// provider data exists for the route.
	Estimated bool `json:"estimated,omitempty"`
}

// FlightItinerary is the raw flight search result before normalization.
type FlightItinerary struct {
	ID              string   `json:"id"`
	Provider        *string  `json:"provider,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	FlightNumber    *string  `json:"flightNumber,omitempty"`
	Stops           int      `json:"stops"`
	DurationMinutes int      `json:"durationMinutes"`
	BookingURL      *string  `json:"bookingUrl,omitempty"`
}

// TransitRoute is the raw multi-leg ground transit search result.
type TransitRoute struct {
	Legs                 []RouteLeg `json:"legs"`
	TotalDurationMinutes int        `json:"totalDurationMinutes"`
	TotalDistanceKm      float64    `json:"totalDistanceKm"`
	Polyline             *string    `json:"polyline,omitempty"`
}

// DrivingRoute is the raw point-to-point driving route result.
type DrivingRoute struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
	Polyline        *string `json:"polyline,omitempty"`
}

// EcoHotel is a lodging search result. Optional fields reflect provider
// gaps; consumers must tolerate absence.
type EcoHotel struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Address    string       `json:"address"`
	Rating     *float64     `json:"rating,omitempty"`
	PriceLevel *int         `json:"priceLevel,omitempty"`
	Summary    *string      `json:"summary,omitempty"`
	WebsiteURL *string      `json:"websiteUrl,omitempty"`
	MapsURL    *string      `json:"mapsUrl,omitempty"`
	Location   *Coordinates `json:"location,omitempty"`
}

// LocalPin is a read-only snapshot of a community point of interest near the
// destination. Owned by the pin store, not by the planner.
type LocalPin struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// CarbonStats summarizes the ranked option set. Derived per request, never
// persisted.
type CarbonStats struct {
	BestOption              *TransitOption `json:"bestOption,omitempty"`
	WorstOption             *TransitOption `json:"worstOption,omitempty"`
	TypicalTouristKg        float64        `json:"typicalTouristKg"`
	SavingsVsTypicalPercent int            `json:"savingsVsTypicalPercent"`
	OffsetCostUsd           float64        `json:"offsetCostUsd"`
}

// PlanResult is the complete phase-one payload delivered with the ready
// event (and by the synchronous plan endpoint).
type PlanResult struct {
	TransitOptions []TransitOption `json:"transitOptions"`
	RoutePolylines []string        `json:"routePolylines"`
	CarbonStats    CarbonStats     `json:"carbonStats"`
	Hotels         []EcoHotel      `json:"hotels"`
	Pins           []LocalPin      `json:"localPins"`
	Origin         *Coordinates    `json:"origin,omitempty"`
	Destination    Coordinates     `json:"destination"`
	DistanceKm     float64         `json:"distanceKm"`
}
