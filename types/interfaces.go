package types

import "context"

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Coordinates, error)
}

// FlightSearcher searches flight itineraries between two named places on a
// given date. Implementations return raw provider results; normalization
// and ranking happen in the synthesizer.
type FlightSearcher interface {
	Search(ctx context.Context, origin, destination, date string) ([]FlightItinerary, error)
}

// TransitSearcher searches a multi-leg ground transit route between two
// coordinate pairs.
type TransitSearcher interface {
	Search(ctx context.Context, origin, destination Coordinates, date string) (*TransitRoute, error)
}

// DrivingRouter computes a point-to-point driving route.
type DrivingRouter interface {
	Route(ctx context.Context, origin, destination Coordinates) (*DrivingRoute, error)
}

// LodgingSearcher searches eco-rated lodging near the destination.
type LodgingSearcher interface {
	Search(ctx context.Context, destination string, near Coordinates, itineraryType string) ([]EcoHotel, error)
}

// ItineraryGenerator is the opaque narrative generator collaborator.
// Structured request in, narrative text out; its internals are not this
// service's concern.
type ItineraryGenerator interface {
	GenerateItinerary(ctx context.Context, req ItineraryRequest) (string, error)
	AnswerQuestion(ctx context.Context, question, tripContext string) (string, error)
}
