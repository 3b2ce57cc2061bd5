package types

import "github.com/EcoRoute/eco-route-backend/errors"

// ItineraryRequest is the phase-two input: the caller echoes back its
// selections from the phase-one plan. The server holds no state between the
// two phases, so replaying the same payload is side-effect free beyond
// re-invoking the generator.
type ItineraryRequest struct {
	Destination     string         `json:"destination"`
	ItineraryType   string         `json:"itineraryType"`
	DurationDays    int            `json:"durationDays"`
	SelectedTransit *TransitOption `json:"selectedTransit"`
	SelectedHotel   *EcoHotel      `json:"selectedHotel,omitempty"`
	LocalPins       []LocalPin     `json:"localPins,omitempty"`
}

// Validate enforces the phase-two contract: destination and exactly one
// transit selection are required, everything else is optional.
func (r *ItineraryRequest) Validate() error {
	if r.Destination == "" {
		return errors.ValidationFailed("invalid itinerary request", "destination is required")
	}
	if r.SelectedTransit == nil {
		return errors.SelectionMissing("selectedTransit")
	}
	if r.DurationDays < 1 {
		r.DurationDays = 1
	}
	return nil
}

// ItineraryResponse combines the generated narrative with an echo of the
// caller's selections.
type ItineraryResponse struct {
	Itinerary       string         `json:"itinerary"`
	SelectedTransit *TransitOption `json:"selectedTransit"`
	SelectedHotel   *EcoHotel      `json:"selectedHotel,omitempty"`
}

// QuestionRequest is the free-text question endpoint input.
type QuestionRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}
