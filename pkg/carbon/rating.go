package carbon

import "math"

// Rating is a qualitative emissions bucket derived from carbon-per-km.
type Rating struct {
	Label string  `json:"rating"`
	Color string  `json:"color"`
	Score float64 `json:"score"`
}

// Rating thresholds in kg CO2e per km.
const (
	ratingLowMax      = 0.05
	ratingModerateMax = 0.12
	ratingHighMax     = 0.22
	ratingScaleMax    = 0.30
)

// Rate buckets a per-km emission value into a display rating. Pure function:
// identical inputs always yield identical ratings.
func Rate(carbonPerKm float64) Rating {
	if carbonPerKm < 0 {
		carbonPerKm = 0
	}

	// Normalized severity in [0,1], rounded so equal inputs compare equal
	// after JSON round-trips.
	score := math.Round(math.Min(carbonPerKm/ratingScaleMax, 1.0)*100) / 100

	switch {
	case carbonPerKm <= ratingLowMax:
		return Rating{Label: "low", Color: "#2e7d32", Score: score}
	case carbonPerKm <= ratingModerateMax:
		return Rating{Label: "moderate", Color: "#f9a825", Score: score}
	case carbonPerKm <= ratingHighMax:
		return Rating{Label: "high", Color: "#ef6c00", Score: score}
	default:
		return Rating{Label: "very_high", Color: "#c62828", Score: score}
	}
}
