// Package carbon estimates travel emissions and converts them into
// qualitative ratings. Everything in this package is pure: the same inputs
// always produce the same outputs, and no I/O ever happens here.
package carbon

import "math"

// Emission factors in kg CO2e per passenger-km. These are configuration
// constants, not computed values; treat them as product-owned numbers.
const (
	factorCar       = 0.21
	factorBus       = 0.089
	factorRail      = 0.041
	factorHighSpeed = 0.035

	// Flight emissions are estimated from flight time at an assumed cruise
	// burn rate, since provider results carry durations, not distances.
	flightKgPerMinute = 1.7

	// Per-km factor used when synthesizing a flight option from straight-line
	// distance alone (short-haul assumption).
	FallbackFlightKgPerKm = 0.255

	// Per-km factor for a synthesized average-vehicle driving option.
	FallbackDrivingKgPerKm = factorCar

	// Carbon offset price in USD per tonne CO2e.
	offsetUsdPerTonne = 15.0
)

// groundFactors maps a vehicle class reported by the transit provider to its
// per-km emission factor. Unknown classes fall back to the car factor.
var groundFactors = map[string]float64{
	"car":        factorCar,
	"driving":    factorCar,
	"bus":        factorBus,
	"coach":      factorBus,
	"rail":       factorRail,
	"train":      factorRail,
	"subway":     factorRail,
	"commuter":   factorRail,
	"high_speed": factorHighSpeed,
	"highspeed":  factorHighSpeed,
}

// EstimateFlightCarbon returns the estimated emissions in kg CO2e for a
// flight of the given duration. Monotonic: longer flights never emit less.
func EstimateFlightCarbon(durationMinutes float64) float64 {
	if durationMinutes <= 0 {
		return 0
	}
	return durationMinutes * flightKgPerMinute
}

// EstimateGroundCarbon returns the estimated emissions in kg CO2e for a
// ground journey of distanceKm in the given vehicle class.
func EstimateGroundCarbon(distanceKm float64, vehicleClass string) float64 {
	if distanceKm <= 0 {
		return 0
	}
	factor, ok := groundFactors[vehicleClass]
	if !ok {
		factor = factorCar
	}
	return distanceKm * factor
}

// TypicalTouristKg estimates the footprint of a conventional trip over the
// same distance and stay length, independent of any discovered options. Used
// as the comparison baseline for savings percentages.
func TypicalTouristKg(distanceKm float64, durationDays int) float64 {
	if distanceKm <= 0 {
		return 0
	}
	if durationDays < 1 {
		durationDays = 1
	}
	// Baseline tourist flies the route and spends ~12 kg/day on local travel.
	return distanceKm*FallbackFlightKgPerKm + float64(durationDays)*12.0
}

// OffsetCostUSD returns the cost of offsetting the given emissions at the
// fixed offset rate, rounded to cents.
func OffsetCostUSD(carbonKg float64) float64 {
	if carbonKg <= 0 {
		return 0
	}
	return math.Round(carbonKg/1000.0*offsetUsdPerTonne*100) / 100
}
