package services

import (
	"math"

	"github.com/gsrtc/transit-ops-backend/internal/models"
)

// AggregateLegs normalizes a route's stop sequence and computes the total
// route distance. It never rejects input:
//
//   - sequence numbers are re-derived from array position (1-based),
//   - the origin stop's distanceFromPrev is forced to 0 regardless of input,
//   - the total is the sum of all leg distances, rounded to 2 decimals.
//
// Referential validation (stand existence) is the caller's responsibility.
func AggregateLegs(stops []models.RouteStop) ([]models.RouteStop, float64) {
	normalized := make([]models.RouteStop, len(stops))
	total := 0.0

	for i, stop := range stops {
		stop.Sequence = i + 1
		if i == 0 {
			stop.DistanceFromPrev = 0
		}
		total += stop.DistanceFromPrev
		normalized[i] = stop
	}

	return normalized, roundTo2(total)
}

func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
