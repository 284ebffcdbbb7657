package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gsrtc/transit-ops-backend/internal/models"
)

func TestAggregateLegs(t *testing.T) {
	standA := uuid.New()
	standB := uuid.New()
	standC := uuid.New()

	stops := []models.RouteStop{
		{StandID: standA, DistanceFromPrev: 99}, // origin distance must be discarded
		{StandID: standB, DistanceFromPrev: 12.5},
		{StandID: standC, DistanceFromPrev: 7.25},
	}

	normalized, total := AggregateLegs(stops)

	assert.Equal(t, 19.75, total)
	assert.Len(t, normalized, 3)
	assert.Equal(t, 1, normalized[0].Sequence)
	assert.Equal(t, 2, normalized[1].Sequence)
	assert.Equal(t, 3, normalized[2].Sequence)
	assert.Equal(t, 0.0, normalized[0].DistanceFromPrev)
	assert.Equal(t, 12.5, normalized[1].DistanceFromPrev)
	assert.Equal(t, 7.25, normalized[2].DistanceFromPrev)
}

func TestAggregateLegs_SingleStop(t *testing.T) {
	stops := []models.RouteStop{
		{StandID: uuid.New(), DistanceFromPrev: 42},
	}

	normalized, total := AggregateLegs(stops)

	assert.Equal(t, 0.0, total)
	assert.Equal(t, 1, normalized[0].Sequence)
	assert.Equal(t, 0.0, normalized[0].DistanceFromPrev)
}

func TestAggregateLegs_Empty(t *testing.T) {
	normalized, total := AggregateLegs(nil)

	assert.Empty(t, normalized)
	assert.Equal(t, 0.0, total)
}

func TestAggregateLegs_RoundsTotal(t *testing.T) {
	stops := []models.RouteStop{
		{StandID: uuid.New()},
		{StandID: uuid.New(), DistanceFromPrev: 0.1},
		{StandID: uuid.New(), DistanceFromPrev: 0.2},
	}

	_, total := AggregateLegs(stops)

	// 0.1 + 0.2 in floating point would otherwise be 0.30000000000000004
	assert.Equal(t, 0.3, total)
}

func TestAggregateLegs_PreservesInput(t *testing.T) {
	stops := []models.RouteStop{
		{StandID: uuid.New(), DistanceFromPrev: 5},
		{StandID: uuid.New(), DistanceFromPrev: 10},
	}

	normalized, _ := AggregateLegs(stops)

	assert.Equal(t, 5.0, stops[0].DistanceFromPrev)
	assert.Equal(t, 0, stops[0].Sequence)
	assert.NotSame(t, &stops[0], &normalized[0])
}
