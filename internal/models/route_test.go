package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFareInputToPair(t *testing.T) {
	sleeper := 50.0

	// missing subfields default to zero
	pair := (&FareInput{Sleeper: &sleeper}).ToPair()
	assert.Equal(t, FarePair{Sleeper: 50, Seating: 0}, pair)

	// nil input is a zero pair
	var fare *FareInput
	assert.Equal(t, FarePair{}, fare.ToPair())
}

func TestStopListScanRoundTrip(t *testing.T) {
	standID := uuid.New()
	arrival := 660
	stops := StopList{
		{StandID: standID, Sequence: 1, ArrivalTime: &arrival, DistanceFromPrev: 12.5, Fare: FarePair{Sleeper: 250}},
	}

	value, err := stops.Value()
	require.NoError(t, err)

	var decoded StopList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, stops, decoded)

	// stored documents keep the wire field names
	assert.Contains(t, string(value.([]byte)), `"stand"`)
	assert.Contains(t, string(value.([]byte)), `"distanceFromPrev"`)
}

func TestStopListScanNull(t *testing.T) {
	var stops StopList
	require.NoError(t, stops.Scan(nil))
	assert.Nil(t, stops)
}

func TestRouteStopJSONOmitsAbsentTimes(t *testing.T) {
	raw, err := json.Marshal(RouteStop{StandID: uuid.New(), Sequence: 1})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "arrivalTime")
	assert.NotContains(t, string(raw), "departureTime")
}

func TestCreateRouteRequestValidate(t *testing.T) {
	valid := CreateRouteRequest{
		Name:   "Hyderabad Express",
		Bus:    uuid.New().String(),
		Stands: []StopInput{{Stand: uuid.New().String()}},
	}
	assert.NoError(t, valid.Validate())

	t.Run("no stands", func(t *testing.T) {
		req := valid
		req.Stands = nil
		assert.Error(t, req.Validate())
	})

	t.Run("negative distance", func(t *testing.T) {
		req := valid
		distance := -1.0
		req.Stands = []StopInput{{Stand: uuid.New().String(), DistanceFromPrev: &distance}}
		assert.Error(t, req.Validate())
	})

	t.Run("negative fare", func(t *testing.T) {
		req := valid
		fare := -10.0
		req.TotalFare = &FareInput{Sleeper: &fare}
		assert.Error(t, req.Validate())
	})

	t.Run("bad status", func(t *testing.T) {
		req := valid
		status := "Paused"
		req.Status = &status
		assert.Error(t, req.Validate())
	})

	t.Run("validity window inverted", func(t *testing.T) {
		req := valid
		from, to := "2026-02-01", "2026-01-01"
		req.ValidFrom, req.ValidTo = &from, &to
		assert.Error(t, req.Validate())
	})

	t.Run("malformed times are not rejected", func(t *testing.T) {
		req := valid
		badTime := "25:99"
		req.Stands = []StopInput{{Stand: uuid.New().String(), DepartureTime: &badTime}}
		assert.NoError(t, req.Validate())
	})
}
