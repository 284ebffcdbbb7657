package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RouteStatus represents the operational status of a route
type RouteStatus string

const (
	RouteStatusActive   RouteStatus = "Active"
	RouteStatusInactive RouteStatus = "Inactive"
)

// FarePair holds the sleeper and seating fare amounts in rupees
type FarePair struct {
	Sleeper float64 `json:"sleeper"`
	Seating float64 `json:"seating"`
}

// RouteStop is one leg of a route: a stand visited in sequence, with its
// schedule and fare contribution. Arrival and departure times are stored as
// minute-of-day offsets in [0,1439]. The first stop has no meaningful arrival
// time and the last stop has no meaningful departure time.
type RouteStop struct {
	StandID          uuid.UUID `json:"stand"`
	Sequence         int       `json:"sequence"`
	ArrivalTime      *int      `json:"arrivalTime,omitempty"`
	DepartureTime    *int      `json:"departureTime,omitempty"`
	DistanceFromPrev float64   `json:"distanceFromPrev"`
	Fare             FarePair  `json:"fare"`
}

// StopList is the ordered stop sequence of a route, persisted as a JSONB
// document column.
type StopList []RouteStop

// Value implements the driver.Valuer interface
func (s StopList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *StopList) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StopList", src)
	}
}

// Value implements the driver.Valuer interface
func (f FarePair) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements the sql.Scanner interface
func (f *FarePair) Scan(src interface{}) error {
	if src == nil {
		*f = FarePair{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into FarePair", src)
	}
}

// Route represents an assembled bus route document
type Route struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Code           string      `json:"code" db:"code"`
	BusID          uuid.UUID   `json:"bus" db:"bus_id"`
	ConductorID    *uuid.UUID  `json:"conductor,omitempty" db:"conductor_id"`
	Stops          StopList    `json:"stands" db:"stands"`
	Status         RouteStatus `json:"status" db:"status"`
	IsSpecialRoute bool        `json:"isSpecialRoute" db:"is_special_route"`
	FestivalName   *string     `json:"festivalName,omitempty" db:"festival_name"`
	DistanceKm     float64     `json:"distanceKm" db:"distance_km"`
	TotalFare      FarePair    `json:"totalFare" db:"total_fare"`
	ValidFrom      *time.Time  `json:"validFrom,omitempty" db:"valid_from"`
	ValidTo        *time.Time  `json:"validTo,omitempty" db:"valid_to"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// FareInput is a caller-supplied fare pair where either amount may be absent.
// Absent amounts default to 0.
type FareInput struct {
	Sleeper *float64 `json:"sleeper,omitempty"`
	Seating *float64 `json:"seating,omitempty"`
}

// ToPair resolves a possibly nil or partial fare input into a complete pair,
// preserving supplied values exactly
func (f *FareInput) ToPair() FarePair {
	pair := FarePair{}
	if f == nil {
		return pair
	}
	if f.Sleeper != nil {
		pair.Sleeper = *f.Sleeper
	}
	if f.Seating != nil {
		pair.Seating = *f.Seating
	}
	return pair
}

// StopInput is one requested stop. Times arrive as HH:MM text and are
// converted to minute offsets during assembly; malformed times normalize to
// null rather than rejecting the request.
type StopInput struct {
	Stand            string     `json:"stand" binding:"required"`
	ArrivalTime      *string    `json:"arrivalTime,omitempty"`
	DepartureTime    *string    `json:"departureTime,omitempty"`
	DistanceFromPrev *float64   `json:"distanceFromPrev,omitempty"`
	Fare             *FareInput `json:"fare,omitempty"`
}

// CreateRouteRequest represents the request to assemble a new route
type CreateRouteRequest struct {
	Name           string      `json:"name" binding:"required"`
	Bus            string      `json:"bus" binding:"required"`
	Conductor      *string     `json:"conductor,omitempty"`
	Stands         []StopInput `json:"stands" binding:"required"`
	Status         *string     `json:"status,omitempty"`
	IsSpecialRoute *bool       `json:"isSpecialRoute,omitempty"`
	FestivalName   *string     `json:"festivalName,omitempty"`
	TotalFare      *FareInput  `json:"totalFare,omitempty"`
	ValidFrom      *string     `json:"validFrom,omitempty"` // Format: YYYY-MM-DD
	ValidTo        *string     `json:"validTo,omitempty"`   // Format: YYYY-MM-DD
}

// UpdateRouteRequest represents a partial route update. Supplying Stands
// replaces the whole stop sequence and re-runs leg aggregation.
type UpdateRouteRequest struct {
	Name           *string      `json:"name,omitempty"`
	Bus            *string      `json:"bus,omitempty"`
	Conductor      *string      `json:"conductor,omitempty"`
	Stands         *[]StopInput `json:"stands,omitempty"`
	Status         *string      `json:"status,omitempty"`
	IsSpecialRoute *bool        `json:"isSpecialRoute,omitempty"`
	FestivalName   *string      `json:"festivalName,omitempty"`
	TotalFare      *FareInput   `json:"totalFare,omitempty"`
	ValidFrom      *string      `json:"validFrom,omitempty"`
	ValidTo        *string      `json:"validTo,omitempty"`
}

// Validate validates the CreateRouteRequest
func (req *CreateRouteRequest) Validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if len(req.Stands) == 0 {
		return errors.New("at least one stand is required")
	}
	if err := validateStops(req.Stands); err != nil {
		return err
	}
	if req.Status != nil {
		if err := validateRouteStatus(*req.Status); err != nil {
			return err
		}
	}
	if err := validateFareInput(req.TotalFare); err != nil {
		return err
	}
	return validateValidityWindow(req.ValidFrom, req.ValidTo)
}

// Validate validates the UpdateRouteRequest
func (req *UpdateRouteRequest) Validate() error {
	if req.Name != nil && *req.Name == "" {
		return errors.New("name cannot be empty")
	}
	if req.Stands != nil {
		if len(*req.Stands) == 0 {
			return errors.New("at least one stand is required")
		}
		if err := validateStops(*req.Stands); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if err := validateRouteStatus(*req.Status); err != nil {
			return err
		}
	}
	if err := validateFareInput(req.TotalFare); err != nil {
		return err
	}
	return validateValidityWindow(req.ValidFrom, req.ValidTo)
}

func validateStops(stops []StopInput) error {
	for i, stop := range stops {
		if stop.Stand == "" {
			return fmt.Errorf("stand id is required at position %d", i+1)
		}
		if stop.DistanceFromPrev != nil && *stop.DistanceFromPrev < 0 {
			return fmt.Errorf("distanceFromPrev cannot be negative at position %d", i+1)
		}
		if err := validateFareInput(stop.Fare); err != nil {
			return fmt.Errorf("invalid fare at position %d: %w", i+1, err)
		}
	}
	return nil
}

func validateFareInput(fare *FareInput) error {
	if fare == nil {
		return nil
	}
	if fare.Sleeper != nil && *fare.Sleeper < 0 {
		return errors.New("sleeper fare cannot be negative")
	}
	if fare.Seating != nil && *fare.Seating < 0 {
		return errors.New("seating fare cannot be negative")
	}
	return nil
}

func validateRouteStatus(status string) error {
	s := RouteStatus(status)
	if s != RouteStatusActive && s != RouteStatusInactive {
		return errors.New("invalid status: must be Active or Inactive")
	}
	return nil
}

func validateValidityWindow(from, to *string) error {
	var fromDate, toDate time.Time
	var err error
	if from != nil {
		fromDate, err = time.Parse("2006-01-02", *from)
		if err != nil {
			return errors.New("invalid validFrom date, expected YYYY-MM-DD")
		}
	}
	if to != nil {
		toDate, err = time.Parse("2006-01-02", *to)
		if err != nil {
			return errors.New("invalid validTo date, expected YYYY-MM-DD")
		}
	}
	if from != nil && to != nil && toDate.Before(fromDate) {
		return errors.New("validTo must be on or after validFrom")
	}
	return nil
}
