package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BusStatus represents the operational status of a bus
type BusStatus string

const (
	BusStatusActive   BusStatus = "Active"
	BusStatusInactive BusStatus = "Inactive"
)

// Bus represents a bus in the corporation fleet. Type is a free-text class
// (Sleeper, Seater, Volvo AC, ...); presence of sleeper seats determines
// whether sleeper fares apply to routes the bus runs.
type Bus struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Code             string    `json:"code" db:"code"`
	Type             string    `json:"type" db:"type"`
	TotalSeats       int       `json:"totalSeats" db:"total_seats"`
	SleeperSeats     int       `json:"sleeperSeats" db:"sleeper_seats"`
	SeatingSeats     int       `json:"seatingSeats" db:"seating_seats"`
	IsAirconditioned bool      `json:"isAirconditioned" db:"is_airconditioned"`
	Status           BusStatus `json:"status" db:"status"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// HasSleeperBerths reports whether sleeper fare fields are relevant for this bus
func (b *Bus) HasSleeperBerths() bool {
	return b.SleeperSeats > 0
}

// CreateBusRequest represents the request to register a new bus
type CreateBusRequest struct {
	Name             string  `json:"name" binding:"required"`
	Code             string  `json:"code" binding:"required"`
	Type             string  `json:"type" binding:"required"`
	TotalSeats       int     `json:"totalSeats" binding:"required,gt=0"`
	SleeperSeats     *int    `json:"sleeperSeats,omitempty"`
	SeatingSeats     *int    `json:"seatingSeats,omitempty"`
	IsAirconditioned *bool   `json:"isAirconditioned,omitempty"`
	Status           *string `json:"status,omitempty"`
}

// UpdateBusRequest represents the request to update bus information
type UpdateBusRequest struct {
	Name             *string `json:"name,omitempty"`
	Code             *string `json:"code,omitempty"`
	Type             *string `json:"type,omitempty"`
	TotalSeats       *int    `json:"totalSeats,omitempty"`
	SleeperSeats     *int    `json:"sleeperSeats,omitempty"`
	SeatingSeats     *int    `json:"seatingSeats,omitempty"`
	IsAirconditioned *bool   `json:"isAirconditioned,omitempty"`
	Status           *string `json:"status,omitempty"`
}

// Validate validates the CreateBusRequest
func (req *CreateBusRequest) Validate() error {
	if req.TotalSeats <= 0 {
		return errors.New("totalSeats must be greater than 0")
	}
	if req.SleeperSeats != nil && *req.SleeperSeats < 0 {
		return errors.New("sleeperSeats cannot be negative")
	}
	if req.SeatingSeats != nil && *req.SeatingSeats < 0 {
		return errors.New("seatingSeats cannot be negative")
	}
	if req.Status != nil {
		if err := validateBusStatus(*req.Status); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the UpdateBusRequest
func (req *UpdateBusRequest) Validate() error {
	if req.Name != nil && *req.Name == "" {
		return errors.New("name cannot be empty")
	}
	if req.Code != nil && *req.Code == "" {
		return errors.New("code cannot be empty")
	}
	if req.TotalSeats != nil && *req.TotalSeats <= 0 {
		return errors.New("totalSeats must be greater than 0")
	}
	if req.SleeperSeats != nil && *req.SleeperSeats < 0 {
		return errors.New("sleeperSeats cannot be negative")
	}
	if req.SeatingSeats != nil && *req.SeatingSeats < 0 {
		return errors.New("seatingSeats cannot be negative")
	}
	if req.Status != nil {
		if err := validateBusStatus(*req.Status); err != nil {
			return err
		}
	}
	return nil
}

func validateBusStatus(status string) error {
	s := BusStatus(status)
	if s != BusStatusActive && s != BusStatusInactive {
		return errors.New("invalid status: must be Active or Inactive")
	}
	return nil
}
