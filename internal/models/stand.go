package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stand represents a bus stand. The short code identifies the stand in
// derived route codes.
type Stand struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	Code      string    `json:"code" db:"code"`
	District  string    `json:"district" db:"district"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateStandRequest represents the request to register a new bus stand
type CreateStandRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	Code     string `json:"code" binding:"required"`
	District string `json:"district" binding:"required"`
}

// UpdateStandRequest represents the request to update a bus stand
type UpdateStandRequest struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
	Code     *string `json:"code,omitempty"`
	District *string `json:"district,omitempty"`
}

// Validate validates the CreateStandRequest
func (req *CreateStandRequest) Validate() error {
	if req.Name == "" || req.Location == "" || req.Code == "" || req.District == "" {
		return errors.New("name, location, code and district are required")
	}
	return nil
}

// Validate validates the UpdateStandRequest
func (req *UpdateStandRequest) Validate() error {
	if req.Name != nil && *req.Name == "" {
		return errors.New("name cannot be empty")
	}
	if req.Location != nil && *req.Location == "" {
		return errors.New("location cannot be empty")
	}
	if req.Code != nil && *req.Code == "" {
		return errors.New("code cannot be empty")
	}
	if req.District != nil && *req.District == "" {
		return errors.New("district cannot be empty")
	}
	return nil
}
