package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConductorStatus represents the employment status of a conductor
type ConductorStatus string

const (
	ConductorStatusActive    ConductorStatus = "active"
	ConductorStatusInactive  ConductorStatus = "inactive"
	ConductorStatusSuspended ConductorStatus = "suspended"
)

var conductorPhonePattern = regexp.MustCompile(`^\+91[0-9]{10}$`)

// Conductor represents a conductor employed by the corporation
type Conductor struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EmployeeID  string          `json:"employeeId" db:"employee_id"`
	Name        string          `json:"name" db:"name"`
	Address     string          `json:"address" db:"address"`
	Phone       string          `json:"phone" db:"phone"`
	JoiningDate time.Time       `json:"joiningDate" db:"joining_date"`
	TotalTrips  int             `json:"totalTrips" db:"total_trips"`
	Status      ConductorStatus `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateConductorRequest represents the request to register a new conductor.
// The employee id is system-generated, never caller-supplied.
type CreateConductorRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	JoiningDate string `json:"joiningDate" binding:"required"` // Format: YYYY-MM-DD
	Status      string `json:"status" binding:"required"`
}

// UpdateConductorRequest represents the request to update a conductor
type UpdateConductorRequest struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	JoiningDate *string `json:"joiningDate,omitempty"` // Format: YYYY-MM-DD
	TotalTrips  *int    `json:"totalTrips,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// NormalizePhone strips whitespace and prefixes the +91 country code when
// absent. Returns an error if the result is not a valid Indian mobile number.
func NormalizePhone(phone string) (string, error) {
	normalized := strings.Join(strings.Fields(phone), "")
	if !strings.HasPrefix(normalized, "+91") {
		normalized = "+91" + normalized
	}
	if !conductorPhonePattern.MatchString(normalized) {
		return "", errors.New("invalid phone number, must be in +91XXXXXXXXXX format")
	}
	return normalized, nil
}

// Validate validates the CreateConductorRequest
func (req *CreateConductorRequest) Validate() error {
	if len(strings.TrimSpace(req.Name)) < 2 {
		return errors.New("invalid name, must be at least 2 characters")
	}
	if len(strings.TrimSpace(req.Address)) < 10 {
		return errors.New("invalid address, must be at least 10 characters")
	}
	if _, err := NormalizePhone(req.Phone); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", req.JoiningDate); err != nil {
		return errors.New("invalid joining date, expected YYYY-MM-DD")
	}
	return validateConductorStatus(req.Status)
}

// Validate validates the UpdateConductorRequest
func (req *UpdateConductorRequest) Validate() error {
	if req.Name != nil && len(strings.TrimSpace(*req.Name)) < 2 {
		return errors.New("invalid name, must be at least 2 characters")
	}
	if req.Address != nil && len(strings.TrimSpace(*req.Address)) < 10 {
		return errors.New("invalid address, must be at least 10 characters")
	}
	if req.Phone != nil {
		if _, err := NormalizePhone(*req.Phone); err != nil {
			return err
		}
	}
	if req.JoiningDate != nil {
		if _, err := time.Parse("2006-01-02", *req.JoiningDate); err != nil {
			return errors.New("invalid joining date, expected YYYY-MM-DD")
		}
	}
	if req.TotalTrips != nil && *req.TotalTrips < 0 {
		return errors.New("totalTrips cannot be negative")
	}
	if req.Status != nil {
		return validateConductorStatus(*req.Status)
	}
	return nil
}

func validateConductorStatus(status string) error {
	s := ConductorStatus(status)
	if s != ConductorStatusActive && s != ConductorStatusInactive && s != ConductorStatusSuspended {
		return errors.New("invalid status: must be active, inactive or suspended")
	}
	return nil
}
