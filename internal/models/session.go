package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSession records one login: where it came from and what device made it.
// Sessions are deactivated on logout; they exist for audit, not authorization
// (the JWT alone authorizes requests).
type UserSession struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"userId" db:"user_id"`
	IPAddress      *string   `json:"ipAddress,omitempty" db:"ip_address"`
	DeviceType     string    `json:"deviceType" db:"device_type"`
	OS             string    `json:"os" db:"os"`
	Browser        string    `json:"browser" db:"browser"`
	UserAgent      *string   `json:"-" db:"user_agent"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	LastActivityAt time.Time `json:"lastActivityAt" db:"last_activity_at"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
