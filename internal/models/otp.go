package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetOTP represents one password reset code. Only the bcrypt hash
// of the code is stored; the plaintext exists for the lifetime of the send
// request. A verified record authorizes exactly one password reset and is
// deleted when consumed.
type PasswordResetOTP struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	OTPHash     string     `json:"-" db:"otp_hash"`
	ExpiresAt   time.Time  `json:"expiresAt" db:"expires_at"`
	Verified    bool       `json:"verified" db:"verified"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty" db:"verified_at"`
	Attempts    int        `json:"attempts" db:"attempts"`
	MaxAttempts int        `json:"maxAttempts" db:"max_attempts"`
	RequestIP   *string    `json:"-" db:"request_ip"`
	UserAgent   *string    `json:"-" db:"user_agent"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
