package models

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Password policy pieces. A single lookahead-style regexp is not
	// expressible in RE2, so each requirement is checked separately.
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[@$!%*?&]`)
)

// ErrWeakPassword is returned when a password fails the strength policy
var ErrWeakPassword = errors.New("password must be at least 8 characters long and include an uppercase letter, a lowercase letter, a number, and a special character")

// User represents an admin console account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CoverImage   *string   `json:"coverImage,omitempty" db:"cover_image"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	Role       *string `json:"role,omitempty"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a self-service profile update
type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// UpdateUserRequest represents an admin update of another account
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Role       *string `json:"role,omitempty"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// SendOTPRequest starts the password reset flow
type SendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyOTPRequest checks a password reset code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ValidateEmail checks basic email shape
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidatePasswordStrength enforces the account password policy
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 ||
		!hasLower.MatchString(password) ||
		!hasUpper.MatchString(password) ||
		!hasDigit.MatchString(password) ||
		!hasSpecial.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

// ValidateRole checks an account role value
func ValidateRole(role string) error {
	if role != RoleUser && role != RoleAdmin {
		return errors.New("invalid role: must be user or admin")
	}
	return nil
}

// Validate validates the RegisterRequest
func (req *RegisterRequest) Validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := ValidatePasswordStrength(req.Password); err != nil {
		return err
	}
	if req.Role != nil {
		return ValidateRole(*req.Role)
	}
	return nil
}

// Validate validates the UpdateUserRequest
func (req *UpdateUserRequest) Validate() error {
	if req.Name != nil && *req.Name == "" {
		return errors.New("name cannot be empty")
	}
	if req.Email != nil {
		if err := ValidateEmail(*req.Email); err != nil {
			return err
		}
	}
	if req.Role != nil {
		return ValidateRole(*req.Role)
	}
	return nil
}

// Validate validates the UpdateProfileRequest
func (req *UpdateProfileRequest) Validate() error {
	if req.Name != nil && *req.Name == "" {
		return errors.New("name cannot be empty")
	}
	if req.Email != nil {
		return ValidateEmail(*req.Email)
	}
	return nil
}

// Validate validates the ResetPasswordRequest
func (req *ResetPasswordRequest) Validate() error {
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return errors.New("passwords do not match")
	}
	return ValidatePasswordStrength(req.Password)
}
