package services

import (
	"fmt"
	"time"

	"github.com/gsrtc/transit-ops-backend/internal/config"
	"github.com/gsrtc/transit-ops-backend/internal/database"
)

// RateLimitService throttles password reset OTP requests. Counts come from
// the OTP records themselves, so issuing a code and recording the request
// are one write.
type RateLimitService struct {
	otpRepo *database.OTPRepository

	maxEmailRequests int
	emailWindow      time.Duration
	maxIPRequests    int
	ipWindow         time.Duration
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(otpRepo *database.OTPRepository, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		otpRepo:          otpRepo,
		maxEmailRequests: cfg.MaxEmailRequests,
		emailWindow:      time.Duration(cfg.EmailWindowMinutes) * time.Minute,
		maxIPRequests:    cfg.MaxIPRequests,
		ipWindow:         time.Duration(cfg.IPWindowMinutes) * time.Minute,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckOTPRateLimit checks whether an email address or requesting IP has
// exceeded its OTP request budget
func (s *RateLimitService) CheckOTPRateLimit(email, ip string) error {
	if email != "" {
		count, lastRequest, err := s.otpRepo.CountSince("email", email, s.emailWindow)
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}

		if count >= s.maxEmailRequests {
			retryAfter := lastRequest.Add(s.emailWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many OTP requests for this email. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "email",
			}
		}
	}

	if ip != "" {
		count, lastRequest, err := s.otpRepo.CountSince("request_ip", ip, s.ipWindow)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}

		if count >= s.maxIPRequests {
			retryAfter := lastRequest.Add(s.ipWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many OTP requests from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// IsRateLimited reports whether an identifier is currently over budget and
// when it may retry
func (s *RateLimitService) IsRateLimited(identifier, identifierType string) (bool, time.Time, error) {
	column := "email"
	window := s.emailWindow
	maxRequests := s.maxEmailRequests
	if identifierType == "ip" {
		column = "request_ip"
		window = s.ipWindow
		maxRequests = s.maxIPRequests
	}

	count, lastRequest, err := s.otpRepo.CountSince(column, identifier, window)
	if err != nil {
		return false, time.Time{}, err
	}

	if count >= maxRequests {
		return true, lastRequest.Add(window), nil
	}

	return false, time.Time{}, nil
}
