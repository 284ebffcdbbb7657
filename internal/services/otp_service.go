package services

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gsrtc/transit-ops-backend/internal/config"
	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

var (
	// ErrOTPExpired indicates the OTP has expired
	ErrOTPExpired = fmt.Errorf("OTP has expired")

	// ErrOTPInvalid indicates the OTP is incorrect
	ErrOTPInvalid = fmt.Errorf("invalid OTP code")

	// ErrMaxAttemptsExceeded indicates too many failed validation attempts
	ErrMaxAttemptsExceeded = fmt.Errorf("maximum OTP validation attempts exceeded")

	// ErrNoOTPFound indicates no OTP exists for the email address
	ErrNoOTPFound = fmt.Errorf("no OTP found for this email")

	// ErrOTPAlreadyUsed indicates the OTP has already been successfully validated
	ErrOTPAlreadyUsed = fmt.Errorf("OTP has already been used")

	// ErrOTPNotVerified indicates a password reset was attempted without a
	// prior successful OTP validation
	ErrOTPNotVerified = fmt.Errorf("OTP has not been verified")
)

// OTPService handles password reset OTP generation and validation. Codes are
// stored bcrypt-hashed; the plaintext exists only in the generation return
// value handed to the mailer.
type OTPService struct {
	otpRepo *database.OTPRepository
	cfg     config.OTPConfig
}

// NewOTPService creates a new OTP service
func NewOTPService(otpRepo *database.OTPRepository, cfg config.OTPConfig) *OTPService {
	return &OTPService{otpRepo: otpRepo, cfg: cfg}
}

// Generate issues a new OTP for the given email. Earlier records
// are kept so the rate limiter can count them; only the newest code is
// accepted by Validate. IP and User-Agent are stored for audit.
func (s *OTPService) Generate(email, requestIP, userAgent string) (string, error) {
	code, err := generateRandomOTP(s.cfg.Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash OTP: %w", err)
	}

	record := &models.PasswordResetOTP{
		ID:          uuid.New(),
		Email:       email,
		OTPHash:     string(hash),
		ExpiresAt:   time.Now().Add(time.Duration(s.cfg.ExpiryMinutes) * time.Minute),
		Attempts:    0,
		MaxAttempts: s.cfg.MaxAttempts,
	}
	if requestIP != "" {
		record.RequestIP = &requestIP
	}
	if userAgent != "" {
		record.UserAgent = &userAgent
	}

	if err := s.otpRepo.Create(record); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	return code, nil
}

// Validate checks a submitted code against the latest OTP for the email and
// marks it verified on success. Every submission consumes an attempt,
// successful or not.
func (s *OTPService) Validate(email, code string) error {
	record, err := s.otpRepo.GetLatestByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNoOTPFound
		}
		return fmt.Errorf("failed to get OTP record: %w", err)
	}

	if record.Verified {
		return ErrOTPAlreadyUsed
	}

	if time.Now().After(record.ExpiresAt) {
		return ErrOTPExpired
	}

	if record.Attempts >= record.MaxAttempts {
		return ErrMaxAttemptsExceeded
	}

	if err := s.otpRepo.IncrementAttempts(record.ID); err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(record.OTPHash), []byte(code)) != nil {
		return ErrOTPInvalid
	}

	return s.otpRepo.MarkVerified(record.ID)
}

// RequireVerified checks that a verified, unexpired OTP exists for the email
// without consuming it. The reset flow calls this before touching the
// password so a failed write leaves the verification intact for a retry.
func (s *OTPService) RequireVerified(email string) error {
	record, err := s.otpRepo.GetLatestByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNoOTPFound
		}
		return fmt.Errorf("failed to get OTP record: %w", err)
	}

	if !record.Verified {
		return ErrOTPNotVerified
	}

	if time.Now().After(record.ExpiresAt) {
		return ErrOTPExpired
	}

	return nil
}

// Consume completes the reset handshake: it requires a verified, unexpired
// OTP for the email and removes it so the verification cannot be replayed.
func (s *OTPService) Consume(email string) error {
	if err := s.RequireVerified(email); err != nil {
		return err
	}
	return s.otpRepo.DeleteByEmail(email)
}

// generateRandomOTP generates a cryptographically secure numeric code of the
// given length
func generateRandomOTP(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
