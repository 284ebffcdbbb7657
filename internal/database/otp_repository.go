package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

// OTPRepository handles password reset OTP database operations
type OTPRepository struct {
	db DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create stores a new password reset OTP record
func (r *OTPRepository) Create(otp *models.PasswordResetOTP) error {
	query := `
		INSERT INTO password_reset_otps (
			id, email, otp_hash, expires_at, attempts, max_attempts,
			request_ip, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return r.db.QueryRow(
		query,
		otp.ID, otp.Email, otp.OTPHash, otp.ExpiresAt, otp.Attempts,
		otp.MaxAttempts, nullStringPtr(otp.RequestIP), nullStringPtr(otp.UserAgent),
	).Scan(&otp.CreatedAt)
}

// GetLatestByEmail retrieves the newest OTP record for an email address
func (r *OTPRepository) GetLatestByEmail(email string) (*models.PasswordResetOTP, error) {
	query := `
		SELECT id, email, otp_hash, expires_at, verified, verified_at,
			attempts, max_attempts, request_ip, user_agent, created_at
		FROM password_reset_otps
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	otp := &models.PasswordResetOTP{}
	var verifiedAt sql.NullTime
	var requestIP, userAgent sql.NullString

	err := r.db.QueryRow(query, email).Scan(
		&otp.ID, &otp.Email, &otp.OTPHash, &otp.ExpiresAt, &otp.Verified,
		&verifiedAt, &otp.Attempts, &otp.MaxAttempts, &requestIP, &userAgent,
		&otp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	otp.VerifiedAt = ptrFromNullTime(verifiedAt)
	otp.RequestIP = ptrFromNullString(requestIP)
	otp.UserAgent = ptrFromNullString(userAgent)
	return otp, nil
}

// DeleteByEmail removes all OTP records for an email address. Consuming a
// verified code clears the whole history so it cannot be replayed.
func (r *OTPRepository) DeleteByEmail(email string) error {
	_, err := r.db.Exec(`DELETE FROM password_reset_otps WHERE email = $1`, email)
	return err
}

// IncrementAttempts bumps the failed validation counter on an OTP record
func (r *OTPRepository) IncrementAttempts(otpID uuid.UUID) error {
	result, err := r.db.Exec(
		`UPDATE password_reset_otps SET attempts = attempts + 1 WHERE id = $1`,
		otpID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// MarkVerified flags an OTP record as successfully verified
func (r *OTPRepository) MarkVerified(otpID uuid.UUID) error {
	result, err := r.db.Exec(
		`UPDATE password_reset_otps SET verified = true, verified_at = $1 WHERE id = $2`,
		time.Now(), otpID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// CountSince counts OTP requests for rate limiting, either by email or by
// requesting IP, within the window ending now. Also reports the most recent
// request time so callers can compute a retry-after.
func (r *OTPRepository) CountSince(column, value string, window time.Duration) (int, time.Time, error) {
	var query string
	switch column {
	case "email":
		query = `
			SELECT COUNT(*), COALESCE(MAX(created_at), 'epoch'::timestamptz)
			FROM password_reset_otps
			WHERE email = $1 AND created_at > $2
		`
	case "request_ip":
		query = `
			SELECT COUNT(*), COALESCE(MAX(created_at), 'epoch'::timestamptz)
			FROM password_reset_otps
			WHERE request_ip = $1 AND created_at > $2
		`
	default:
		return 0, time.Time{}, sql.ErrNoRows
	}

	var count int
	var lastRequest time.Time
	since := time.Now().Add(-window)

	err := r.db.QueryRow(query, value, since).Scan(&count, &lastRequest)
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, lastRequest, nil
}
