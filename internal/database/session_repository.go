package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

// SessionRepository handles user session database operations
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records a new login session
func (r *SessionRepository) Create(session *models.UserSession) error {
	query := `
		INSERT INTO user_sessions (
			id, user_id, ip_address, device_type, os, browser, user_agent,
			is_active, last_activity_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		session.ID, session.UserID, nullStringPtr(session.IPAddress),
		session.DeviceType, session.OS, session.Browser,
		nullStringPtr(session.UserAgent), session.IsActive, session.LastActivityAt,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
}

// GetActiveByUser retrieves the active sessions for a user, newest first
func (r *SessionRepository) GetActiveByUser(userID uuid.UUID) ([]models.UserSession, error) {
	query := `
		SELECT id, user_id, ip_address, device_type, os, browser, user_agent,
			is_active, last_activity_at, created_at, updated_at
		FROM user_sessions
		WHERE user_id = $1 AND is_active = true
		ORDER BY last_activity_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.UserSession{}
	for rows.Next() {
		var session models.UserSession
		err := rows.Scan(
			&session.ID, &session.UserID, &session.IPAddress, &session.DeviceType,
			&session.OS, &session.Browser, &session.UserAgent, &session.IsActive,
			&session.LastActivityAt, &session.CreatedAt, &session.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// TouchActivityByUser refreshes the last activity timestamp on a user's
// active sessions. Called when a refresh token is exchanged.
func (r *SessionRepository) TouchActivityByUser(userID uuid.UUID) error {
	_, err := r.db.Exec(
		`UPDATE user_sessions SET last_activity_at = $1, updated_at = $1 WHERE user_id = $2 AND is_active = true`,
		time.Now(), userID,
	)
	return err
}

// DeactivateByUser marks every active session for a user as logged out
func (r *SessionRepository) DeactivateByUser(userID uuid.UUID) error {
	_, err := r.db.Exec(
		`UPDATE user_sessions SET is_active = false, updated_at = $1 WHERE user_id = $2 AND is_active = true`,
		time.Now(), userID,
	)
	return err
}
