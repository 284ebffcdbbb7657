package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

// ErrDuplicateEmail is returned when an email is already registered
var ErrDuplicateEmail = fmt.Errorf("email already exists")

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create registers a new user account
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, cover_image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		nullStringPtr(user.CoverImage),
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, cover_image, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRow(query, userID))
}

// GetByEmail retrieves a user by email. Returns nil without an error when no
// account exists for the address.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, cover_image, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := r.scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetAll retrieves every user, newest first
func (r *UserRepository) GetAll() ([]models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, cover_image, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var coverImage sql.NullString
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
			&coverImage, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		user.CoverImage = ptrFromNullString(coverImage)
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update applies a partial update to a user account
func (r *UserRepository) Update(userID uuid.UUID, req *models.UpdateUserRequest) error {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	addUpdate := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.Name != nil {
		addUpdate("name", *req.Name)
	}
	if req.Email != nil {
		addUpdate("email", *req.Email)
	}
	if req.Role != nil {
		addUpdate("role", *req.Role)
	}
	if req.CoverImage != nil {
		addUpdate("cover_image", *req.CoverImage)
	}

	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(updates, ", "), argCount)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return requireRowAffected(result)
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID uuid.UUID, passwordHash string) error {
	result, err := r.db.Exec(
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// Delete removes a user account
func (r *UserRepository) Delete(userID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var coverImage sql.NullString

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&coverImage, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.CoverImage = ptrFromNullString(coverImage)
	return user, nil
}
