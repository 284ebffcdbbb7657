package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

// ConductorRepository handles database operations for conductors
type ConductorRepository struct {
	db DB
}

// NewConductorRepository creates a new ConductorRepository
func NewConductorRepository(db DB) *ConductorRepository {
	return &ConductorRepository{db: db}
}

// Create registers a new conductor
func (r *ConductorRepository) Create(conductor *models.Conductor) error {
	query := `
		INSERT INTO conductors (
			id, employee_id, name, address, phone, joining_date, total_trips, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		conductor.ID, conductor.EmployeeID, conductor.Name, conductor.Address,
		conductor.Phone, conductor.JoiningDate, conductor.TotalTrips, conductor.Status,
	).Scan(&conductor.CreatedAt, &conductor.UpdatedAt)

	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// GetByID retrieves a conductor by ID
func (r *ConductorRepository) GetByID(conductorID uuid.UUID) (*models.Conductor, error) {
	query := `
		SELECT id, employee_id, name, address, phone, joining_date, total_trips,
			status, created_at, updated_at
		FROM conductors
		WHERE id = $1
	`

	conductor := &models.Conductor{}
	err := r.db.QueryRow(query, conductorID).Scan(
		&conductor.ID, &conductor.EmployeeID, &conductor.Name, &conductor.Address,
		&conductor.Phone, &conductor.JoiningDate, &conductor.TotalTrips,
		&conductor.Status, &conductor.CreatedAt, &conductor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return conductor, nil
}

// GetAll retrieves every conductor, newest first
func (r *ConductorRepository) GetAll() ([]models.Conductor, error) {
	query := `
		SELECT id, employee_id, name, address, phone, joining_date, total_trips,
			status, created_at, updated_at
		FROM conductors
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conductors := []models.Conductor{}
	for rows.Next() {
		var conductor models.Conductor
		err := rows.Scan(
			&conductor.ID, &conductor.EmployeeID, &conductor.Name, &conductor.Address,
			&conductor.Phone, &conductor.JoiningDate, &conductor.TotalTrips,
			&conductor.Status, &conductor.CreatedAt, &conductor.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		conductors = append(conductors, conductor)
	}

	return conductors, rows.Err()
}

// Update applies a partial update to a conductor
func (r *ConductorRepository) Update(conductorID uuid.UUID, req *models.UpdateConductorRequest) error {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	addUpdate := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.Name != nil {
		addUpdate("name", strings.TrimSpace(*req.Name))
	}
	if req.Address != nil {
		addUpdate("address", strings.TrimSpace(*req.Address))
	}
	if req.Phone != nil {
		phone, err := models.NormalizePhone(*req.Phone)
		if err != nil {
			return err
		}
		addUpdate("phone", phone)
	}
	if req.JoiningDate != nil {
		joiningDate, err := time.Parse("2006-01-02", *req.JoiningDate)
		if err != nil {
			return fmt.Errorf("invalid joining date format")
		}
		addUpdate("joining_date", joiningDate)
	}
	if req.TotalTrips != nil {
		addUpdate("total_trips", *req.TotalTrips)
	}
	if req.Status != nil {
		addUpdate("status", *req.Status)
	}

	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, conductorID)

	query := fmt.Sprintf(`UPDATE conductors SET %s WHERE id = $%d`, strings.Join(updates, ", "), argCount)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// Delete removes a conductor
func (r *ConductorRepository) Delete(conductorID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM conductors WHERE id = $1`, conductorID)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}
