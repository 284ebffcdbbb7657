package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches
const uniqueViolation = "23505"

// ErrDuplicateCode is returned when an insert or update collides with an
// existing unique code (bus code, stand code, route code)
var ErrDuplicateCode = fmt.Errorf("code already exists")

// isUniqueViolation reports whether err is a unique constraint breach
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// BusRepository handles database operations for buses
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

// Create registers a new bus
func (r *BusRepository) Create(bus *models.Bus) error {
	query := `
		INSERT INTO buses (
			id, name, code, type, total_seats, sleeper_seats, seating_seats,
			is_airconditioned, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		bus.ID, bus.Name, bus.Code, bus.Type, bus.TotalSeats,
		bus.SleeperSeats, bus.SeatingSeats, bus.IsAirconditioned, bus.Status,
	).Scan(&bus.CreatedAt, &bus.UpdatedAt)

	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(busID uuid.UUID) (*models.Bus, error) {
	query := `
		SELECT id, name, code, type, total_seats, sleeper_seats, seating_seats,
			is_airconditioned, status, created_at, updated_at
		FROM buses
		WHERE id = $1
	`

	bus := &models.Bus{}
	err := r.db.QueryRow(query, busID).Scan(
		&bus.ID, &bus.Name, &bus.Code, &bus.Type, &bus.TotalSeats,
		&bus.SleeperSeats, &bus.SeatingSeats, &bus.IsAirconditioned, &bus.Status,
		&bus.CreatedAt, &bus.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return bus, nil
}

// GetAll retrieves every bus, newest first
func (r *BusRepository) GetAll() ([]models.Bus, error) {
	query := `
		SELECT id, name, code, type, total_seats, sleeper_seats, seating_seats,
			is_airconditioned, status, created_at, updated_at
		FROM buses
		ORDER BY created_at DESC
	`
	return r.queryBuses(query)
}

// GetByStatus retrieves all buses with the given status
func (r *BusRepository) GetByStatus(status models.BusStatus) ([]models.Bus, error) {
	query := `
		SELECT id, name, code, type, total_seats, sleeper_seats, seating_seats,
			is_airconditioned, status, created_at, updated_at
		FROM buses
		WHERE status = $1
		ORDER BY created_at DESC
	`
	return r.queryBuses(query, status)
}

func (r *BusRepository) queryBuses(query string, args ...interface{}) ([]models.Bus, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buses := []models.Bus{}
	for rows.Next() {
		var bus models.Bus
		err := rows.Scan(
			&bus.ID, &bus.Name, &bus.Code, &bus.Type, &bus.TotalSeats,
			&bus.SleeperSeats, &bus.SeatingSeats, &bus.IsAirconditioned, &bus.Status,
			&bus.CreatedAt, &bus.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		buses = append(buses, bus)
	}

	return buses, rows.Err()
}

// Update applies a partial update to a bus
func (r *BusRepository) Update(busID uuid.UUID, req *models.UpdateBusRequest) error {
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
	if req.Code != nil {
		addUpdate("code", *req.Code)
	}
	if req.Type != nil {
		addUpdate("type", *req.Type)
	}
	if req.TotalSeats != nil {
		addUpdate("total_seats", *req.TotalSeats)
	}
	if req.SleeperSeats != nil {
		addUpdate("sleeper_seats", *req.SleeperSeats)
	}
	if req.SeatingSeats != nil {
		addUpdate("seating_seats", *req.SeatingSeats)
	}
	if req.IsAirconditioned != nil {
		addUpdate("is_airconditioned", *req.IsAirconditioned)
	}
	if req.Status != nil {
		addUpdate("status", *req.Status)
	}

	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, busID)

	query := fmt.Sprintf(`UPDATE buses SET %s WHERE id = $%d`, strings.Join(updates, ", "), argCount)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return requireRowAffected(result)
}

// Delete removes a bus
func (r *BusRepository) Delete(busID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM buses WHERE id = $1`, busID)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// NewBus builds a Bus from a create request with defaults applied
func NewBus(req *models.CreateBusRequest) *models.Bus {
	bus := &models.Bus{
		ID:               uuid.New(),
		Name:             req.Name,
		Code:             req.Code,
		Type:             req.Type,
		TotalSeats:       req.TotalSeats,
		IsAirconditioned: true,
		Status:           models.BusStatusActive,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if req.SleeperSeats != nil {
		bus.SleeperSeats = *req.SleeperSeats
	}
	if req.SeatingSeats != nil {
		bus.SeatingSeats = *req.SeatingSeats
	}
	if req.IsAirconditioned != nil {
		bus.IsAirconditioned = *req.IsAirconditioned
	}
	if req.Status != nil {
		bus.Status = models.BusStatus(*req.Status)
	}
	return bus
}
