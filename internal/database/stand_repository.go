package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
	"github.com/lib/pq"
)

// StandRepository handles database operations for bus stands
type StandRepository struct {
	db DB
}

// NewStandRepository creates a new StandRepository
func NewStandRepository(db DB) *StandRepository {
	return &StandRepository{db: db}
}

// Create registers a new bus stand
func (r *StandRepository) Create(stand *models.Stand) error {
	query := `
		INSERT INTO bus_stands (id, name, location, code, district)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		stand.ID, stand.Name, stand.Location, stand.Code, stand.District,
	).Scan(&stand.CreatedAt, &stand.UpdatedAt)

	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// GetByID retrieves a bus stand by ID
func (r *StandRepository) GetByID(standID uuid.UUID) (*models.Stand, error) {
	query := `
		SELECT id, name, location, code, district, created_at, updated_at
		FROM bus_stands
		WHERE id = $1
	`

	stand := &models.Stand{}
	err := r.db.QueryRow(query, standID).Scan(
		&stand.ID, &stand.Name, &stand.Location, &stand.Code, &stand.District,
		&stand.CreatedAt, &stand.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return stand, nil
}

// GetByCode retrieves a bus stand by its short code. Returns nil without an
// error when no stand has the code.
func (r *StandRepository) GetByCode(code string) (*models.Stand, error) {
	query := `
		SELECT id, name, location, code, district, created_at, updated_at
		FROM bus_stands
		WHERE code = $1
	`

	stand := &models.Stand{}
	err := r.db.QueryRow(query, code).Scan(
		&stand.ID, &stand.Name, &stand.Location, &stand.Code, &stand.District,
		&stand.CreatedAt, &stand.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return stand, nil
}

// GetByIDs retrieves the stands matching the given ids in one round trip.
// The result may contain fewer stands than requested; callers decide whether
// a partial match is an error.
func (r *StandRepository) GetByIDs(standIDs []uuid.UUID) ([]models.Stand, error) {
	if len(standIDs) == 0 {
		return []models.Stand{}, nil
	}

	ids := make([]string, len(standIDs))
	for i, id := range standIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, name, location, code, district, created_at, updated_at
		FROM bus_stands
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stands := []models.Stand{}
	for rows.Next() {
		var stand models.Stand
		err := rows.Scan(
			&stand.ID, &stand.Name, &stand.Location, &stand.Code, &stand.District,
			&stand.CreatedAt, &stand.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stands = append(stands, stand)
	}

	return stands, rows.Err()
}

// GetAll retrieves every bus stand, newest first
func (r *StandRepository) GetAll() ([]models.Stand, error) {
	query := `
		SELECT id, name, location, code, district, created_at, updated_at
		FROM bus_stands
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stands := []models.Stand{}
	for rows.Next() {
		var stand models.Stand
		err := rows.Scan(
			&stand.ID, &stand.Name, &stand.Location, &stand.Code, &stand.District,
			&stand.CreatedAt, &stand.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stands = append(stands, stand)
	}

	return stands, rows.Err()
}

// Update applies a partial update to a bus stand
func (r *StandRepository) Update(standID uuid.UUID, req *models.UpdateStandRequest) error {
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
	if req.Location != nil {
		addUpdate("location", *req.Location)
	}
	if req.Code != nil {
		addUpdate("code", *req.Code)
	}
	if req.District != nil {
		addUpdate("district", *req.District)
	}

	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, standID)

	query := fmt.Sprintf(`UPDATE bus_stands SET %s WHERE id = $%d`, strings.Join(updates, ", "), argCount)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return requireRowAffected(result)
}

// Delete removes a bus stand
func (r *StandRepository) Delete(standID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM bus_stands WHERE id = $1`, standID)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}
