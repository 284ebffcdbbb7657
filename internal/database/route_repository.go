package database

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

// RouteRepository handles database operations for assembled routes. The
// stop sequence and fare pairs persist as JSONB documents inside the route
// row; the unique index on code is the only cross-request coordination
// point for concurrent assembly.
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `
	id, name, code, bus_id, conductor_id, stands, status, is_special_route,
	festival_name, distance_km, total_fare, valid_from, valid_to,
	created_at, updated_at
`

// Insert persists a newly assembled route. A collision on the derived code
// surfaces as ErrDuplicateCode; the write is atomic, no partial route is
// ever stored.
func (r *RouteRepository) Insert(route *models.Route) error {
	query := `
		INSERT INTO routes (
			id, name, code, bus_id, conductor_id, stands, status,
			is_special_route, festival_name, distance_km, total_fare,
			valid_from, valid_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		route.ID, route.Name, route.Code, route.BusID, route.ConductorID,
		route.Stops, route.Status, route.IsSpecialRoute, route.FestivalName,
		route.DistanceKm, route.TotalFare, route.ValidFrom, route.ValidTo,
	).Scan(&route.CreatedAt, &route.UpdatedAt)

	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// GetByID retrieves a route by ID
func (r *RouteRepository) GetByID(routeID uuid.UUID) (*models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	route := &models.Route{}
	err := r.scanRoute(r.db.QueryRow(query, routeID), route)
	if err != nil {
		return nil, err
	}
	return route, nil
}

// GetAll retrieves every route, newest first
func (r *RouteRepository) GetAll() ([]models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY created_at DESC`
	return r.queryRoutes(query)
}

// GetByStatus retrieves all routes with the given status
func (r *RouteRepository) GetByStatus(status models.RouteStatus) ([]models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE status = $1 ORDER BY created_at DESC`
	return r.queryRoutes(query, status)
}

// Update overwrites a route with its re-assembled document
func (r *RouteRepository) Update(route *models.Route) error {
	query := `
		UPDATE routes SET
			name = $2, code = $3, bus_id = $4, conductor_id = $5, stands = $6,
			status = $7, is_special_route = $8, festival_name = $9,
			distance_km = $10, total_fare = $11, valid_from = $12,
			valid_to = $13, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(
		query,
		route.ID, route.Name, route.Code, route.BusID, route.ConductorID,
		route.Stops, route.Status, route.IsSpecialRoute, route.FestivalName,
		route.DistanceKm, route.TotalFare, route.ValidFrom, route.ValidTo,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return requireRowAffected(result)
}

// Delete removes a route
func (r *RouteRepository) Delete(routeID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM routes WHERE id = $1`, routeID)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *RouteRepository) scanRoute(row rowScanner, route *models.Route) error {
	var conductorID sql.NullString
	var festivalName sql.NullString
	var validFrom, validTo sql.NullTime

	err := row.Scan(
		&route.ID, &route.Name, &route.Code, &route.BusID, &conductorID,
		&route.Stops, &route.Status, &route.IsSpecialRoute, &festivalName,
		&route.DistanceKm, &route.TotalFare, &validFrom, &validTo,
		&route.CreatedAt, &route.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if conductorID.Valid {
		id, err := uuid.Parse(conductorID.String)
		if err != nil {
			return err
		}
		route.ConductorID = &id
	}
	route.FestivalName = ptrFromNullString(festivalName)
	route.ValidFrom = ptrFromNullTime(validFrom)
	route.ValidTo = ptrFromNullTime(validTo)

	return nil
}

func (r *RouteRepository) queryRoutes(query string, args ...interface{}) ([]models.Route, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := []models.Route{}
	for rows.Next() {
		var route models.Route
		if err := r.scanRoute(rows, &route); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	return routes, rows.Err()
}
