package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

var busColumns = []string{
	"id", "name", "code", "type", "total_seats", "sleeper_seats",
	"seating_seats", "is_airconditioned", "status", "created_at", "updated_at",
}

var standColumns = []string{
	"id", "name", "location", "code", "district", "created_at", "updated_at",
}

var routeColumns = []string{
	"id", "name", "code", "bus_id", "conductor_id", "stands", "status",
	"is_special_route", "festival_name", "distance_km", "total_fare",
	"valid_from", "valid_to", "created_at", "updated_at",
}

func newRouteService(t *testing.T, recompute bool) (*RouteService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mockDB := &mockDatabase{db: db}
	service := NewRouteService(
		database.NewRouteRepository(mockDB),
		database.NewBusRepository(mockDB),
		database.NewStandRepository(mockDB),
		recompute,
	)
	return service, mock, func() { db.Close() }
}

func sleeperBusRow(busID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows(busColumns).AddRow(
		busID.String(), "Night Rider", "NR01", "Sleeper", 40, 40, 0,
		true, "Active", time.Now(), time.Now(),
	)
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }

func TestRouteService_Create(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	busID := uuid.New()
	standA := uuid.New()
	standB := uuid.New()
	standC := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM buses").
		WithArgs(busID).
		WillReturnRows(sleeperBusRow(busID))

	mock.ExpectQuery("SELECT (.+) FROM bus_stands").
		WillReturnRows(sqlmock.NewRows(standColumns).
			AddRow(standA.String(), "Hyderabad Central", "Hyderabad", "ABC", "Hyderabad", time.Now(), time.Now()).
			AddRow(standB.String(), "Kurnool Bypass", "Kurnool", "KNL", "Kurnool", time.Now(), time.Now()).
			AddRow(standC.String(), "Visakhapatnam RTC", "Visakhapatnam", "XYZ", "Visakhapatnam", time.Now(), time.Now()))

	mock.ExpectQuery("INSERT INTO routes").
		WithArgs(
			sqlmock.AnyArg(), "Hyderabad Express", "0830ABCXYZSLE40", busID,
			nil, sqlmock.AnyArg(), "Active", false, nil, 19.75,
			sqlmock.AnyArg(), nil, nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	req := &models.CreateRouteRequest{
		Name: "Hyderabad Express",
		Bus:  busID.String(),
		Stands: []models.StopInput{
			{
				Stand:            standA.String(),
				DepartureTime:    strPtr("08:30"),
				DistanceFromPrev: float64Ptr(99), // origin distance is discarded
				Fare:             &models.FareInput{Sleeper: float64Ptr(0)},
			},
			{
				Stand:            standB.String(),
				ArrivalTime:      strPtr("11:00"),
				DepartureTime:    strPtr("11:10"),
				DistanceFromPrev: float64Ptr(12.5),
				Fare:             &models.FareInput{Sleeper: float64Ptr(250)},
			},
			{
				Stand:            standC.String(),
				ArrivalTime:      strPtr("15:45"),
				DistanceFromPrev: float64Ptr(7.25),
				Fare:             &models.FareInput{Sleeper: float64Ptr(600), Seating: float64Ptr(400)},
			},
		},
		TotalFare: &models.FareInput{Sleeper: float64Ptr(600), Seating: float64Ptr(400)},
	}

	route, err := service.Create(req)
	require.NoError(t, err)

	assert.Equal(t, "0830ABCXYZSLE40", route.Code)
	assert.Equal(t, 19.75, route.DistanceKm)
	assert.Equal(t, models.RouteStatusActive, route.Status)
	require.Len(t, route.Stops, 3)
	assert.Equal(t, 1, route.Stops[0].Sequence)
	assert.Equal(t, 0.0, route.Stops[0].DistanceFromPrev)
	require.NotNil(t, route.Stops[0].DepartureTime)
	assert.Equal(t, 510, *route.Stops[0].DepartureTime)
	// partial fare input is completed with zero values
	assert.Equal(t, models.FarePair{Sleeper: 250, Seating: 0}, route.Stops[1].Fare)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Create_BusNotFound(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	busID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM buses").
		WithArgs(busID).
		WillReturnError(sql.ErrNoRows)

	req := &models.CreateRouteRequest{
		Name:   "Ghost Route",
		Bus:    busID.String(),
		Stands: []models.StopInput{{Stand: uuid.New().String()}},
	}

	_, err := service.Create(req)
	assert.ErrorIs(t, err, ErrBusNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Create_MalformedBusID(t *testing.T) {
	service, _, cleanup := newRouteService(t, false)
	defer cleanup()

	req := &models.CreateRouteRequest{
		Name:   "Ghost Route",
		Bus:    "not-a-uuid",
		Stands: []models.StopInput{{Stand: uuid.New().String()}},
	}

	_, err := service.Create(req)
	assert.ErrorIs(t, err, ErrBusNotFound)
}

func TestRouteService_Create_UnknownStand(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	busID := uuid.New()
	standA := uuid.New()
	standB := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM buses").
		WithArgs(busID).
		WillReturnRows(sleeperBusRow(busID))

	// only one of the two requested stands resolves, so nothing is written
	mock.ExpectQuery("SELECT (.+) FROM bus_stands").
		WillReturnRows(sqlmock.NewRows(standColumns).
			AddRow(standA.String(), "Hyderabad Central", "Hyderabad", "ABC", "Hyderabad", time.Now(), time.Now()))

	req := &models.CreateRouteRequest{
		Name: "Broken Route",
		Bus:  busID.String(),
		Stands: []models.StopInput{
			{Stand: standA.String()},
			{Stand: standB.String()},
		},
	}

	_, err := service.Create(req)
	assert.ErrorIs(t, err, ErrStandSetMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Create_DuplicateCode(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	busID := uuid.New()
	standA := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM buses").
		WithArgs(busID).
		WillReturnRows(sleeperBusRow(busID))

	mock.ExpectQuery("SELECT (.+) FROM bus_stands").
		WillReturnRows(sqlmock.NewRows(standColumns).
			AddRow(standA.String(), "Hyderabad Central", "Hyderabad", "ABC", "Hyderabad", time.Now(), time.Now()))

	mock.ExpectQuery("INSERT INTO routes").
		WillReturnError(&pq.Error{Code: "23505"})

	req := &models.CreateRouteRequest{
		Name:   "Hyderabad Express",
		Bus:    busID.String(),
		Stands: []models.StopInput{{Stand: standA.String(), DepartureTime: strPtr("08:30")}},
	}

	_, err := service.Create(req)
	assert.ErrorIs(t, err, database.ErrDuplicateCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Update_KeepsCodeByDefault(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	routeID := uuid.New()
	busID := uuid.New()
	standA := uuid.New()
	standB := uuid.New()

	stands := fmt.Sprintf(
		`[{"stand":%q,"sequence":1,"departureTime":510,"distanceFromPrev":0,"fare":{"sleeper":0,"seating":0}},`+
			`{"stand":%q,"sequence":2,"arrivalTime":945,"distanceFromPrev":19.75,"fare":{"sleeper":600,"seating":400}}]`,
		standA, standB,
	)

	mock.ExpectQuery("SELECT (.+) FROM routes").
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows(routeColumns).AddRow(
			routeID.String(), "Hyderabad Express", "0830ABCXYZSLE40", busID.String(),
			nil, []byte(stands), "Active", false, nil, 19.75,
			[]byte(`{"sleeper":600,"seating":400}`), nil, nil, time.Now(), time.Now(),
		))

	mock.ExpectExec("UPDATE routes").
		WithArgs(
			routeID, "Hyderabad Night Express", "0830ABCXYZSLE40", sqlmock.AnyArg(),
			nil, sqlmock.AnyArg(), "Inactive", false, nil, 19.75,
			sqlmock.AnyArg(), nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.UpdateRouteRequest{
		Name:   strPtr("Hyderabad Night Express"),
		Status: strPtr("Inactive"),
	}

	route, err := service.Update(routeID, req)
	require.NoError(t, err)

	assert.Equal(t, "Hyderabad Night Express", route.Name)
	assert.Equal(t, "0830ABCXYZSLE40", route.Code)
	assert.Equal(t, models.RouteStatusInactive, route.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Update_RejectsInvertedValidityWindow(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	routeID := uuid.New()
	busID := uuid.New()
	standA := uuid.New()

	stands := fmt.Sprintf(
		`[{"stand":%q,"sequence":1,"departureTime":510,"distanceFromPrev":0,"fare":{"sleeper":0,"seating":0}}]`,
		standA,
	)
	validFrom := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM routes").
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows(routeColumns).AddRow(
			routeID.String(), "Festival Special", "0830ABCABCSLE40", busID.String(),
			nil, []byte(stands), "Active", true, "Sankranti", 0.0,
			[]byte(`{"sleeper":600,"seating":400}`), validFrom, nil, time.Now(), time.Now(),
		))

	// validTo alone merges against the stored validFrom; the inverted
	// window is rejected and nothing is written
	_, err := service.Update(routeID, &models.UpdateRouteRequest{ValidTo: strPtr("2026-06-01")})
	assert.ErrorIs(t, err, ErrInvalidValidityWindow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Update_RecomputesCodeWhenEnabled(t *testing.T) {
	service, mock, cleanup := newRouteService(t, true)
	defer cleanup()

	routeID := uuid.New()
	busID := uuid.New()
	standA := uuid.New()
	standB := uuid.New()

	stands := fmt.Sprintf(
		`[{"stand":%q,"sequence":1,"departureTime":540,"distanceFromPrev":0,"fare":{"sleeper":0,"seating":0}},`+
			`{"stand":%q,"sequence":2,"arrivalTime":945,"distanceFromPrev":19.75,"fare":{"sleeper":600,"seating":400}}]`,
		standA, standB,
	)

	mock.ExpectQuery("SELECT (.+) FROM routes").
		WithArgs(routeID).
		WillReturnRows(sqlmock.NewRows(routeColumns).AddRow(
			routeID.String(), "Hyderabad Express", "0830ABCXYZSLE40", busID.String(),
			nil, []byte(stands), "Active", false, nil, 19.75,
			[]byte(`{"sleeper":600,"seating":400}`), nil, nil, time.Now(), time.Now(),
		))

	mock.ExpectQuery("SELECT (.+) FROM buses").
		WithArgs(busID).
		WillReturnRows(sleeperBusRow(busID))

	mock.ExpectQuery("SELECT (.+) FROM bus_stands").
		WillReturnRows(sqlmock.NewRows(standColumns).
			AddRow(standA.String(), "Hyderabad Central", "Hyderabad", "ABC", "Hyderabad", time.Now(), time.Now()).
			AddRow(standB.String(), "Visakhapatnam RTC", "Visakhapatnam", "XYZ", "Visakhapatnam", time.Now(), time.Now()))

	mock.ExpectExec("UPDATE routes").
		WillReturnResult(sqlmock.NewResult(0, 1))

	route, err := service.Update(routeID, &models.UpdateRouteRequest{Name: strPtr("Renamed")})
	require.NoError(t, err)

	// stored departure minutes 540 render as 09:00, so the code changes
	assert.Equal(t, "0900ABCXYZSLE40", route.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteService_Update_NotFound(t *testing.T) {
	service, mock, cleanup := newRouteService(t, false)
	defer cleanup()

	routeID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM routes").
		WithArgs(routeID).
		WillReturnError(sql.ErrNoRows)

	_, err := service.Update(routeID, &models.UpdateRouteRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

// mockDatabase implements the database.DB interface for testing
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
