package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
	"github.com/gsrtc/transit-ops-backend/pkg/timecode"
)

var (
	// ErrBusNotFound indicates the referenced bus does not exist
	ErrBusNotFound = errors.New("invalid bus reference")

	// ErrStandSetMismatch indicates at least one referenced stand does not
	// exist. The check is set-size equality, no per-id diagnostics.
	ErrStandSetMismatch = errors.New("one or more invalid bus stands")

	// ErrRouteNotFound indicates the route being updated does not exist
	ErrRouteNotFound = errors.New("route not found")

	// ErrInvalidValidityWindow indicates the merged validity window is
	// inverted. Request-level validation only sees the dates supplied in one
	// patch; the merge against stored dates is checked here.
	ErrInvalidValidityWindow = errors.New("validTo must be on or after validFrom")
)

// unknownStandCode is the code fragment used when a terminal stand cannot be
// matched back to the resolved set during code derivation
const unknownStandCode = "XXX"

// RouteService assembles and updates route documents: it validates entity
// references, derives the route code, aggregates legs and persists the
// result. Each call is independent; uniqueness of the derived code is
// enforced by the store's constraint, with no retry here.
type RouteService struct {
	routeRepo *database.RouteRepository
	busRepo   *database.BusRepository
	standRepo *database.StandRepository

	// recomputeCodeOnUpdate selects the update-path policy: when false the
	// code assigned at creation is permanent, when true edits re-derive it
	// from the edited departure time, terminal stands and bus.
	recomputeCodeOnUpdate bool
}

// NewRouteService creates a new RouteService
func NewRouteService(
	routeRepo *database.RouteRepository,
	busRepo *database.BusRepository,
	standRepo *database.StandRepository,
	recomputeCodeOnUpdate bool,
) *RouteService {
	return &RouteService{
		routeRepo:             routeRepo,
		busRepo:               busRepo,
		standRepo:             standRepo,
		recomputeCodeOnUpdate: recomputeCodeOnUpdate,
	}
}

// Create assembles and persists a new route:
// bus resolution, stand set resolution, code derivation, leg aggregation,
// total fare resolution, single-document write.
func (s *RouteService) Create(req *models.CreateRouteRequest) (*models.Route, error) {
	busID, err := uuid.Parse(req.Bus)
	if err != nil {
		return nil, ErrBusNotFound
	}
	bus, err := s.busRepo.GetByID(busID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBusNotFound
		}
		return nil, fmt.Errorf("failed to resolve bus: %w", err)
	}

	stops, err := buildStops(req.Stands)
	if err != nil {
		return nil, err
	}

	standsByID, err := s.resolveStandSet(stops)
	if err != nil {
		return nil, err
	}

	code := s.deriveCode(firstDepartureText(req.Stands), stops, standsByID, bus)

	stops, distanceKm := AggregateLegs(stops)

	var conductorID *uuid.UUID
	if req.Conductor != nil && *req.Conductor != "" {
		id, err := uuid.Parse(*req.Conductor)
		if err != nil {
			return nil, fmt.Errorf("invalid conductor reference")
		}
		conductorID = &id
	}

	route := &models.Route{
		ID:          uuid.New(),
		Name:        req.Name,
		Code:        code,
		BusID:       bus.ID,
		ConductorID: conductorID,
		Stops:       stops,
		Status:      models.RouteStatusActive,
		DistanceKm:  distanceKm,
		TotalFare:   req.TotalFare.ToPair(),
	}
	if req.Status != nil {
		route.Status = models.RouteStatus(*req.Status)
	}
	if req.IsSpecialRoute != nil {
		route.IsSpecialRoute = *req.IsSpecialRoute
	}
	route.FestivalName = req.FestivalName
	if route.ValidFrom, err = parseDatePtr(req.ValidFrom); err != nil {
		return nil, err
	}
	if route.ValidTo, err = parseDatePtr(req.ValidTo); err != nil {
		return nil, err
	}

	// A code collision surfaces as database.ErrDuplicateCode from the
	// store's unique index; it is not caught or retried here.
	if err := s.routeRepo.Insert(route); err != nil {
		return nil, err
	}

	return route, nil
}

// Update merges a patch over the stored route and re-runs reference
// validation, leg aggregation and total fare resolution before overwriting.
// Code derivation is re-run only under the recompute policy.
func (s *RouteService) Update(routeID uuid.UUID, req *models.UpdateRouteRequest) (*models.Route, error) {
	route, err := s.routeRepo.GetByID(routeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to load route: %w", err)
	}

	if req.Bus != nil {
		busID, err := uuid.Parse(*req.Bus)
		if err != nil {
			return nil, ErrBusNotFound
		}
		if _, err := s.busRepo.GetByID(busID); err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrBusNotFound
			}
			return nil, fmt.Errorf("failed to resolve bus: %w", err)
		}
		route.BusID = busID
	}

	var departureText string
	if req.Stands != nil {
		stops, err := buildStops(*req.Stands)
		if err != nil {
			return nil, err
		}
		if _, err := s.resolveStandSet(stops); err != nil {
			return nil, err
		}
		route.Stops = stops
		departureText = firstDepartureText(*req.Stands)
	} else if len(route.Stops) > 0 {
		departureText = timecode.TextPtr(route.Stops[0].DepartureTime)
	}

	// Aggregation always re-runs against the merged stop list; the stored
	// distance is never trusted.
	route.Stops, route.DistanceKm = AggregateLegs(route.Stops)

	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.Conductor != nil {
		if *req.Conductor == "" {
			route.ConductorID = nil
		} else {
			id, err := uuid.Parse(*req.Conductor)
			if err != nil {
				return nil, fmt.Errorf("invalid conductor reference")
			}
			route.ConductorID = &id
		}
	}
	if req.Status != nil {
		route.Status = models.RouteStatus(*req.Status)
	}
	if req.IsSpecialRoute != nil {
		route.IsSpecialRoute = *req.IsSpecialRoute
	}
	if req.FestivalName != nil {
		route.FestivalName = req.FestivalName
	}
	if req.TotalFare != nil {
		route.TotalFare = req.TotalFare.ToPair()
	}
	if req.ValidFrom != nil {
		if route.ValidFrom, err = parseDatePtr(req.ValidFrom); err != nil {
			return nil, err
		}
	}
	if req.ValidTo != nil {
		if route.ValidTo, err = parseDatePtr(req.ValidTo); err != nil {
			return nil, err
		}
	}
	if route.ValidFrom != nil && route.ValidTo != nil && route.ValidTo.Before(*route.ValidFrom) {
		return nil, ErrInvalidValidityWindow
	}

	if s.recomputeCodeOnUpdate {
		bus, err := s.busRepo.GetByID(route.BusID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrBusNotFound
			}
			return nil, fmt.Errorf("failed to resolve bus: %w", err)
		}
		standsByID, err := s.resolveStandSet(route.Stops)
		if err != nil {
			return nil, err
		}
		route.Code = s.deriveCode(departureText, route.Stops, standsByID, bus)
	}

	if err := s.routeRepo.Update(route); err != nil {
		return nil, err
	}

	return route, nil
}

// resolveStandSet fetches the stands referenced by the stop list and demands
// an exact match: any unresolvable id fails the whole set.
func (s *RouteService) resolveStandSet(stops []models.RouteStop) (map[uuid.UUID]models.Stand, error) {
	ids := make([]uuid.UUID, len(stops))
	for i, stop := range stops {
		ids[i] = stop.StandID
	}

	stands, err := s.standRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stands: %w", err)
	}
	if len(stands) != len(ids) {
		return nil, ErrStandSetMismatch
	}

	byID := make(map[uuid.UUID]models.Stand, len(stands))
	for _, stand := range stands {
		byID[stand.ID] = stand
	}
	return byID, nil
}

// deriveCode runs the code generator against the terminal stands. Stands are
// looked up by id, not array position, tolerating resolved-set reordering; a
// missing lookup degrades to the XXX fragment rather than failing.
func (s *RouteService) deriveCode(departureText string, stops []models.RouteStop, standsByID map[uuid.UUID]models.Stand, bus *models.Bus) string {
	departureCode := unknownStandCode
	arrivalCode := unknownStandCode
	if len(stops) > 0 {
		if stand, ok := standsByID[stops[0].StandID]; ok {
			departureCode = stand.Code
		}
		if stand, ok := standsByID[stops[len(stops)-1].StandID]; ok {
			arrivalCode = stand.Code
		}
	}
	return GenerateRouteCode(departureText, departureCode, arrivalCode, bus.Type, bus.TotalSeats)
}

// buildStops converts requested stops into route stops: stand ids parsed,
// HH:MM times converted to minute offsets (malformed times normalize to
// null), distances defaulted, partial fares completed.
func buildStops(inputs []models.StopInput) ([]models.RouteStop, error) {
	stops := make([]models.RouteStop, len(inputs))
	for i, in := range inputs {
		standID, err := uuid.Parse(in.Stand)
		if err != nil {
			return nil, ErrStandSetMismatch
		}

		stop := models.RouteStop{
			StandID:       standID,
			ArrivalTime:   timecode.MinutesPtr(in.ArrivalTime),
			DepartureTime: timecode.MinutesPtr(in.DepartureTime),
			Fare:          in.Fare.ToPair(),
		}
		if in.DistanceFromPrev != nil {
			stop.DistanceFromPrev = *in.DistanceFromPrev
		}
		stops[i] = stop
	}
	return stops, nil
}

// firstDepartureText returns the first stop's declared departure time text,
// falling back to "0000" when absent
func firstDepartureText(inputs []models.StopInput) string {
	if len(inputs) == 0 || inputs[0].DepartureTime == nil || *inputs[0].DepartureTime == "" {
		return "0000"
	}
	return *inputs[0].DepartureTime
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *s)
	}
	return &t, nil
}
