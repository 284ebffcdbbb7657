package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
	"github.com/gsrtc/transit-ops-backend/internal/services"
)

type RouteHandler struct {
	routeService *services.RouteService
	routeRepo    *database.RouteRepository
}

func NewRouteHandler(routeService *services.RouteService, routeRepo *database.RouteRepository) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		routeRepo:    routeRepo,
	}
}

// GetAllRoutes retrieves every route, optionally filtered by status
// GET /api/v1/routes
func (h *RouteHandler) GetAllRoutes(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		routes, err := h.routeRepo.GetByStatus(models.RouteStatus(status))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routes"})
			return
		}
		c.JSON(http.StatusOK, routes)
		return
	}

	routes, err := h.routeRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, routes)
}

// GetRouteByID retrieves a specific route document
// GET /api/v1/routes/:id
func (h *RouteHandler) GetRouteByID(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	route, err := h.routeRepo.GetByID(routeID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch route"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// CreateRoute assembles and persists a new route
// POST /api/v1/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.routeService.Create(&req)
	if err != nil {
		h.respondCreateOrUpdateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, route)
}

// UpdateRoute merges a patch over a route and re-assembles it
// PUT /api/v1/routes/:id
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var req models.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.routeService.Update(routeID, &req)
	if err != nil {
		h.respondCreateOrUpdateError(c, err)
		return
	}

	c.JSON(http.StatusOK, route)
}

// DeleteRoute removes a route
// DELETE /api/v1/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	if err := h.routeRepo.Delete(routeID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}

func (h *RouteHandler) respondCreateOrUpdateError(c *gin.Context, err error) {
	switch err {
	case services.ErrBusNotFound, services.ErrStandSetMismatch, services.ErrInvalidValidityWindow:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.ErrRouteNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	case database.ErrDuplicateCode:
		c.JSON(http.StatusConflict, gin.H{"error": "A route with this code already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save route"})
	}
}
