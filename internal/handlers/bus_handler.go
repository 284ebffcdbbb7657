package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

type BusHandler struct {
	busRepo *database.BusRepository
}

func NewBusHandler(busRepo *database.BusRepository) *BusHandler {
	return &BusHandler{busRepo: busRepo}
}

// GetAllBuses retrieves the fleet, optionally filtered by status
// GET /api/v1/buses
func (h *BusHandler) GetAllBuses(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		buses, err := h.busRepo.GetByStatus(models.BusStatus(status))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buses"})
			return
		}
		c.JSON(http.StatusOK, buses)
		return
	}

	buses, err := h.busRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buses"})
		return
	}

	c.JSON(http.StatusOK, buses)
}

// GetBusByID retrieves a specific bus
// GET /api/v1/buses/:id
func (h *BusHandler) GetBusByID(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	bus, err := h.busRepo.GetByID(busID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus"})
		return
	}

	c.JSON(http.StatusOK, bus)
}

// CreateBus registers a new bus in the fleet
// POST /api/v1/buses
func (h *BusHandler) CreateBus(c *gin.Context) {
	var req models.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus := database.NewBus(&req)
	if err := h.busRepo.Create(bus); err != nil {
		if err == database.ErrDuplicateCode {
			c.JSON(http.StatusConflict, gin.H{"error": "A bus with this code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bus"})
		return
	}

	c.JSON(http.StatusCreated, bus)
}

// UpdateBus applies a partial update to a bus
// PUT /api/v1/buses/:id
func (h *BusHandler) UpdateBus(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	var req models.UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.busRepo.Update(busID, &req); err != nil {
		switch err {
		case sql.ErrNoRows:
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		case database.ErrDuplicateCode:
			c.JSON(http.StatusConflict, gin.H{"error": "A bus with this code already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bus"})
		}
		return
	}

	bus, err := h.busRepo.GetByID(busID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus"})
		return
	}

	c.JSON(http.StatusOK, bus)
}

// DeleteBus removes a bus from the fleet
// DELETE /api/v1/buses/:id
func (h *BusHandler) DeleteBus(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	if err := h.busRepo.Delete(busID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted successfully"})
}
