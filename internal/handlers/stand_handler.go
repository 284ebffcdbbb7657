package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

type StandHandler struct {
	standRepo *database.StandRepository
}

func NewStandHandler(standRepo *database.StandRepository) *StandHandler {
	return &StandHandler{standRepo: standRepo}
}

// GetAllStands retrieves every bus stand
// GET /api/v1/stands
func (h *StandHandler) GetAllStands(c *gin.Context) {
	stands, err := h.standRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus stands"})
		return
	}

	c.JSON(http.StatusOK, stands)
}

// GetStandByID retrieves a specific bus stand
// GET /api/v1/stands/:id
func (h *StandHandler) GetStandByID(c *gin.Context) {
	standID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stand ID"})
		return
	}

	stand, err := h.standRepo.GetByID(standID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus stand not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus stand"})
		return
	}

	c.JSON(http.StatusOK, stand)
}

// GetStandByCode retrieves a bus stand by its short code
// GET /api/v1/stands/code/:code
func (h *StandHandler) GetStandByCode(c *gin.Context) {
	stand, err := h.standRepo.GetByCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus stand"})
		return
	}
	if stand == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus stand not found"})
		return
	}

	c.JSON(http.StatusOK, stand)
}

// CreateStand registers a new bus stand
// POST /api/v1/stands
func (h *StandHandler) CreateStand(c *gin.Context) {
	var req models.CreateStandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stand := &models.Stand{
		ID:       uuid.New(),
		Name:     req.Name,
		Location: req.Location,
		Code:     req.Code,
		District: req.District,
	}

	if err := h.standRepo.Create(stand); err != nil {
		if err == database.ErrDuplicateCode {
			c.JSON(http.StatusConflict, gin.H{"error": "A bus stand with this code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bus stand"})
		return
	}

	c.JSON(http.StatusCreated, stand)
}

// UpdateStand applies a partial update to a bus stand
// PUT /api/v1/stands/:id
func (h *StandHandler) UpdateStand(c *gin.Context) {
	standID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stand ID"})
		return
	}

	var req models.UpdateStandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.standRepo.Update(standID, &req); err != nil {
		switch err {
		case sql.ErrNoRows:
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus stand not found"})
		case database.ErrDuplicateCode:
			c.JSON(http.StatusConflict, gin.H{"error": "A bus stand with this code already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bus stand"})
		}
		return
	}

	stand, err := h.standRepo.GetByID(standID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus stand"})
		return
	}

	c.JSON(http.StatusOK, stand)
}

// DeleteStand removes a bus stand
// DELETE /api/v1/stands/:id
func (h *StandHandler) DeleteStand(c *gin.Context) {
	standID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stand ID"})
		return
	}

	if err := h.standRepo.Delete(standID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus stand not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus stand"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bus stand deleted successfully"})
}
