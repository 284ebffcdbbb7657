package handlers

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/models"
)

type ConductorHandler struct {
	conductorRepo *database.ConductorRepository
}

func NewConductorHandler(conductorRepo *database.ConductorRepository) *ConductorHandler {
	return &ConductorHandler{conductorRepo: conductorRepo}
}

// GetAllConductors retrieves every conductor
// GET /api/v1/conductors
func (h *ConductorHandler) GetAllConductors(c *gin.Context) {
	conductors, err := h.conductorRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conductors"})
		return
	}

	c.JSON(http.StatusOK, conductors)
}

// GetConductorByID retrieves a specific conductor
// GET /api/v1/conductors/:id
func (h *ConductorHandler) GetConductorByID(c *gin.Context) {
	conductorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conductor ID"})
		return
	}

	conductor, err := h.conductorRepo.GetByID(conductorID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conductor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conductor"})
		return
	}

	c.JSON(http.StatusOK, conductor)
}

// CreateConductor registers a new conductor with a generated employee id
// POST /api/v1/conductors
func (h *ConductorHandler) CreateConductor(c *gin.Context) {
	var req models.CreateConductorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone, err := models.NormalizePhone(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	joiningDate, err := time.Parse("2006-01-02", req.JoiningDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid joining date, expected YYYY-MM-DD"})
		return
	}

	employeeID, err := generateEmployeeID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conductor"})
		return
	}

	conductor := &models.Conductor{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		Name:        req.Name,
		Address:     req.Address,
		Phone:       phone,
		JoiningDate: joiningDate,
		Status:      models.ConductorStatus(req.Status),
	}

	if err := h.conductorRepo.Create(conductor); err != nil {
		if err == database.ErrDuplicateCode {
			c.JSON(http.StatusConflict, gin.H{"error": "A conductor with this phone or employee id already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conductor"})
		return
	}

	c.JSON(http.StatusCreated, conductor)
}

// UpdateConductor applies a partial update to a conductor
// PUT /api/v1/conductors/:id
func (h *ConductorHandler) UpdateConductor(c *gin.Context) {
	conductorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conductor ID"})
		return
	}

	var req models.UpdateConductorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.conductorRepo.Update(conductorID, &req); err != nil {
		switch err {
		case sql.ErrNoRows:
			c.JSON(http.StatusNotFound, gin.H{"error": "Conductor not found"})
		case database.ErrDuplicateCode:
			c.JSON(http.StatusConflict, gin.H{"error": "A conductor with this phone already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conductor"})
		}
		return
	}

	conductor, err := h.conductorRepo.GetByID(conductorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conductor"})
		return
	}

	c.JSON(http.StatusOK, conductor)
}

// DeleteConductor removes a conductor
// DELETE /api/v1/conductors/:id
func (h *ConductorHandler) DeleteConductor(c *gin.Context) {
	conductorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conductor ID"})
		return
	}

	if err := h.conductorRepo.Delete(conductorID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conductor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conductor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conductor deleted successfully"})
}

// generateEmployeeID builds an EMP-prefixed id from the timestamp plus a
// random suffix. Collisions are caught by the unique index on employee_id.
func generateEmployeeID() (string, error) {
	suffix, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EMP-%d-%03d", time.Now().UnixMilli(), suffix.Int64()), nil
}
