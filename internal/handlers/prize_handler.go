package handlers

import (
	"net/http"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeHandler handles prize catalog and branch inventory administration
type PrizeHandler struct {
	prizeService *services.PrizeService
}

// NewPrizeHandler creates a new PrizeHandler
func NewPrizeHandler(prizeService *services.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizeService: prizeService}
}

// CreatePrize handles POST /prizes
func (h *PrizeHandler) CreatePrize(c *gin.Context) {
	var prize models.Prize
	if err := c.ShouldBindJSON(&prize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.prizeService.CreatePrize(c.Request.Context(), &prize); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create prize: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, prize)
}

// GetPrizesByEvent handles GET /events/:id/prizes
func (h *PrizeHandler) GetPrizesByEvent(c *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}
	prizes, err := h.prizeService.GetPrizesByEvent(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list prizes: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, prizes)
}

// UpdatePrize handles PUT /prizes/:id
func (h *PrizeHandler) UpdatePrize(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var prize models.Prize
	if err := c.ShouldBindJSON(&prize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prize.ID = id
	if err := h.prizeService.UpdatePrize(c.Request.Context(), &prize); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prize: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, prize)
}

// DeletePrize handles DELETE /prizes/:id
func (h *PrizeHandler) DeletePrize(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	if err := h.prizeService.DeletePrize(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete prize: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prize deleted"})
}

// GetBranchInventory handles GET /events/:id/inventory/:branch
func (h *PrizeHandler) GetBranchInventory(c *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}
	branch := c.Param("branch")
	rows, err := h.prizeService.GetBranchInventory(c.Request.Context(), branch, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inventory: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// SetInventoryRequest is the PUT /inventory payload
type SetInventoryRequest struct {
	EventID           string `json:"event_id" binding:"required"`
	PrizeID           string `json:"prize_id" binding:"required"`
	BranchCode        string `json:"branch_code" binding:"required"`
	InitialQuantity   int    `json:"initial_quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	WeightOverride    *int   `json:"weight_override"`
}

// SetBranchInventory handles PUT /inventory
func (h *PrizeHandler) SetBranchInventory(c *gin.Context) {
	var request SetInventoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eventID, err := primitive.ObjectIDFromHex(request.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}
	prizeID, err := primitive.ObjectIDFromHex(request.PrizeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prize ID format"})
		return
	}
	inv := &models.BranchInventory{
		EventID:           eventID,
		PrizeID:           prizeID,
		BranchCode:        request.BranchCode,
		InitialQuantity:   request.InitialQuantity,
		RemainingQuantity: request.RemainingQuantity,
		WeightOverride:    request.WeightOverride,
	}
	if err := h.prizeService.SetBranchInventory(c.Request.Context(), inv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set inventory: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, inv)
}
