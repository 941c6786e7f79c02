package handlers

import (
	"errors"
	"net/http"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WheelHandler handles the customer-facing wheel endpoints
type WheelHandler struct {
	wheelService services.WheelService
}

// NewWheelHandler creates a new WheelHandler
func NewWheelHandler(wheelService services.WheelService) *WheelHandler {
	return &WheelHandler{wheelService: wheelService}
}

// ValidateRequest is the POST /wheel/validate payload
type ValidateRequest struct {
	EventID      string `json:"event_id" binding:"required"`
	PurchaseCode string `json:"purchase_code" binding:"required"`
}

// SessionResponse summarizes a session for the client
type SessionResponse struct {
	SessionID     string `json:"sessionId"`
	Eligible      bool   `json:"eligible"`
	Reason        string `json:"reason,omitempty"`
	TotalTurns    int    `json:"totalTurns"`
	UsedTurns     int    `json:"usedTurns"`
	TurnsLeft     int    `json:"turnsLeft"`
	BranchCode    string `json:"branchCode"`
}

func sessionResponse(session *models.Session) SessionResponse {
	return SessionResponse{
		SessionID:  session.ID.Hex(),
		Eligible:   session.IsValid,
		Reason:     session.InvalidReason,
		TotalTurns: session.TotalTurns,
		UsedTurns:  session.UsedTurns,
		TurnsLeft:  session.TotalTurns - session.UsedTurns,
		BranchCode: session.BranchCode,
	}
}

// Validate handles POST /wheel/validate
func (h *WheelHandler) Validate(c *gin.Context) {
	var request ValidateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eventID, err := primitive.ObjectIDFromHex(request.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	session, err := h.wheelService.Validate(c.Request.Context(), eventID, request.PurchaseCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found or not active"})
		case errors.Is(err, services.ErrPurchaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Purchase code not found"})
		case errors.Is(err, services.ErrPurchaseUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Purchase lookup temporarily unavailable, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate purchase: " + err.Error()})
		}
		return
	}
	// An ineligible purchase is a normal outcome, not an HTTP failure.
	c.JSON(http.StatusOK, sessionResponse(session))
}

// SpinRequest is the POST /wheel/spin payload
type SpinRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	TurnIndex int    `json:"turn_index" binding:"required,min=1"`
}

// Spin handles POST /wheel/spin
func (h *WheelHandler) Spin(c *gin.Context) {
	var request SpinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(request.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	result, err := h.wheelService.Spin(c.Request.Context(), sessionID, request.TurnIndex)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, services.ErrSessionInvalid):
			c.JSON(http.StatusForbidden, gin.H{"error": "Session is not valid for spinning"})
		case errors.Is(err, services.ErrDuplicateTurn):
			c.JSON(http.StatusConflict, gin.H{"error": "This turn has already been spun"})
		case errors.Is(err, services.ErrTurnOutOfOrder):
			c.JSON(http.StatusConflict, gin.H{"error": "Turns must be spun in order"})
		case errors.Is(err, services.ErrTurnsExhausted):
			c.JSON(http.StatusConflict, gin.H{"error": "All turns have been used"})
		case errors.Is(err, services.ErrNoPrizesAvailable):
			c.JSON(http.StatusConflict, gin.H{"error": "No prizes available at this branch"})
		case errors.Is(err, services.ErrSpinConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Spin conflicted with another request, please retry"})
		case errors.Is(err, services.ErrWheelMisconfigured):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Wheel is misconfigured for this branch"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to spin: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSession handles GET /wheel/sessions/:id
func (h *WheelHandler) GetSession(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}
	session, records, err := h.wheelService.GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionResponse(session), "spins": records})
}
