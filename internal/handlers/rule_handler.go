package handlers

import (
	"net/http"
	"strings"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleHandler handles event rule administration
type RuleHandler struct {
	ruleService *services.RuleService
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(ruleService *services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// CreateRule handles POST /rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var rule models.EventRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.ruleService.CreateRule(c.Request.Context(), &rule); err != nil {
		if strings.Contains(err.Error(), "invalid rule") {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /rules/:id
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var rule models.EventRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule.ID = id
	if err := h.ruleService.UpdateRule(c.Request.Context(), &rule); err != nil {
		if strings.Contains(err.Error(), "invalid rule") {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, rule)
}

// GetRulesByEvent handles GET /events/:id/rules
func (h *RuleHandler) GetRulesByEvent(c *gin.Context) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}
	rules, err := h.ruleService.GetRulesByEvent(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rules: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, rules)
}

// DeleteRule handles DELETE /rules/:id
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	if err := h.ruleService.DeleteRule(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}
