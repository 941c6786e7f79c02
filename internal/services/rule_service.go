package services

import (
	"context"
	"fmt"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// RuleService manages event rules. Malformed payloads are refused here, at
// authoring time, so the spin path only ever evaluates well-formed rules.
type RuleService struct {
	ruleRepo  repositories.RuleRepository
	eventRepo repositories.EventRepository
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo repositories.RuleRepository, eventRepo repositories.EventRepository) *RuleService {
	return &RuleService{ruleRepo: ruleRepo, eventRepo: eventRepo}
}

// CreateRule validates and saves a new rule.
func (s *RuleService) CreateRule(ctx context.Context, rule *models.EventRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}
	if _, err := s.eventRepo.FindByID(ctx, rule.EventID); err != nil {
		return ErrEventNotFound
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		slog.Error("Failed to create rule", "error", err, "eventId", rule.EventID.Hex())
		return fmt.Errorf("failed to create rule: %w", err)
	}
	slog.Info("Rule created", "ruleId", rule.ID.Hex(), "eventId", rule.EventID.Hex(),
		"type", rule.RuleType, "priority", rule.Priority)
	return nil
}

// UpdateRule validates and replaces an existing rule.
func (s *RuleService) UpdateRule(ctx context.Context, rule *models.EventRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}
	if _, err := s.ruleRepo.FindByID(ctx, rule.ID); err != nil {
		return fmt.Errorf("rule not found: %w", err)
	}
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return nil
}

// GetRule retrieves a rule by id.
func (s *RuleService) GetRule(ctx context.Context, id primitive.ObjectID) (*models.EventRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rule not found: %w", err)
	}
	return rule, nil
}

// GetRulesByEvent lists an event's rules in evaluation order.
func (s *RuleService) GetRulesByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRule, error) {
	rules, err := s.ruleRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes a rule.
func (s *RuleService) DeleteRule(ctx context.Context, id primitive.ObjectID) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}
