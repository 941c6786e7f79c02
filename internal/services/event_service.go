package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// EventService manages lucky wheel events.
type EventService struct {
	eventRepo repositories.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repositories.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// CreateEvent creates a new event.
func (s *EventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.Code == "" || event.Name == "" {
		return errors.New("event code and name are required")
	}
	if !event.EndAt.IsZero() && !event.EndAt.After(event.StartAt) {
		return errors.New("event end must be after start")
	}
	existing, err := s.eventRepo.FindByCode(ctx, event.Code)
	if err == nil && existing != nil {
		return fmt.Errorf("an event with code %s already exists", event.Code)
	}
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check event code: %w", err)
	}
	if event.Status == "" {
		event.Status = models.EventStatusActive
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		slog.Error("Failed to create event", "error", err, "code", event.Code)
		return fmt.Errorf("failed to create event: %w", err)
	}
	slog.Info("Event created", "eventId", event.ID.Hex(), "code", event.Code)
	return nil
}

// GetEvent retrieves an event by id.
func (s *EventService) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return event, nil
}

// ListEvents lists events, optionally filtered by status.
func (s *EventService) ListEvents(ctx context.Context, status models.EventStatus) ([]*models.Event, error) {
	events, err := s.eventRepo.FindAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEvent replaces an event.
func (s *EventService) UpdateEvent(ctx context.Context, event *models.Event) error {
	if _, err := s.eventRepo.FindByID(ctx, event.ID); err != nil {
		return ErrEventNotFound
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeactivateEvent turns an event off without deleting its history.
func (s *EventService) DeactivateEvent(ctx context.Context, id primitive.ObjectID) error {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return ErrEventNotFound
	}
	event.Status = models.EventStatusDeactivated
	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return fmt.Errorf("failed to deactivate event: %w", err)
	}
	slog.Info("Event deactivated", "eventId", id.Hex())
	return nil
}
