package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// PrizeService manages the prize catalog and branch inventories.
type PrizeService struct {
	prizeRepo     repositories.PrizeRepository
	inventoryRepo repositories.InventoryRepository
	eventRepo     repositories.EventRepository
}

// NewPrizeService creates a new PrizeService
func NewPrizeService(
	prizeRepo repositories.PrizeRepository,
	inventoryRepo repositories.InventoryRepository,
	eventRepo repositories.EventRepository,
) *PrizeService {
	return &PrizeService{prizeRepo: prizeRepo, inventoryRepo: inventoryRepo, eventRepo: eventRepo}
}

// CreatePrize validates and saves a new prize.
func (s *PrizeService) CreatePrize(ctx context.Context, prize *models.Prize) error {
	switch prize.PrizeType {
	case models.PrizeTypeVoucher, models.PrizeTypePhysical, models.PrizeTypeDiscount, models.PrizeTypeNoPrize:
	default:
		return fmt.Errorf("unknown prize type %q", prize.PrizeType)
	}
	if prize.DefaultWeight < 0 {
		return errors.New("prize weight must not be negative")
	}
	if _, err := s.eventRepo.FindByID(ctx, prize.EventID); err != nil {
		return ErrEventNotFound
	}
	if err := s.prizeRepo.Create(ctx, prize); err != nil {
		slog.Error("Failed to create prize", "error", err, "eventId", prize.EventID.Hex())
		return fmt.Errorf("failed to create prize: %w", err)
	}
	slog.Info("Prize created", "prizeId", prize.ID.Hex(), "name", prize.Name, "type", prize.PrizeType)
	return nil
}

// GetPrizesByEvent lists all prizes of an event.
func (s *PrizeService) GetPrizesByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*models.Prize, error) {
	prizes, err := s.prizeRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	return prizes, nil
}

// UpdatePrize replaces a prize.
func (s *PrizeService) UpdatePrize(ctx context.Context, prize *models.Prize) error {
	if prize.DefaultWeight < 0 {
		return errors.New("prize weight must not be negative")
	}
	if _, err := s.prizeRepo.FindByID(ctx, prize.ID); err != nil {
		return fmt.Errorf("prize not found: %w", err)
	}
	if err := s.prizeRepo.Update(ctx, prize); err != nil {
		return fmt.Errorf("failed to update prize: %w", err)
	}
	return nil
}

// DeletePrize removes a prize from the catalog.
func (s *PrizeService) DeletePrize(ctx context.Context, id primitive.ObjectID) error {
	if err := s.prizeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete prize: %w", err)
	}
	return nil
}

// GetBranchInventory snapshots all inventory rows of a branch for an event.
func (s *PrizeService) GetBranchInventory(ctx context.Context, branchCode string, eventID primitive.ObjectID) ([]*models.BranchInventory, error) {
	rows, err := s.inventoryRepo.FindByBranchAndEvent(ctx, branchCode, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch inventory: %w", err)
	}
	return rows, nil
}

// SetBranchInventory is the administrative bulk edit: it resets the stock and
// optional weight override of one (branch, prize) row. Spin-time decrements
// never go through here.
func (s *PrizeService) SetBranchInventory(ctx context.Context, inv *models.BranchInventory) error {
	if inv.InitialQuantity < 0 || inv.RemainingQuantity < 0 {
		return errors.New("inventory quantities must not be negative")
	}
	if inv.WeightOverride != nil && *inv.WeightOverride < 0 {
		return errors.New("weight override must not be negative")
	}
	if _, err := s.prizeRepo.FindByID(ctx, inv.PrizeID); err != nil {
		return fmt.Errorf("prize not found: %w", err)
	}
	if err := s.inventoryRepo.Upsert(ctx, inv); err != nil {
		slog.Error("Failed to set branch inventory", "error", err,
			"branch", inv.BranchCode, "prizeId", inv.PrizeID.Hex())
		return fmt.Errorf("failed to set branch inventory: %w", err)
	}
	slog.Info("Branch inventory set", "branch", inv.BranchCode, "prizeId", inv.PrizeID.Hex(),
		"remaining", inv.RemainingQuantity)
	return nil
}
