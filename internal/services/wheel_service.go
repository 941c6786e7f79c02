package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/congdat192/LuckySpin-sub000/internal/engine"
	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/repositories"
	"github.com/congdat192/LuckySpin-sub000/internal/utils"
	"github.com/congdat192/LuckySpin-sub000/pkg/invoiceapi"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// allocationRetries bounds how often a spin re-selects after losing a
// decrement race before giving up with ErrSpinConflict.
const allocationRetries = 3

// SpinResult is what a committed spin returns to the caller.
type SpinResult struct {
	TurnIndex   int              `json:"turnIndex"`
	PrizeID     string           `json:"prizeId,omitempty"`
	PrizeName   string           `json:"prizeName"`
	PrizeType   models.PrizeType `json:"prizeType"`
	IsWinner    bool             `json:"isWinner"`
	VoucherCode string           `json:"voucherCode,omitempty"`
	TurnsLeft   int              `json:"turnsLeft"`
}

// WheelService defines the customer-facing wheel operations.
type WheelService interface {
	// Validate resolves a purchase code into a session with a frozen turn
	// budget, creating it on first sight and returning the stored session on
	// every later call.
	Validate(ctx context.Context, eventID primitive.ObjectID, purchaseCode string) (*models.Session, error)
	// Spin claims one turn of a session and resolves it to a prize.
	Spin(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (*SpinResult, error)
	// GetSession is the re-query path for clients with an unknown outcome.
	GetSession(ctx context.Context, sessionID primitive.ObjectID) (*models.Session, []*models.SpinRecord, error)
}

// Compile-time check to ensure WheelServiceImpl implements WheelService
var _ WheelService = (*WheelServiceImpl)(nil)

// WheelServiceImpl orchestrates rule evaluation, the spin ledger and prize
// allocation.
type WheelServiceImpl struct {
	eventRepo     repositories.EventRepository
	ruleRepo      repositories.RuleRepository
	prizeRepo     repositories.PrizeRepository
	inventoryRepo repositories.InventoryRepository
	sessionRepo   repositories.SessionRepository
	spinRepo      repositories.SpinRecordRepository
	purchases     invoiceapi.PurchaseSource
	picker        *engine.Picker
}

// NewWheelService creates a new WheelServiceImpl.
func NewWheelService(
	eventRepo repositories.EventRepository,
	ruleRepo repositories.RuleRepository,
	prizeRepo repositories.PrizeRepository,
	inventoryRepo repositories.InventoryRepository,
	sessionRepo repositories.SessionRepository,
	spinRepo repositories.SpinRecordRepository,
	purchases invoiceapi.PurchaseSource,
	picker *engine.Picker,
) *WheelServiceImpl {
	return &WheelServiceImpl{
		eventRepo:     eventRepo,
		ruleRepo:      ruleRepo,
		prizeRepo:     prizeRepo,
		inventoryRepo: inventoryRepo,
		sessionRepo:   sessionRepo,
		spinRepo:      spinRepo,
		purchases:     purchases,
		picker:        picker,
	}
}

// Validate resolves a purchase code into a session. The rule processor runs
// at most once per (event, purchase code); afterwards the frozen session is
// returned even if the rule set has changed.
func (s *WheelServiceImpl) Validate(ctx context.Context, eventID primitive.ObjectID, purchaseCode string) (*models.Session, error) {
	// Fast path: the session already exists, nothing is recomputed.
	existing, err := s.sessionRepo.FindByEventAndCode(ctx, eventID, purchaseCode)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event.Status != models.EventStatusActive {
		return nil, ErrEventNotFound
	}

	// No session may be created from a purchase we could not fully fetch.
	purchase, err := s.purchases.GetPurchase(ctx, purchaseCode)
	if err != nil {
		if errors.Is(err, invoiceapi.ErrNotFound) {
			return nil, ErrPurchaseNotFound
		}
		slog.Error("Failed to fetch purchase record", "error", err, "purchaseCode", utils.MaskCode(purchaseCode))
		return nil, ErrPurchaseUnavailable
	}

	rules, err := s.ruleRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event rules: %w", err)
	}

	outcome := engine.ProcessRules(rules, purchase, purchase.BranchCode)
	session := &models.Session{
		EventID:       eventID,
		PurchaseCode:  purchaseCode,
		BranchCode:    purchase.BranchCode,
		InvoiceTotal:  purchase.Total,
		TotalTurns:    outcome.Turns,
		IsValid:       outcome.Eligible,
		InvalidReason: outcome.Reason,
	}
	if !outcome.Eligible {
		session.TotalTurns = 0
	}

	stored, created, err := s.sessionRepo.CreateIfAbsent(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if created {
		slog.Info("Session created", "eventId", eventID.Hex(), "purchaseCode", utils.MaskCode(purchaseCode),
			"branch", purchase.BranchCode, "eligible", outcome.Eligible, "turns", stored.TotalTurns)
	}
	return stored, nil
}

// Spin claims turnIndex of a session and resolves it against the branch
// inventory. The commit order is: claim the turn (atomic CAS on usedTurns),
// decrement inventory (atomic conditional update), insert the spin record.
// Any later step failing compensates the earlier ones best-effort so a spin
// is never half-committed.
func (s *WheelServiceImpl) Spin(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (*SpinResult, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !session.IsValid {
		return nil, ErrSessionInvalid
	}
	if turnIndex <= session.UsedTurns {
		return nil, ErrDuplicateTurn
	}
	if turnIndex > session.TotalTurns {
		return nil, ErrTurnsExhausted
	}
	if turnIndex != session.UsedTurns+1 {
		return nil, ErrTurnOutOfOrder
	}

	// The pre-checks above only shape the error; this conditional update is
	// what guarantees exactly one winner per turn index under concurrency.
	claimed, err := s.sessionRepo.ClaimTurn(ctx, sessionID, turnIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to claim turn: %w", err)
	}
	if !claimed {
		return nil, ErrDuplicateTurn
	}

	row, err := s.allocate(ctx, session)
	if err != nil {
		s.releaseTurn(ctx, sessionID, turnIndex)
		return nil, err
	}

	record := &models.SpinRecord{
		SessionID:  sessionID,
		EventID:    session.EventID,
		BranchCode: session.BranchCode,
		TurnIndex:  turnIndex,
		PrizeID:    row.PrizeID,
		PrizeName:  row.PrizeName,
		PrizeType:  row.PrizeType,
	}
	if row.PrizeType == models.PrizeTypeVoucher {
		record.VoucherCode = uuid.NewString()
	}

	if err := s.spinRepo.Create(ctx, record); err != nil {
		// The prize was decremented but the outcome cannot be recorded; undo
		// both sides and let the client retry.
		if row.PrizeType != models.PrizeTypeNoPrize {
			if restoreErr := s.inventoryRepo.RestoreStock(ctx, row.InventoryID); restoreErr != nil {
				slog.Error("Failed to restore inventory after spin record failure",
					"error", restoreErr, "inventoryId", row.InventoryID.Hex())
			}
		}
		s.releaseTurn(ctx, sessionID, turnIndex)
		slog.Error("Failed to record spin outcome", "error", err, "sessionId", sessionID.Hex(), "turnIndex", turnIndex)
		return nil, ErrSpinConflict
	}

	slog.Info("Spin committed", "sessionId", sessionID.Hex(), "turnIndex", turnIndex,
		"prize", row.PrizeName, "prizeType", row.PrizeType, "branch", session.BranchCode)

	return &SpinResult{
		TurnIndex:   turnIndex,
		PrizeID:     row.PrizeID.Hex(),
		PrizeName:   row.PrizeName,
		PrizeType:   row.PrizeType,
		IsWinner:    row.PrizeType != models.PrizeTypeNoPrize,
		VoucherCode: record.VoucherCode,
		TurnsLeft:   session.TotalTurns - turnIndex,
	}, nil
}

// allocate snapshots the branch inventory, draws a prize and secures it with
// the conditional decrement. Losing the decrement race reloads and redraws
// against fresh stock; a selection is never recorded without its decrement.
func (s *WheelServiceImpl) allocate(ctx context.Context, session *models.Session) (*models.InventoryRow, error) {
	for attempt := 0; attempt <= allocationRetries; attempt++ {
		rows, err := s.loadRows(ctx, session.BranchCode, session.EventID)
		if err != nil {
			return nil, err
		}

		row, err := s.picker.Pick(rows)
		if err != nil {
			if errors.Is(err, engine.ErrNoEligiblePrizes) {
				return nil, ErrNoPrizesAvailable
			}
			if errors.Is(err, engine.ErrZeroTotalWeight) {
				slog.Error("Wheel has zero total weight", "eventId", session.EventID.Hex(), "branch", session.BranchCode)
				return nil, ErrWheelMisconfigured
			}
			return nil, err
		}

		if row.PrizeType == models.PrizeTypeNoPrize {
			return row, nil
		}

		decremented, err := s.inventoryRepo.DecrementStock(ctx, row.InventoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement inventory: %w", err)
		}
		if decremented {
			return row, nil
		}

		// Lost the last unit to a concurrent spin; redraw on fresh stock.
		slog.Warn("Lost inventory race, retrying selection",
			"inventoryId", row.InventoryID.Hex(), "attempt", attempt+1)
	}
	return nil, ErrSpinConflict
}

// loadRows joins the branch inventory snapshot with prize metadata into the
// allocator's view.
func (s *WheelServiceImpl) loadRows(ctx context.Context, branchCode string, eventID primitive.ObjectID) ([]models.InventoryRow, error) {
	inventories, err := s.inventoryRepo.FindByBranchAndEvent(ctx, branchCode, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch inventory: %w", err)
	}
	prizes, err := s.prizeRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prizes: %w", err)
	}
	prizeByID := make(map[primitive.ObjectID]*models.Prize, len(prizes))
	for _, p := range prizes {
		prizeByID[p.ID] = p
	}

	rows := make([]models.InventoryRow, 0, len(inventories))
	for _, inv := range inventories {
		prize, ok := prizeByID[inv.PrizeID]
		if !ok {
			slog.Warn("Inventory row references unknown prize", "inventoryId", inv.ID.Hex(), "prizeId", inv.PrizeID.Hex())
			continue
		}
		weight := prize.DefaultWeight
		if inv.WeightOverride != nil {
			weight = *inv.WeightOverride
		}
		rows = append(rows, models.InventoryRow{
			InventoryID: inv.ID,
			PrizeID:     prize.ID,
			PrizeName:   prize.Name,
			PrizeType:   prize.PrizeType,
			Weight:      weight,
			Remaining:   inv.RemainingQuantity,
		})
	}
	return rows, nil
}

func (s *WheelServiceImpl) releaseTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) {
	if err := s.sessionRepo.ReleaseTurn(ctx, sessionID, turnIndex); err != nil {
		slog.Error("Failed to release claimed turn", "error", err,
			"sessionId", sessionID.Hex(), "turnIndex", turnIndex)
	}
}

// GetSession returns the session and its committed spin history.
func (s *WheelServiceImpl) GetSession(ctx context.Context, sessionID primitive.ObjectID) (*models.Session, []*models.SpinRecord, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	records, err := s.spinRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load spin records: %w", err)
	}
	return session, records, nil
}

// NewDefaultPicker seeds a production picker from the wall clock.
func NewDefaultPicker() *engine.Picker {
	return engine.NewPicker(time.Now().UnixNano())
}
