package repositories

import (
	"context"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindByCode(ctx context.Context, code string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindAll(ctx context.Context, status models.EventStatus) ([]*models.Event, error)
}

// RuleRepository defines the interface for event rule data operations
type RuleRepository interface {
	Create(ctx context.Context, rule *models.EventRule) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRule, error)
	Update(ctx context.Context, rule *models.EventRule) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindByEvent returns all rules of an event sorted by priority descending.
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRule, error)
}

// PrizeRepository defines the interface for prize data operations
type PrizeRepository interface {
	Create(ctx context.Context, prize *models.Prize) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error)
	Update(ctx context.Context, prize *models.Prize) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*models.Prize, error)
}

// InventoryRepository defines the interface for branch inventory operations.
// DecrementStock is the single mutation path used during spins.
type InventoryRepository interface {
	Upsert(ctx context.Context, inv *models.BranchInventory) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.BranchInventory, error)
	FindByBranchAndEvent(ctx context.Context, branchCode string, eventID primitive.ObjectID) ([]*models.BranchInventory, error)
	// DecrementStock atomically decrements remainingQuantity by one, only if it
	// is still positive. Returns true when a row was actually decremented.
	DecrementStock(ctx context.Context, id primitive.ObjectID) (bool, error)
	// RestoreStock adds one unit back; compensation path after a failed spin
	// commit.
	RestoreStock(ctx context.Context, id primitive.ObjectID) error
}

// SessionRepository defines the interface for spin session operations.
type SessionRepository interface {
	// CreateIfAbsent inserts the session keyed by (eventId, purchaseCode) or
	// returns the previously frozen one. The boolean reports whether this call
	// created the document.
	CreateIfAbsent(ctx context.Context, session *models.Session) (*models.Session, bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	FindByEventAndCode(ctx context.Context, eventID primitive.ObjectID, purchaseCode string) (*models.Session, error)
	// ClaimTurn atomically increments usedTurns from turnIndex-1 to turnIndex
	// on a valid session. Exactly one of any concurrent claimants for the same
	// index succeeds.
	ClaimTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (bool, error)
	// ReleaseTurn rolls a successful claim back; compensation path only.
	ReleaseTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) error
}

// SpinRecordRepository defines the interface for committed spin outcomes.
type SpinRecordRepository interface {
	// Create inserts the record; a duplicate (sessionId, turnIndex) pair must
	// fail against the unique index.
	Create(ctx context.Context, record *models.SpinRecord) error
	FindBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*models.SpinRecord, error)
	FindBySessionAndTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (*models.SpinRecord, error)
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
