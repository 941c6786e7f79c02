package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session binds one purchase code to a fixed spin budget for one event.
// TotalTurns, IsValid and InvalidReason are frozen at creation; re-validating
// the same purchase code returns the existing session without recomputing.
// UsedTurns only moves forward, one increment per committed spin.
type Session struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EventID       primitive.ObjectID `bson:"eventId" json:"eventId"`
	PurchaseCode  string             `bson:"purchaseCode" json:"purchaseCode"`
	BranchCode    string             `bson:"branchCode" json:"branchCode"`
	InvoiceTotal  int64              `bson:"invoiceTotal" json:"invoiceTotal"`
	TotalTurns    int                `bson:"totalTurns" json:"totalTurns"`
	UsedTurns     int                `bson:"usedTurns" json:"usedTurns"`
	IsValid       bool               `bson:"isValid" json:"isValid"`
	InvalidReason string             `bson:"invalidReason,omitempty" json:"invalidReason,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Exhausted reports whether the session has no spins left.
func (s *Session) Exhausted() bool {
	return s.UsedTurns >= s.TotalTurns
}

// SpinRecord is the committed outcome of one turn. The (session, turnIndex)
// pair is unique; this is the de-duplication anchor for replayed requests.
// Records are immutable once created.
type SpinRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SessionID   primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	EventID     primitive.ObjectID `bson:"eventId" json:"eventId"`
	BranchCode  string             `bson:"branchCode" json:"branchCode"`
	TurnIndex   int                `bson:"turnIndex" json:"turnIndex"` // 1-based
	PrizeID     primitive.ObjectID `bson:"prizeId,omitempty" json:"prizeId,omitempty"`
	PrizeName   string             `bson:"prizeName" json:"prizeName"`
	PrizeType   PrizeType          `bson:"prizeType" json:"prizeType"`
	VoucherCode string             `bson:"voucherCode,omitempty" json:"voucherCode,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
