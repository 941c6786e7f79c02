package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeType classifies what a winning spin awards
type PrizeType string

const (
	PrizeTypeVoucher  PrizeType = "VOUCHER"
	PrizeTypePhysical PrizeType = "PHYSICAL"
	PrizeTypeDiscount PrizeType = "DISCOUNT"
	// PrizeTypeNoPrize is the "better luck next time" wheel slot. It is always
	// selectable regardless of stock counters.
	PrizeTypeNoPrize PrizeType = "NO_PRIZE"
)

// Prize is one slot on an event's wheel. DefaultWeight is the relative
// selection weight unless a branch inventory row overrides it.
type Prize struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EventID       primitive.ObjectID `bson:"eventId" json:"eventId"`
	Name          string             `bson:"name" json:"name"`
	PrizeType     PrizeType          `bson:"prizeType" json:"prizeType"`
	DefaultWeight int                `bson:"defaultWeight" json:"defaultWeight"`
	Value         int64              `bson:"value,omitempty" json:"value,omitempty"` // voucher/discount value in VND
	Color         string             `bson:"color,omitempty" json:"color,omitempty"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
