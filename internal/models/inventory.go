package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BranchInventory is the stock of one prize at one branch for one event.
// RemainingQuantity is the authoritative counter for allocation and is only
// mutated through the allocator's conditional decrement; administrative bulk
// edits are out-of-band resets.
type BranchInventory struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EventID           primitive.ObjectID `bson:"eventId" json:"eventId"`
	PrizeID           primitive.ObjectID `bson:"prizeId" json:"prizeId"`
	BranchCode        string             `bson:"branchCode" json:"branchCode"`
	InitialQuantity   int                `bson:"initialQuantity" json:"initialQuantity"`
	RemainingQuantity int                `bson:"remainingQuantity" json:"remainingQuantity"`
	// WeightOverride supersedes the prize's DefaultWeight at this branch only.
	WeightOverride *int      `bson:"weightOverride,omitempty" json:"weightOverride,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// InventoryRow is the allocator's view of one wheel slot: a branch inventory
// row joined with the prize fields selection needs.
type InventoryRow struct {
	InventoryID primitive.ObjectID `json:"inventoryId"`
	PrizeID     primitive.ObjectID `json:"prizeId"`
	PrizeName   string             `json:"prizeName"`
	PrizeType   PrizeType          `json:"prizeType"`
	Weight      int                `json:"weight"` // override if set, else prize default
	Remaining   int                `json:"remaining"`
}
