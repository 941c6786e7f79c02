package mongodb

import (
	"context"
	"time"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
	"github.com/congdat192/LuckySpin-sub000/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InventoryRepository implements the repositories.InventoryRepository interface
type InventoryRepository struct {
	collection *mongo.Collection
}

// NewInventoryRepository creates a new InventoryRepository and ensures the
// (eventId, prizeId, branchCode) uniqueness index.
func NewInventoryRepository(db *mongo.Database) repositories.InventoryRepository {
	collection := db.Collection("branch_inventories")
	_, _ = collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{
			{Key: "eventId", Value: 1},
			{Key: "prizeId", Value: 1},
			{Key: "branchCode", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return &InventoryRepository{collection: collection}
}

// Upsert creates or replaces the inventory row for (event, prize, branch).
// This is the administrative reset path, not the spin path.
func (r *InventoryRepository) Upsert(ctx context.Context, inv *models.BranchInventory) error {
	inv.UpdatedAt = time.Now()
	filter := bson.M{
		"eventId":    inv.EventID,
		"prizeId":    inv.PrizeID,
		"branchCode": inv.BranchCode,
	}
	update := bson.M{
		"$set": bson.M{
			"initialQuantity":   inv.InitialQuantity,
			"remainingQuantity": inv.RemainingQuantity,
			"weightOverride":    inv.WeightOverride,
			"updatedAt":         inv.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"eventId":    inv.EventID,
			"prizeId":    inv.PrizeID,
			"branchCode": inv.BranchCode,
			"createdAt":  time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(inv)
}

// FindByID finds an inventory row by ID
func (r *InventoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.BranchInventory, error) {
	var inv models.BranchInventory
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByBranchAndEvent snapshots all inventory rows for a (branch, event) pair
func (r *InventoryRepository) FindByBranchAndEvent(ctx context.Context, branchCode string, eventID primitive.ObjectID) ([]*models.BranchInventory, error) {
	filter := bson.M{"branchCode": branchCode, "eventId": eventID}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []*models.BranchInventory
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*models.BranchInventory{}
	}
	return rows, nil
}

// DecrementStock performs the conditional decrement that guards against
// double-spending a prize. The filter and $inc run as one document update, so
// two racing spins can never both take the last unit.
func (r *InventoryRepository) DecrementStock(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, "remainingQuantity": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"remainingQuantity": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RestoreStock adds one unit back after a spin that could not be committed.
func (r *InventoryRepository) RestoreStock(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$inc": bson.M{"remainingQuantity": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
