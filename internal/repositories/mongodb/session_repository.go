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

// SessionRepository implements the repositories.SessionRepository interface
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository and ensures the
// (eventId, purchaseCode) uniqueness index that freezes sessions.
func NewSessionRepository(db *mongo.Database) repositories.SessionRepository {
	collection := db.Collection("sessions")
	_, _ = collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{
			{Key: "eventId", Value: 1},
			{Key: "purchaseCode", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return &SessionRepository{collection: collection}
}

// CreateIfAbsent inserts the session or returns the frozen one for the same
// (event, purchaseCode). $setOnInsert makes concurrent validations converge
// on whichever document landed first; the computed fields of the losers are
// discarded.
func (r *SessionRepository) CreateIfAbsent(ctx context.Context, session *models.Session) (*models.Session, bool, error) {
	now := time.Now()
	filter := bson.M{
		"eventId":      session.EventID,
		"purchaseCode": session.PurchaseCode,
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"eventId":       session.EventID,
			"purchaseCode":  session.PurchaseCode,
			"branchCode":    session.BranchCode,
			"invoiceTotal":  session.InvoiceTotal,
			"totalTurns":    session.TotalTurns,
			"usedTurns":     0,
			"isValid":       session.IsValid,
			"invalidReason": session.InvalidReason,
			"createdAt":     now,
			"updatedAt":     now,
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}

	var stored models.Session
	if err := r.collection.FindOne(ctx, filter).Decode(&stored); err != nil {
		return nil, false, err
	}
	return &stored, res.UpsertedCount == 1, nil
}

// FindByID finds a session by ID
func (r *SessionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByEventAndCode finds the session for a (event, purchaseCode) pair
func (r *SessionRepository) FindByEventAndCode(ctx context.Context, eventID primitive.ObjectID, purchaseCode string) (*models.Session, error) {
	var session models.Session
	filter := bson.M{"eventId": eventID, "purchaseCode": purchaseCode}
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ClaimTurn advances usedTurns from turnIndex-1 to turnIndex in one
// conditional update. A concurrent claim for the same index matches nothing
// and reports false; spins are therefore claimed strictly in order, once.
func (r *SessionRepository) ClaimTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (bool, error) {
	filter := bson.M{
		"_id":       sessionID,
		"isValid":   true,
		"usedTurns": turnIndex - 1,
		"$expr":     bson.M{"$lt": []interface{}{"$usedTurns", "$totalTurns"}},
	}
	update := bson.M{
		"$inc": bson.M{"usedTurns": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseTurn rolls a claim back after a spin that could not be committed.
func (r *SessionRepository) ReleaseTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) error {
	filter := bson.M{"_id": sessionID, "usedTurns": turnIndex}
	update := bson.M{
		"$inc": bson.M{"usedTurns": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}
