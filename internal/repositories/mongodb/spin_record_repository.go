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

// SpinRecordRepository implements the repositories.SpinRecordRepository interface
type SpinRecordRepository struct {
	collection *mongo.Collection
}

// NewSpinRecordRepository creates a new SpinRecordRepository and ensures the
// (sessionId, turnIndex) uniqueness index. The index is the de-duplication
// anchor: a turn can never have two outcomes.
func NewSpinRecordRepository(db *mongo.Database) repositories.SpinRecordRepository {
	collection := db.Collection("spin_records")
	_, _ = collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "turnIndex", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return &SpinRecordRepository{collection: collection}
}

// Create inserts a spin record. Duplicate (sessionId, turnIndex) pairs fail
// with a mongo duplicate key error.
func (r *SpinRecordRepository) Create(ctx context.Context, record *models.SpinRecord) error {
	record.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	record.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindBySession returns all committed spins of a session in turn order
func (r *SpinRecordRepository) FindBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*models.SpinRecord, error) {
	opts := options.Find().SetSort(bson.M{"turnIndex": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*models.SpinRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.SpinRecord{}
	}
	return records, nil
}

// FindBySessionAndTurn finds the committed outcome of one turn, if any
func (r *SpinRecordRepository) FindBySessionAndTurn(ctx context.Context, sessionID primitive.ObjectID, turnIndex int) (*models.SpinRecord, error) {
	var record models.SpinRecord
	filter := bson.M{"sessionId": sessionID, "turnIndex": turnIndex}
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
