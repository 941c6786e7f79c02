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

// RuleRepository implements the repositories.RuleRepository interface
type RuleRepository struct {
	collection *mongo.Collection
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *mongo.Database) repositories.RuleRepository {
	return &RuleRepository{
		collection: db.Collection("event_rules"),
	}
}

// Create creates a new event rule
func (r *RuleRepository) Create(ctx context.Context, rule *models.EventRule) error {
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return err
	}
	rule.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a rule by ID
func (r *RuleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRule, error) {
	var rule models.EventRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Update updates a rule
func (r *RuleRepository) Update(ctx context.Context, rule *models.EventRule) error {
	rule.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule)
	return err
}

// Delete deletes a rule by ID
func (r *RuleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindByEvent returns all rules of an event sorted by priority descending
func (r *RuleRepository) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []models.EventRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []models.EventRule{}
	}
	return rules, nil
}
