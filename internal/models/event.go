package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStatus represents the lifecycle status of a lucky wheel event
type EventStatus string

const (
	EventStatusActive      EventStatus = "ACTIVE"
	EventStatusDeactivated EventStatus = "DEACTIVATED"
)

// Event represents one lucky wheel campaign. Rules, prizes and branch
// inventories all belong to an event.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code" json:"code"` // short unique code, e.g. "TET2026"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	StartAt     time.Time          `bson:"startAt" json:"startAt"`
	EndAt       time.Time          `bson:"endAt" json:"endAt"`
	Status      EventStatus        `bson:"status" json:"status"`
	BannerURL   string             `bson:"bannerUrl,omitempty" json:"bannerUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
