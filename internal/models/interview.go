package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInterviewNotFound = errors.New("interview not found")

// Interview is the record produced by question generation. It is written once
// and never updated by this service.
type Interview struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role       string             `bson:"role" json:"role"`
	Type       string             `bson:"type" json:"type"`
	Level      string             `bson:"level" json:"level"`
	TechStack  []string           `bson:"techstack" json:"techstack"`
	Questions  []string           `bson:"questions" json:"questions"`
	UserID     string             `bson:"userId" json:"userId"`
	Finalized  bool               `bson:"finalized" json:"finalized"`
	CoverImage string             `bson:"coverImage" json:"coverImage"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
