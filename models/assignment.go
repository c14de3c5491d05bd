package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AssignmentEvent is an immutable record of one assignment action.
// Events are append-only: never updated or deleted. Multiple events may
// reference the same issue (reassignment history).
type AssignmentEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID    primitive.ObjectID `bson:"issue" json:"issueId"`
	AssignedBy primitive.ObjectID `bson:"assignedBy" json:"assignedBy"`
	Department string             `bson:"department" json:"department"`
	Zone       string             `bson:"zone" json:"zone"`
	Notes      *string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureAssignmentIndex creates the (issue, createdAt) index used by the
// history listing
func EnsureAssignmentIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "issue", Value: 1}, {Key: "createdAt", Value: 1}},
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
