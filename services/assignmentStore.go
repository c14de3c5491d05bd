package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/models"
)

// AssignmentStore is the append-only journal of assignment events. There is
// no update or delete operation: history is not editable.
type AssignmentStore interface {
	Append(ctx context.Context, event models.AssignmentEvent) error
	ListForIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.AssignmentEvent, error)
}

// MongoAssignmentStore implements AssignmentStore on the issue_assignments
// collection
type MongoAssignmentStore struct {
	Collection *mongo.Collection
}

func (s *MongoAssignmentStore) Append(ctx context.Context, event models.AssignmentEvent) error {
	if _, err := s.Collection.InsertOne(ctx, event); err != nil {
		return errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (s *MongoAssignmentStore) ListForIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.AssignmentEvent, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.Collection.Find(ctx, bson.M{"issue": issueID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	defer cursor.Close(ctx)

	events := []models.AssignmentEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return events, nil
}
