package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/models"
)

// IssueStore is the subset of issue-record operations the workflow needs.
// SetStatus and SetAssignment refuse to touch an issue whose current status
// is terminal, and apply their field set as one atomic update.
type IssueStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, at time.Time) (*models.Issue, error)
	SetAssignment(ctx context.Context, id primitive.ObjectID, department, zone string, at time.Time) (*models.Issue, error)
}

// MongoIssueStore implements IssueStore on the issues collection
type MongoIssueStore struct {
	Collection *mongo.Collection
}

func (s *MongoIssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return &issue, nil
}

func (s *MongoIssueStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, at time.Time) (*models.Issue, error) {
	return s.guardedUpdate(ctx, id, bson.M{
		"status":    status,
		"updatedAt": at,
	})
}

func (s *MongoIssueStore) SetAssignment(ctx context.Context, id primitive.ObjectID, department, zone string, at time.Time) (*models.Issue, error) {
	// department, zone, assignedAt and status go down as one atomic $set
	return s.guardedUpdate(ctx, id, bson.M{
		"assignedDepartment": department,
		"assignedZone":       zone,
		"assignedAt":         at,
		"status":             models.InProgress,
		"updatedAt":          at,
	})
}

// guardedUpdate applies a $set to the issue unless its current status is
// terminal. A missed match is disambiguated with a follow-up read: unknown
// id maps to ErrNotFound, terminal status to ErrTerminalState.
func (s *MongoIssueStore) guardedUpdate(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Issue, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$nin": []models.IssueStatus{models.Resolved, models.Rejected}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Issue
	err := s.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}

	if _, ferr := s.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, ErrTerminalState
}
