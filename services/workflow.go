package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

// Workflow owns the issue status state machine and assignment mutation.
// The state machine is deliberately permissive: any non-terminal status may
// move to any other status; only resolved and rejected are final.
type Workflow struct {
	Issues IssueStore
	Events AssignmentStore
}

// UpdateStatus moves the issue to newStatus. Fails with ErrInvalidStatus on
// an unrecognized value and ErrTerminalState when the current status is
// resolved or rejected. A failed call leaves the issue unmodified.
func (w *Workflow) UpdateStatus(ctx context.Context, issueID primitive.ObjectID, newStatus models.IssueStatus, actor *models.UserRole) (*models.Issue, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}
	return w.Issues.SetStatus(ctx, issueID, newStatus, time.Now())
}

// Assign routes the issue to a department and zone. Assignment always
// activates the issue: status is forced to in_progress and
// assignedDepartment/assignedZone/assignedAt are set in the same update.
// Exactly one AssignmentEvent is appended per successful call. The supplied
// zone is taken as-is; a manual override of the geolocation-suggested zone
// is permitted.
func (w *Workflow) Assign(ctx context.Context, issueID primitive.ObjectID, department, zone string, notes *string, actor *models.UserRole) (*models.Issue, error) {
	if actor == nil || !actor.CanAssign() {
		return nil, ErrUnauthorized
	}
	if department == "" || zone == "" {
		return nil, ErrMissingField
	}

	now := time.Now()
	issue, err := w.Issues.SetAssignment(ctx, issueID, department, zone, now)
	if err != nil {
		return nil, err
	}

	event := models.AssignmentEvent{
		ID:         primitive.NewObjectID(),
		IssueID:    issue.ID,
		AssignedBy: actor.UserID,
		Department: department,
		Zone:       zone,
		Notes:      notes,
		CreatedAt:  now,
	}
	if err := w.Events.Append(ctx, event); err != nil {
		return nil, err
	}

	return issue, nil
}

// History returns the issue's assignment events in timestamp order
func (w *Workflow) History(ctx context.Context, issueID primitive.ObjectID) ([]models.AssignmentEvent, error) {
	return w.Events.ListForIssue(ctx, issueID)
}
