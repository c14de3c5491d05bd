package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/config"
	"civicfix-be/models"
)

// fakeIssueStore mirrors the store's guarded-update semantics in memory
type fakeIssueStore struct {
	issues map[primitive.ObjectID]*models.Issue
	err    error
}

func newFakeIssueStore(issues ...*models.Issue) *fakeIssueStore {
	s := &fakeIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
	for _, issue := range issues {
		s.issues[issue.ID] = issue
	}
	return s
}

func (s *fakeIssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	if s.err != nil {
		return nil, s.err
	}
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *issue
	return &copied, nil
}

func (s *fakeIssueStore) guard(id primitive.ObjectID) (*models.Issue, error) {
	if s.err != nil {
		return nil, s.err
	}
	issue, ok := s.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	if issue.Status.IsTerminal() {
		return nil, ErrTerminalState
	}
	return issue, nil
}

func (s *fakeIssueStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, at time.Time) (*models.Issue, error) {
	issue, err := s.guard(id)
	if err != nil {
		return nil, err
	}
	issue.Status = status
	issue.UpdatedAt = at
	copied := *issue
	return &copied, nil
}

func (s *fakeIssueStore) SetAssignment(ctx context.Context, id primitive.ObjectID, department, zone string, at time.Time) (*models.Issue, error) {
	issue, err := s.guard(id)
	if err != nil {
		return nil, err
	}
	issue.AssignedDepartment = &department
	issue.AssignedZone = &zone
	issue.AssignedAt = &at
	issue.Status = models.InProgress
	issue.UpdatedAt = at
	copied := *issue
	return &copied, nil
}

type fakeAssignmentStore struct {
	events []models.AssignmentEvent
	err    error
}

func (s *fakeAssignmentStore) Append(ctx context.Context, event models.AssignmentEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeAssignmentStore) ListForIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.AssignmentEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.AssignmentEvent{}
	for _, ev := range s.events {
		if ev.IssueID == issueID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func pendingIssue() *models.Issue {
	return &models.Issue{
		ID:        primitive.NewObjectID(),
		Title:     "Pothole on 2nd Avenue",
		IssueType: models.Pothole,
		Status:    models.Pending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func admin() *models.UserRole {
	return &models.UserRole{UserID: primitive.NewObjectID(), Role: models.Administrator}
}

func newWorkflow(issues ...*models.Issue) (*Workflow, *fakeIssueStore, *fakeAssignmentStore) {
	issueStore := newFakeIssueStore(issues...)
	eventStore := &fakeAssignmentStore{}
	return &Workflow{Issues: issueStore, Events: eventStore}, issueStore, eventStore
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.IssueStatus
		to      models.IssueStatus
		wantErr error
	}{
		{"pending to acknowledged", models.Pending, models.Acknowledged, nil},
		{"pending directly to in_progress", models.Pending, models.InProgress, nil},
		{"acknowledged to resolved", models.Acknowledged, models.Resolved, nil},
		{"in_progress to rejected", models.InProgress, models.Rejected, nil},
		{"in_progress back to pending is permitted", models.InProgress, models.Pending, nil},
		{"resolved is terminal", models.Resolved, models.Pending, ErrTerminalState},
		{"rejected is terminal", models.Rejected, models.InProgress, ErrTerminalState},
		{"unknown value", models.Pending, models.IssueStatus("escalated"), ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := pendingIssue()
			issue.Status = tt.from
			wf, _, _ := newWorkflow(issue)

			updated, err := wf.UpdateStatus(context.Background(), issue.ID, tt.to, admin())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// a failed call leaves the issue unmodified
				current, ferr := wf.Issues.FindByID(context.Background(), issue.ID)
				require.NoError(t, ferr)
				assert.Equal(t, tt.from, current.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
		})
	}
}

func TestUpdateStatusUnknownIssue(t *testing.T) {
	wf, _, _ := newWorkflow()
	_, err := wf.UpdateStatus(context.Background(), primitive.NewObjectID(), models.Acknowledged, admin())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignSetsAllFieldsTogether(t *testing.T) {
	issue := pendingIssue()
	wf, _, events := newWorkflow(issue)
	actor := admin()

	before := time.Now()
	updated, err := wf.Assign(context.Background(), issue.ID, "roads", "zone_3", strPtr("urgent"), actor)
	require.NoError(t, err)

	require.NotNil(t, updated.AssignedDepartment)
	require.NotNil(t, updated.AssignedZone)
	require.NotNil(t, updated.AssignedAt)
	assert.Equal(t, "roads", *updated.AssignedDepartment)
	assert.Equal(t, "zone_3", *updated.AssignedZone)
	assert.False(t, updated.AssignedAt.Before(before))
	assert.Equal(t, models.InProgress, updated.Status)

	require.Len(t, events.events, 1)
	event := events.events[0]
	assert.Equal(t, issue.ID, event.IssueID)
	assert.Equal(t, actor.UserID, event.AssignedBy)
	assert.Equal(t, "roads", event.Department)
	assert.Equal(t, "zone_3", event.Zone)
	require.NotNil(t, event.Notes)
	assert.Equal(t, "urgent", *event.Notes)
}

func TestAssignOverridesConcurrentStatus(t *testing.T) {
	// assignment always activates the issue regardless of its prior status
	issue := pendingIssue()
	issue.Status = models.Acknowledged
	wf, _, _ := newWorkflow(issue)

	updated, err := wf.Assign(context.Background(), issue.ID, "water", "zone_1", nil, admin())
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, updated.Status)
}

func TestAssignMissingFieldsLeaveIssueUntouched(t *testing.T) {
	issue := pendingIssue()

	tests := []struct {
		name       string
		department string
		zone       string
	}{
		{"empty department", "", "zone_3"},
		{"empty zone", "roads", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf, _, events := newWorkflow(issue)

			_, err := wf.Assign(context.Background(), issue.ID, tt.department, tt.zone, nil, admin())
			require.ErrorIs(t, err, ErrMissingField)

			current, ferr := wf.Issues.FindByID(context.Background(), issue.ID)
			require.NoError(t, ferr)
			assert.Nil(t, current.AssignedDepartment)
			assert.Nil(t, current.AssignedZone)
			assert.Nil(t, current.AssignedAt)
			assert.Equal(t, models.Pending, current.Status)
			assert.Empty(t, events.events)
		})
	}
}

func TestAssignCapability(t *testing.T) {
	zone := strPtr("zone_3")
	dept := strPtr("roads")

	tests := []struct {
		name    string
		actor   *models.UserRole
		wantErr error
	}{
		{"administrator may assign", &models.UserRole{UserID: primitive.NewObjectID(), Role: models.Administrator}, nil},
		{"supervisor may assign", &models.UserRole{UserID: primitive.NewObjectID(), Role: models.Supervisor}, nil},
		{"zone officer may not", &models.UserRole{UserID: primitive.NewObjectID(), Role: models.ZoneOfficer, Zone: zone, Department: dept}, ErrUnauthorized},
		{"field officer may not", &models.UserRole{UserID: primitive.NewObjectID(), Role: models.FieldOfficer, Zone: zone, Department: dept}, ErrUnauthorized},
		{"no role may not", nil, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := pendingIssue()
			wf, _, events := newWorkflow(issue)

			_, err := wf.Assign(context.Background(), issue.ID, "roads", "zone_3", nil, tt.actor)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, events.events)
				return
			}
			require.NoError(t, err)
			assert.Len(t, events.events, 1)
		})
	}
}

func TestAssignUnknownIssue(t *testing.T) {
	wf, _, events := newWorkflow()
	_, err := wf.Assign(context.Background(), primitive.NewObjectID(), "roads", "zone_3", nil, admin())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, events.events)
}

func TestReassignmentAppendsHistory(t *testing.T) {
	issue := pendingIssue()
	wf, _, _ := newWorkflow(issue)
	ctx := context.Background()

	_, err := wf.Assign(ctx, issue.ID, "roads", "zone_3", nil, admin())
	require.NoError(t, err)
	_, err = wf.Assign(ctx, issue.ID, "drainage", "zone_3", strPtr("wrong crew, rerouting"), admin())
	require.NoError(t, err)

	history, err := wf.History(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "roads", history[0].Department)
	assert.Equal(t, "drainage", history[1].Department)
	// non-decreasing timestamps
	assert.False(t, history[1].CreatedAt.Before(history[0].CreatedAt))
}

func TestAssignStoreUnavailable(t *testing.T) {
	issue := pendingIssue()
	issueStore := newFakeIssueStore(issue)
	eventStore := &fakeAssignmentStore{err: ErrStoreUnavailable}
	wf := &Workflow{Issues: issueStore, Events: eventStore}

	_, err := wf.Assign(context.Background(), issue.ID, "roads", "zone_3", nil, admin())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestEndToEndTriageScenario(t *testing.T) {
	// issue reported at (13.05, 80.05), assigned to roads in zone_3,
	// visible to a zone_3/roads officer and to nobody scoped elsewhere
	lat, lng := 13.05, 80.05
	issue := pendingIssue()
	issue.Latitude = &lat
	issue.Longitude = &lng

	zone := config.ResolveZone(lat, lng)
	require.NotNil(t, zone)
	assert.Equal(t, "Zone 3 - Central", zone.Label)

	wf, _, events := newWorkflow(issue)
	ctx := context.Background()

	updated, err := wf.Assign(ctx, issue.ID, "roads", zone.Value, strPtr("urgent"), admin())
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, updated.Status)
	assert.Len(t, events.events, 1)

	inZone := ScopeFor(&models.UserRole{Role: models.ZoneOfficer, Zone: strPtr("zone_3"), Department: strPtr("roads")})
	elsewhere := ScopeFor(&models.UserRole{Role: models.ZoneOfficer, Zone: strPtr("zone_1"), Department: strPtr("roads")})

	assert.True(t, inZone.Allows(updated))
	assert.False(t, elsewhere.Allows(updated))
}
