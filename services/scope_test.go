package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"civicfix-be/models"
)

func strPtr(s string) *string { return &s }

func issueInZone(zone, department string) *models.Issue {
	return &models.Issue{
		AssignedZone:       strPtr(zone),
		AssignedDepartment: strPtr(department),
	}
}

func TestScopeUnrestrictedRoles(t *testing.T) {
	for _, role := range []models.Role{models.Administrator, models.Supervisor} {
		scope := ScopeFor(&models.UserRole{Role: role})
		assert.True(t, scope.Unrestricted())
		assert.Equal(t, bson.M{}, scope.Filter())
		assert.True(t, scope.Allows(issueInZone("zone_1", "roads")))
		assert.True(t, scope.Allows(&models.Issue{}))
	}
}

func TestScopeNilRoleIsUnrestricted(t *testing.T) {
	scope := ScopeFor(nil)
	assert.True(t, scope.Unrestricted())
	assert.True(t, scope.Allows(&models.Issue{}))
}

func TestScopedOfficerMatchesOwnZoneAndDepartment(t *testing.T) {
	scope := ScopeFor(&models.UserRole{
		Role:       models.ZoneOfficer,
		Zone:       strPtr("zone_3"),
		Department: strPtr("roads"),
	})

	assert.False(t, scope.Unrestricted())
	assert.Equal(t, bson.M{
		"assignedZone":       "zone_3",
		"assignedDepartment": "roads",
	}, scope.Filter())

	assert.True(t, scope.Allows(issueInZone("zone_3", "roads")))
	assert.False(t, scope.Allows(issueInZone("zone_1", "roads")))
	assert.False(t, scope.Allows(issueInZone("zone_3", "water")))
}

func TestScopedOfficerNeverSeesUnassignedIssues(t *testing.T) {
	scope := ScopeFor(&models.UserRole{
		Role:       models.FieldOfficer,
		Zone:       strPtr("zone_3"),
		Department: strPtr("roads"),
	})

	assert.False(t, scope.Allows(&models.Issue{}))
	assert.False(t, scope.Allows(&models.Issue{AssignedZone: strPtr("zone_3")}))
	assert.False(t, scope.Allows(nil))
}

func TestScopedRoleWithMissingFieldsFailsClosed(t *testing.T) {
	cases := []*models.UserRole{
		{Role: models.ZoneOfficer},
		{Role: models.ZoneOfficer, Zone: strPtr("zone_3")},
		{Role: models.FieldOfficer, Department: strPtr("roads")},
		{Role: models.ZoneOfficer, Zone: strPtr(""), Department: strPtr("roads")},
	}

	for _, role := range cases {
		scope := ScopeFor(role)
		assert.False(t, scope.Allows(issueInZone("zone_3", "roads")))
		assert.False(t, scope.Allows(&models.Issue{}))
		// the query filter must match no document, never every document
		assert.Equal(t, bson.M{"_id": bson.M{"$exists": false}}, scope.Filter())
	}
}

func TestScopeFilterAndPredicateAgree(t *testing.T) {
	// the filter clause and the in-memory predicate come from the same
	// fields; spot-check they classify the same issues the same way
	scope := ScopeFor(&models.UserRole{
		Role:       models.ZoneOfficer,
		Zone:       strPtr("zone_5"),
		Department: strPtr("drainage"),
	})

	matching := issueInZone("zone_5", "drainage")
	other := issueInZone("zone_5", "water")

	filter := scope.Filter()
	assert.Equal(t, *matching.AssignedZone, filter["assignedZone"])
	assert.Equal(t, *matching.AssignedDepartment, filter["assignedDepartment"])
	assert.True(t, scope.Allows(matching))
	assert.NotEqual(t, *other.AssignedDepartment, filter["assignedDepartment"])
	assert.False(t, scope.Allows(other))
}
