package services

import (
	"go.mongodb.org/mongo-driver/bson"

	"civicfix-be/models"
)

// Scope restricts an official's visible issue set. The query filter and the
// in-memory predicate are built from the same role fields so the two can
// never drift: the filter is applied at the store query layer, the predicate
// is re-applied to every issue arriving on the change feed before it is
// surfaced to a scoped viewer.
type Scope struct {
	unrestricted bool
	zone         string
	department   string
}

// ScopeFor builds the visibility scope for a role. Administrators,
// supervisors and the public issue feed (nil role) are unrestricted. Zone
// and field officers see only issues assigned to their zone/department
// pair; a scoped role missing either value matches nothing (fail closed).
func ScopeFor(role *models.UserRole) Scope {
	if role == nil {
		return Scope{unrestricted: true}
	}
	if !role.IsScoped() {
		return Scope{unrestricted: true}
	}
	s := Scope{}
	if role.Zone != nil {
		s.zone = *role.Zone
	}
	if role.Department != nil {
		s.department = *role.Department
	}
	return s
}

// Unrestricted reports whether the scope imposes no restriction
func (s Scope) Unrestricted() bool {
	return s.unrestricted
}

func (s Scope) failClosed() bool {
	return !s.unrestricted && (s.zone == "" || s.department == "")
}

// Filter returns the Mongo query clause implementing the scope
func (s Scope) Filter() bson.M {
	if s.unrestricted {
		return bson.M{}
	}
	if s.failClosed() {
		// matches no document
		return bson.M{"_id": bson.M{"$exists": false}}
	}
	return bson.M{
		"assignedZone":       s.zone,
		"assignedDepartment": s.department,
	}
}

// Allows reports whether the issue is visible under the scope. An issue
// with no assignment never matches a scoped role.
func (s Scope) Allows(issue *models.Issue) bool {
	if s.unrestricted {
		return true
	}
	if s.failClosed() {
		return false
	}
	if issue == nil || issue.AssignedZone == nil || issue.AssignedDepartment == nil {
		return false
	}
	return *issue.AssignedZone == s.zone && *issue.AssignedDepartment == s.department
}
