package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role enum
type Role string

const (
	Administrator Role = "administrator"
	ZoneOfficer   Role = "zone_officer"
	FieldOfficer  Role = "field_officer"
	Supervisor    Role = "supervisor"
)

// ValidRoles is the accepted official role set
var ValidRoles = map[Role]bool{
	Administrator: true,
	ZoneOfficer:   true,
	FieldOfficer:  true,
	Supervisor:    true,
}

// UserRole is the authorization profile of an acting official. Zone and
// department are required for zone_officer and field_officer; administrators
// and supervisors are unscoped.
type UserRole struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Role       Role               `bson:"role" json:"role"`
	Zone       *string            `bson:"zone,omitempty" json:"zone,omitempty"`
	Department *string            `bson:"department,omitempty" json:"department,omitempty"`
}

// IsScoped reports whether the role's visible issue set is restricted to a
// zone/department pair.
func (r *UserRole) IsScoped() bool {
	return r.Role == ZoneOfficer || r.Role == FieldOfficer
}

// CanAssign reports whether the role may assign or reassign issues.
// Zone and field officers may update status but not reassign.
func (r *UserRole) CanAssign() bool {
	return r.Role == Administrator || r.Role == Supervisor
}
