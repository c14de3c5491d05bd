package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueType enum
type IssueType string

const (
	Pothole     IssueType = "pothole"
	Streetlight IssueType = "streetlight"
	Garbage     IssueType = "garbage"
	Water       IssueType = "water"
	Drainage    IssueType = "drainage"
	Sewage      IssueType = "sewage"
	OtherIssue  IssueType = "other"
)

// ValidIssueTypes is the accepted report category set
var ValidIssueTypes = map[IssueType]bool{
	Pothole:     true,
	Streetlight: true,
	Garbage:     true,
	Water:       true,
	Drainage:    true,
	Sewage:      true,
	OtherIssue:  true,
}

// IssueStatus enum
type IssueStatus string

const (
	Pending      IssueStatus = "pending"
	Acknowledged IssueStatus = "acknowledged"
	InProgress   IssueStatus = "in_progress"
	Resolved     IssueStatus = "resolved"
	Rejected     IssueStatus = "rejected"
)

// ValidStatuses is the full enumerated status set
var ValidStatuses = map[IssueStatus]bool{
	Pending:      true,
	Acknowledged: true,
	InProgress:   true,
	Resolved:     true,
	Rejected:     true,
}

// IsValid reports whether s is one of the five enumerated statuses
func (s IssueStatus) IsValid() bool {
	return ValidStatuses[s]
}

// IsTerminal reports whether the workflow defines no transition out of s
func (s IssueStatus) IsTerminal() bool {
	return s == Resolved || s == Rejected
}

// Priority enum, display-only
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityByType = map[IssueType]Priority{
	Pothole:     PriorityHigh,
	Water:       PriorityHigh,
	Streetlight: PriorityMedium,
	Drainage:    PriorityMedium,
	Garbage:     PriorityLow,
}

// PriorityFor maps an issue type to its display priority. Unlisted types
// default to medium. Not persisted, not part of the workflow.
func PriorityFor(t IssueType) Priority {
	if p, ok := priorityByType[t]; ok {
		return p
	}
	return PriorityMedium
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description" json:"description"`
	IssueType          IssueType          `bson:"issueType" json:"issueType"`
	Status             IssueStatus        `bson:"status" json:"status"`
	Latitude           *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude          *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	LocationAddress    *string            `bson:"locationAddress,omitempty" json:"locationAddress,omitempty"`
	FileURL            *string            `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	ReportedBy         primitive.ObjectID `bson:"reportedBy" json:"reportedBy"`
	AssignedDepartment *string            `bson:"assignedDepartment,omitempty" json:"assignedDepartment,omitempty"`
	AssignedZone       *string            `bson:"assignedZone,omitempty" json:"assignedZone,omitempty"`
	AssignedAt         *time.Time         `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasLocation reports whether the issue carries coordinates
func (i *Issue) HasLocation() bool {
	return i.Latitude != nil && i.Longitude != nil
}
