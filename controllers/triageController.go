package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/config"
	"civicfix-be/middlewares"
	"civicfix-be/models"
	"civicfix-be/services"
)

var triageWorkflow = &services.Workflow{
	Issues: &services.MongoIssueStore{Collection: config.GetCollection("issues")},
	Events: &services.MongoAssignmentStore{Collection: config.GetCollection("issue_assignments")},
}

func workflowStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest, "Invalid status value"
	case errors.Is(err, services.ErrTerminalState):
		return http.StatusConflict, "Issue is already resolved or rejected"
	case errors.Is(err, services.ErrMissingField):
		return http.StatusBadRequest, "Department and zone are required"
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden, "You are not authorized to assign issues"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Issue not found"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}

// UpdateIssueStatus moves an issue through the triage state machine
func UpdateIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middlewares.RoleFromContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := triageWorkflow.UpdateStatus(ctx, issueID, models.IssueStatus(input.Status), actor)
	if err != nil {
		status, msg := workflowStatus(err)
		if status == http.StatusInternalServerError {
			log.Println("Error updating status:", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, issue)
}

// AssignIssue routes an issue to a department and zone and records the
// assignment event
func AssignIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Department string  `json:"department" binding:"required"`
		Zone       string  `json:"zone" binding:"required"`
		Notes      *string `json:"notes,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notes := input.Notes
	if notes != nil && *notes == "" {
		notes = nil
	}

	actor := middlewares.RoleFromContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := triageWorkflow.Assign(ctx, issueID, input.Department, input.Zone, notes, actor)
	if err != nil {
		status, msg := workflowStatus(err)
		if status == http.StatusInternalServerError {
			log.Println("Error assigning issue:", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, issue)
}

// AssignmentHistory returns the issue's assignment events, oldest first
func AssignmentHistory(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := triageWorkflow.History(ctx, issueID)
	if err != nil {
		log.Println("Error listing assignment history:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignment history"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// ListZones returns the configured zone table
func ListZones(c *gin.Context) {
	c.JSON(http.StatusOK, config.Zones)
}

// ResolveZoneByCoordinates maps a lat/lng pair to its administrative zone
func ResolveZoneByCoordinates(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}

	zone := config.ResolveZone(lat, lng)
	if zone == nil {
		// outside every configured zone, an expected case
		c.JSON(http.StatusOK, gin.H{"zone": nil})
		return
	}

	centerLat, centerLng := config.ZoneCenter(zone)
	c.JSON(http.StatusOK, gin.H{
		"zone": zone,
		"center": gin.H{
			"lat": centerLat,
			"lng": centerLng,
		},
	})
}

// ListDepartments returns the configured department table
func ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, config.Departments)
}
