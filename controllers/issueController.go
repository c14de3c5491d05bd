package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/config"
	"civicfix-be/middlewares"
	"civicfix-be/models"
	"civicfix-be/services"
)

var issueCollection *mongo.Collection = config.GetCollection("issues")

// CreateIssue handles a citizen's issue report. When coordinates are
// present the response carries the zone suggested by the resolver; the
// issue itself stays unassigned until a triage official acts on it.
func CreateIssue(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reportedByID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Title           string   `json:"title" binding:"required,max=200"`
		Description     string   `json:"description" binding:"required,max=1000"`
		IssueType       string   `json:"issueType" binding:"required"`
		LocationAddress *string  `json:"locationAddress,omitempty"`
		FileURL         *string  `json:"fileUrl,omitempty"`
		Latitude        *float64 `json:"latitude,omitempty"`
		Longitude       *float64 `json:"longitude,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidIssueTypes[models.IssueType(input.IssueType)] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue type"})
		return
	}

	issue := models.Issue{
		ID:              primitive.NewObjectID(),
		Title:           input.Title,
		Description:     input.Description,
		IssueType:       models.IssueType(input.IssueType),
		Status:          models.Pending,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		LocationAddress: input.LocationAddress,
		FileURL:         input.FileURL,
		ReportedBy:      reportedByID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = issueCollection.InsertOne(ctx, issue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	response := gin.H{
		"issue":    issue,
		"priority": models.PriorityFor(issue.IssueType),
	}
	if issue.HasLocation() {
		if zone := config.ResolveZone(*issue.Latitude, *issue.Longitude); zone != nil {
			response["suggestedZone"] = zone
		}
	}

	c.JSON(http.StatusCreated, response)
}

// ListIssues retrieves issues with filtering, pagination, and sorting,
// scoped to the caller's role. Scoped officials only ever receive issues
// assigned to their zone/department pair.
func ListIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueType := c.Query("issueType")
	status := c.Query("status")
	search := c.Query("search")
	sortParam := c.DefaultQuery("sort", "newest")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	// Scope first, then the caller's filters on top
	scope := services.ScopeFor(middlewares.RoleFromContext(c))
	filter := scope.Filter()

	if issueType != "" && issueType != "all" {
		filter["issueType"] = issueType
	}

	if status != "" && status != "all" {
		filter["status"] = status
	}

	if search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	skip := (page - 1) * limit

	var sortOptions bson.D
	switch sortParam {
	case "oldest":
		sortOptions = bson.D{{Key: "createdAt", Value: 1}}
	case "newest":
		fallthrough
	default:
		sortOptions = bson.D{{Key: "createdAt", Value: -1}}
	}

	totalCount, err := issueCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count issues"})
		return
	}

	findOptions := options.Find().
		SetSort(sortOptions).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := issueCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	type IssueWithTriage struct {
		models.Issue
		Priority models.Priority `json:"priority"`
		Zone     *config.Zone    `json:"zone,omitempty"`
	}

	decorated := make([]IssueWithTriage, 0, len(issues))
	for _, issue := range issues {
		item := IssueWithTriage{
			Issue:    issue,
			Priority: models.PriorityFor(issue.IssueType),
		}
		if issue.AssignedZone != nil {
			item.Zone = config.ZoneByValue(*issue.AssignedZone)
		}
		decorated = append(decorated, item)
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"issues":      decorated,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// GetIssue retrieves a single issue with its zone and priority decoration
func GetIssue(c *gin.Context) {
	idParam := c.Param("id")
	issueID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	scope := services.ScopeFor(middlewares.RoleFromContext(c))
	if !scope.Allows(&issue) {
		// scoped officials must not learn whether the issue exists
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	response := gin.H{
		"issue":    issue,
		"priority": models.PriorityFor(issue.IssueType),
	}
	if issue.AssignedZone != nil {
		response["zone"] = config.ZoneByValue(*issue.AssignedZone)
	} else if issue.HasLocation() {
		if zone := config.ResolveZone(*issue.Latitude, *issue.Longitude); zone != nil {
			response["suggestedZone"] = zone
		}
	}

	c.JSON(http.StatusOK, response)
}

// RecentIssues returns the most recent issues that carry coordinates, for
// the map view
func RecentIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	limit := 19

	filter := bson.M{
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := issueCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode recent issues"})
		return
	}

	type MapPin struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		Latitude  float64         `json:"latitude"`
		Longitude float64         `json:"longitude"`
		IssueType string          `json:"issueType"`
		Status    string          `json:"status"`
		Priority  models.Priority `json:"priority"`
		Zone      *string         `json:"zone,omitempty"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	pins := make([]MapPin, 0, len(issues))
	for _, issue := range issues {
		if !issue.HasLocation() {
			continue
		}
		pin := MapPin{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Latitude:  *issue.Latitude,
			Longitude: *issue.Longitude,
			IssueType: string(issue.IssueType),
			Status:    string(issue.Status),
			Priority:  models.PriorityFor(issue.IssueType),
			CreatedAt: issue.CreatedAt,
		}
		if issue.AssignedZone != nil {
			pin.Zone = issue.AssignedZone
		} else if zone := config.ResolveZone(*issue.Latitude, *issue.Longitude); zone != nil {
			pin.Zone = &zone.Value
		}
		pins = append(pins, pin)
	}

	c.JSON(http.StatusOK, pins)
}

// IssueStats returns the dashboard counters: totals by status, by type,
// and a last-7-days series. Counts respect the caller's scope.
func IssueStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scope := services.ScopeFor(middlewares.RoleFromContext(c))
	scopeFilter := scope.Filter()

	statusPipeline := []bson.M{
		{"$match": scopeFilter},
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	statusCursor, err := issueCollection.Aggregate(ctx, statusPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status analytics"})
		return
	}
	defer statusCursor.Close(ctx)

	var issuesByStatus []bson.M
	if err := statusCursor.All(ctx, &issuesByStatus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode status analytics"})
		return
	}

	typePipeline := []bson.M{
		{"$match": scopeFilter},
		{
			"$group": bson.M{
				"_id":   "$issueType",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	typeCursor, err := issueCollection.Aggregate(ctx, typePipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get type analytics"})
		return
	}
	defer typeCursor.Close(ctx)

	var issuesByType []bson.M
	if err := typeCursor.All(ctx, &issuesByType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode type analytics"})
		return
	}

	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		dayFilter := bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		}
		for k, v := range scopeFilter {
			dayFilter[k] = v
		}

		count, err := issueCollection.CountDocuments(ctx, dayFilter)
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	totalIssues, err := issueCollection.CountDocuments(ctx, scopeFilter)
	if err != nil {
		totalIssues = 0
	}

	openFilter := bson.M{
		"status": bson.M{"$in": []models.IssueStatus{models.Pending, models.Acknowledged, models.InProgress}},
	}
	for k, v := range scopeFilter {
		openFilter[k] = v
	}
	openIssues, err := issueCollection.CountDocuments(ctx, openFilter)
	if err != nil {
		openIssues = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByStatus": issuesByStatus,
		"issuesByType":   issuesByType,
		"last7Days":      last7Days,
		"totalIssues":    totalIssues,
		"openIssues":     openIssues,
	})
}
