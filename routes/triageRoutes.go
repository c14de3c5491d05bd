package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// TriageRoutes sets up the assignment workflow and reference-data routes.
// Status updates and assignments require an official role; the capability
// check for assignment itself happens in the workflow.
func TriageRoutes(r *gin.Engine) {
	triage := r.Group("/api/issues", middlewares.AuthMiddleware(), middlewares.RoleMiddleware(), middlewares.RequireOfficial())
	{
		triage.PATCH("/:id/status", controllers.UpdateIssueStatus)
		triage.POST("/:id/assign", controllers.AssignIssue)
		triage.GET("/:id/assignments", controllers.AssignmentHistory)
	}

	reference := r.Group("/api")
	{
		reference.GET("/zones", controllers.ListZones)
		reference.GET("/zones/resolve", controllers.ResolveZoneByCoordinates)
		reference.GET("/departments", controllers.ListDepartments)
	}
}
