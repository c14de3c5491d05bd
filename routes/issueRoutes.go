package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue reporting and listing routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issues")
	{
		issue.POST("", middlewares.AuthMiddleware(), middlewares.IssueRateLimiter(5), controllers.CreateIssue)
		issue.GET("", middlewares.AuthMiddleware(), middlewares.RoleMiddleware(), controllers.ListIssues)
		issue.GET("/recent", controllers.RecentIssues)
		issue.GET("/stats", middlewares.AuthMiddleware(), middlewares.RoleMiddleware(), controllers.IssueStats)
		issue.GET("/:id", middlewares.AuthMiddleware(), middlewares.RoleMiddleware(), controllers.GetIssue)
	}
}
