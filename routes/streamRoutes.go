package routes

import (
	"civicfix-be/controllers"
	"civicfix-be/middlewares"
	"civicfix-be/realtime"

	"github.com/gin-gonic/gin"
)

// StreamRoutes sets up the websocket change feed
func StreamRoutes(r *gin.Engine, hub *realtime.Hub) {
	stream := r.Group("/api/stream")
	{
		stream.GET("/issues", middlewares.AuthMiddleware(), middlewares.RoleMiddleware(), controllers.StreamIssues(hub))
	}
}
