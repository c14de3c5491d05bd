package middlewares

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"civicfix-be/config"
	"civicfix-be/models"
)

// RoleMiddleware loads the authenticated user's role profile from the
// user_roles collection and stores it in the request context. Runs after
// AuthMiddleware. Users without a role record proceed with no role set
// (citizen reporters).
func RoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(userIDVal.(string))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			c.Abort()
			return
		}

		roleCollection := config.GetCollection("user_roles")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var role models.UserRole
		err = roleCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&role)
		if err != nil {
			if err != mongo.ErrNoDocuments {
				log.Println("Error loading user role:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
				c.Abort()
				return
			}
		} else {
			c.Set("user_role", &role)
		}

		c.Next()
	}
}

// RequireOfficial rejects callers without a role record. Runs after
// RoleMiddleware.
func RequireOfficial() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_role"); !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Official role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RoleFromContext returns the caller's UserRole, or nil for citizens
func RoleFromContext(c *gin.Context) *models.UserRole {
	if v, exists := c.Get("user_role"); exists {
		if role, ok := v.(*models.UserRole); ok {
			return role
		}
	}
	return nil
}
