package middleware

import (
	"context"  // Store lookups
	"net/http" // HTTP status codes

	"campus_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// ProfileSource loads the current profile for the role check
type ProfileSource interface {
	Profile(ctx context.Context, id string) (*domain.Profile, error)
}

// AdminOnlyMiddleware checks the caller's role from the database on each request
func AdminOnlyMiddleware(profiles ProfileSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c) // Get identity from context
		// Check if identity exists in context
		if !id.Valid() {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		p, err := profiles.Profile(c.Request.Context(), id.ProfileID) // Fetch profile from database
		// Check if profile role is admin
		if err != nil || p.Role != "admin" {
			// If not admin or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
