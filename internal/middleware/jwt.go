package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"campus_wallet/internal/account" // Token denylist
	"campus_wallet/internal/domain"  // Identity
	"campus_wallet/internal/utils"   // JWT utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Context keys set by JWTAuthMiddleware
const (
	IdentityKey = "identity"
	ClaimsKey   = "claims"
)

// JWTAuthMiddleware validates JWT tokens, rejects signed-out ones and stores the caller's identity
func JWTAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		revoked, err := account.Revoked(c.Request.Context(), rdb, claims.ID) // Check the sign-out denylist
		if err != nil {
			// Denylist unreachable, the token stays valid
			logrus.WithError(err).Warn("Token denylist unavailable")
		} else if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been signed out"})
			return
		}
		c.Set(IdentityKey, domain.Identity{ProfileID: claims.ProfileID, Role: claims.Role}) // Store identity in context
		c.Set(ClaimsKey, claims)                                                            // Keep raw claims for sign-out
		c.Next()                                                                            // Proceed to the next handler
	}
}

// Identity returns the caller set by JWTAuthMiddleware, or an invalid identity
func Identity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

// Claims returns the parsed token of the caller
func Claims(c *gin.Context) *utils.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}
