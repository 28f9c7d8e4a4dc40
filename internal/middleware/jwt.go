package middleware

import (
	"landestate/internal/domain" // Participant type
	"landestate/internal/utils"  // JWT utility functions
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

const principalKey = "principal"

// JWTAuthMiddleware validates JWT tokens and stores the authenticated participant
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
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
		SetPrincipal(c, claims.Participant()) // Store the principal in context
		c.Next() // Proceed to the next handler
	}
}

// Principal returns the authenticated participant set by JWTAuthMiddleware
func Principal(c *gin.Context) (domain.Participant, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Participant{}, false
	}
	p, ok := v.(domain.Participant)
	return p, ok
}

// SetPrincipal stores a participant as the authenticated principal and tags the request logger with it
func SetPrincipal(c *gin.Context, p domain.Participant) {
	c.Set(principalKey, p)
	c.Set(loggerKey, Logger(c).WithField("principal", p.String()))
}
