package middleware

import (
	"landestate/internal/domain" // Participant type
	"net/http"                   // HTTP status codes
	"strconv"                    // Route parameter parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireKind restricts a route to principals of one kind
func RequireKind(kind domain.ParticipantKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if p.Kind != kind {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// RequireSelf lets the request through only when the principal is the account named by the route parameter.
// It serves both user routes (/users/:id) and employee routes (/employees/:id).
func RequireSelf(kind domain.ParticipantKind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + string(kind) + " id"})
			return
		}
		// Reject any principal that is not this exact account
		if p.Kind != kind || uint64(p.ID) != id {
			Logger(c).WithField("target", string(kind)+":"+c.Param(param)).Warn("Access to another account denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You can only access your own account"})
			return
		}
		c.Next()
	}
}
