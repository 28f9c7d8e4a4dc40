package api

import (
	"landestate/internal/middleware" // Request-scoped logger
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			middleware.Logger(c).WithField("error", err.Error()).Error("Database health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "Database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
