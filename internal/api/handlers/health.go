package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.0.0"

// SessionCounter is satisfied by the session manager.
type SessionCounter interface {
	Count() int
}

// HealthCheck returns server health status
func HealthCheck(sessions SessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "shootyourshot-api",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"sessions": sessions.Count(),
		})
	}
}
