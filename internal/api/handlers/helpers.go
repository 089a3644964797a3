package handlers

import (
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shootyourshot/backend/internal/levels"
	"github.com/shootyourshot/backend/internal/middleware"
	"github.com/shootyourshot/backend/internal/session"
)

// generateID generates a random alphanumeric ID
func generateID(length int) string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

func guestName() string {
	return "Guest-" + generateID(5)
}

func playerID(c *gin.Context) int {
	return c.GetInt(middleware.PlayerIDKey)
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status, msg = http.StatusNotFound, "session not found"
	case errors.Is(err, session.ErrForbidden):
		status, msg = http.StatusForbidden, "session belongs to another player"
	case errors.Is(err, levels.ErrLevelNotFound):
		status, msg = http.StatusNotFound, "level not found"
	case errors.Is(err, levels.ErrInvalidLevel):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, levels.ErrNoDatabase), errors.Is(err, session.ErrLevelUnavailable):
		status, msg = http.StatusServiceUnavailable, "level store unavailable"
	default:
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": msg})
}
