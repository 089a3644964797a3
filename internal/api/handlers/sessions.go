package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shootyourshot/backend/internal/session"
	"github.com/shootyourshot/backend/internal/ws"
)

func CreateSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LevelID int `json:"level_id"`
		}
		// An empty body plays the built-in level.
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.LevelID < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level_id"})
			return
		}

		s, err := mgr.Create(c.Request.Context(), playerID(c), req.LevelID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"session_id": s.ID,
			"level_id":   s.LevelID,
			"frame":      s.Frame(),
		})
	}
}

func GetSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := mgr.Owned(c.Request.Context(), c.Param("id"), playerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": s.ID,
			"level_id":   s.LevelID,
			"created_at": s.CreatedAt,
			"frame":      s.Frame(),
		})
	}
}

// ExportSessionLevel returns the session's level in its persisted form,
// including the ball's current motion.
func ExportSessionLevel(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := mgr.Owned(c.Request.Context(), c.Param("id"), playerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		data, err := mgr.EncodedLevel(s)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	}
}

func DeleteSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := mgr.Owned(c.Request.Context(), c.Param("id"), playerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := mgr.Remove(c.Request.Context(), s.ID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SessionWebSocket attaches a realtime socket to the caller's session.
func SessionWebSocket(mgr *session.Manager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid := playerID(c)
		s, err := mgr.Owned(c.Request.Context(), c.Param("id"), pid)
		if err != nil {
			respondError(c, err)
			return
		}
		hub.Serve(c.Writer, c.Request, s, pid)
	}
}
